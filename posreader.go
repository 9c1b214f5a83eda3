package warcdebug

import (
	"errors"
	"io"
)

// ErrResetUnsupported is returned by Reset when no Mark is active (none was
// made, or it was already consumed by an earlier Reset), or when more bytes
// were consumed since the last Mark than the readlimit given to Mark
// allowed for.
var ErrResetUnsupported = errors.New("warcdebug: reset called after readlimit exceeded")

// PositionTrackingReader wraps a byte source and reports the absolute
// number of bytes it has delivered to callers. It also supports a single
// level of mark/reset: Mark records the current position, and Reset
// rewinds both the tracked position and the effective stream contents back
// to that point, replaying any bytes consumed in between.
//
// Unlike bufio.Reader, PositionTrackingReader never reads ahead on its own:
// it only ever asks the underlying source for exactly as many bytes as a
// caller requests. This is what lets a caller mark, read a small bounded
// amount, and cheaply rewind without assuming anything about the
// underlying source's own buffering or seek capability.
type PositionTrackingReader struct {
	src io.Reader
	pos int64

	marking  bool
	limit    int
	recorded []byte
	pending  []byte
}

// NewPositionTrackingReader wraps src for position tracking.
func NewPositionTrackingReader(src io.Reader) *PositionTrackingReader {
	return &PositionTrackingReader{src: src}
}

// Position returns the number of bytes delivered (via Read, ReadByte, or
// Skip) to callers since construction.
func (r *PositionTrackingReader) Position() int64 {
	return r.pos
}

// Read implements io.Reader. A short read from the underlying source is
// returned as-is; position only advances by bytes actually delivered.
func (r *PositionTrackingReader) Read(p []byte) (int, error) {
	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		r.pos += int64(n)
		r.record(p[:n])
		return n, nil
	}
	n, err := r.src.Read(p)
	if n > 0 {
		r.pos += int64(n)
		r.record(p[:n])
	}
	return n, err
}

// ReadByte implements io.ByteReader.
func (r *PositionTrackingReader) ReadByte() (byte, error) {
	if len(r.pending) > 0 {
		b := r.pending[0]
		r.pending = r.pending[1:]
		r.pos++
		r.record([]byte{b})
		return b, nil
	}
	var buf [1]byte
	n, err := r.src.Read(buf[:])
	if n == 1 {
		r.pos++
		r.record(buf[:1])
		return buf[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, err
}

// record appends delivered bytes to the in-flight mark buffer, if any. If
// the mark's readlimit would be exceeded, the mark is invalidated: a
// subsequent Reset will fail with ErrResetUnsupported.
func (r *PositionTrackingReader) record(b []byte) {
	if !r.marking {
		return
	}
	if len(r.recorded)+len(b) > r.limit {
		r.marking = false
		r.recorded = nil
		return
	}
	r.recorded = append(r.recorded, b...)
}

// Mark records the current position. Up to readlimit bytes may be consumed
// before Reset becomes unable to rewind. Mark overwrites any previous,
// unconsumed mark.
func (r *PositionTrackingReader) Mark(readlimit int) {
	r.marking = true
	r.limit = readlimit
	r.recorded = r.recorded[:0]
}

// Reset rewinds the tracked position, and the effective stream, back to
// the most recent Mark. Bytes consumed since the mark are replayed to
// subsequent Read/ReadByte calls rather than re-read from the underlying
// source.
func (r *PositionTrackingReader) Reset() error {
	if !r.marking {
		return ErrResetUnsupported
	}
	if len(r.recorded) > 0 {
		merged := make([]byte, 0, len(r.recorded)+len(r.pending))
		merged = append(merged, r.recorded...)
		merged = append(merged, r.pending...)
		r.pending = merged
		r.pos -= int64(len(r.recorded))
	}
	r.marking = false
	r.recorded = nil
	return nil
}

// Skip discards exactly n bytes, advancing the tracked position. It
// returns io.ErrUnexpectedEOF if fewer than n bytes were available.
func (r *PositionTrackingReader) Skip(n int64) error {
	var buf [256]byte
	for n > 0 {
		chunk := int64(len(buf))
		if n < chunk {
			chunk = n
		}
		read, err := r.Read(buf[:chunk])
		n -= int64(read)
		if err != nil {
			if err == io.EOF && n > 0 {
				return io.ErrUnexpectedEOF
			}
			if err != io.EOF {
				return err
			}
		}
		if read == 0 && n > 0 {
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}

// Close closes the underlying source, if it is an io.Closer.
func (r *PositionTrackingReader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
