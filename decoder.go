package warcdebug

import (
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// memberState names the steps the decoder walks through for a single
// member: AwaitMagic -> ReadHeaderFields -> Inflating -> ReadTrailer ->
// Finalized. ReadInto consults it only to decide whether the next member's
// header must be parsed; the rest of the decoder's control flow follows
// these steps directly rather than dispatching through a generic state
// table.
type memberState int

const (
	stateAwaitMagic memberState = iota
	stateReadHeaderFields
	stateInflating
	stateReadTrailer
	stateFinalized
)

// refillFeederSize is the input buffer size used to feed the raw
// inflater, one refill at a time. It is deliberately small: a larger
// buffer would cause coarser mark/reset rewinds and make byte-offset
// accounting imprecise near member boundaries.
const refillFeederSize = 100

// refillFeeder hands the raw DEFLATE inflater input bytes in small,
// explicitly tracked chunks, so the decoder always knows exactly how many
// bytes of the most recent chunk the inflater actually consumed. It
// implements both io.Reader and io.ByteReader so that klauspost's flate
// package treats it as an already-buffered source and never wraps it in
// another layer of read-ahead buffering of its own.
type refillFeeder struct {
	pr  *PositionTrackingReader
	buf [refillFeederSize]byte
	pos int
	n   int
}

func newRefillFeeder(pr *PositionTrackingReader) *refillFeeder {
	return &refillFeeder{pr: pr}
}

func (f *refillFeeder) refill() error {
	f.pr.Mark(refillFeederSize)
	n, err := f.pr.Read(f.buf[:])
	f.pos = 0
	f.n = n
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return err
	}
	return nil
}

func (f *refillFeeder) Read(p []byte) (int, error) {
	if f.pos >= f.n {
		if err := f.refill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, f.buf[f.pos:f.n])
	f.pos += n
	return n, nil
}

func (f *refillFeeder) ReadByte() (byte, error) {
	if f.pos >= f.n {
		if err := f.refill(); err != nil {
			return 0, err
		}
	}
	b := f.buf[f.pos]
	f.pos++
	return b, nil
}

// consumed is how many bytes of the currently-held chunk have been
// delivered to the inflater.
func (f *refillFeeder) consumed() int { return f.pos }

// CountingGzipDecoder parses a (possibly concatenated) gzip byte stream
// member by member, recovering each member's physical offset, compressed
// and uncompressed length, and a short decompressed snippet, without ever
// relying on a decoder that silently stops at the first member.
type CountingGzipDecoder struct {
	pr           *PositionTrackingReader
	concatenated bool
	snippetWidth int

	members []Member

	state      memberState
	curID      int
	curOffset  int64
	feeder     *refillFeeder
	fr         io.ReadCloser
	crc        uint32
	produced   uint32
	snippet    []byte
	sawMember  bool
	eof        bool
	closed     bool
	err        error
	outBuf     []byte // scratch buffer for Drain's internal reads
}

// NewCountingGzipDecoder constructs a decoder over r. If concatenated is
// true, the decoder consumes members until it reaches true end of input;
// if false, it stops after the first member's trailer, leaving the
// underlying reader positioned immediately after it. snippetWidth is the
// number of leading decompressed bytes captured per member; a value <= 0
// selects DefaultSnippetWidth.
func NewCountingGzipDecoder(r io.Reader, concatenated bool, snippetWidth int) *CountingGzipDecoder {
	if snippetWidth <= 0 {
		snippetWidth = DefaultSnippetWidth
	}
	return &CountingGzipDecoder{
		pr:           NewPositionTrackingReader(r),
		concatenated: concatenated,
		snippetWidth: snippetWidth,
		curID:        -1,
		outBuf:       make([]byte, 32*1024),
	}
}

// Members returns the members decoded so far. The slice is owned by the
// decoder and must not be mutated by the caller.
func (d *CountingGzipDecoder) Members() []Member {
	return d.members
}

// Close releases the current inflater, if any. It is idempotent.
func (d *CountingGzipDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.fr != nil {
		err := d.fr.Close()
		d.fr = nil
		return err
	}
	return nil
}

// Drain repeatedly discards decompressed output until EOF or a decode
// error, then closes the decoder. It returns the total number of
// uncompressed bytes read across all members.
func (d *CountingGzipDecoder) Drain() (int64, error) {
	var total int64
	for {
		n, err := d.ReadInto(d.outBuf)
		total += int64(n)
		if err == io.EOF {
			d.Close()
			return total, nil
		}
		if err != nil {
			d.Close()
			return total, err
		}
	}
}

// ReadInto delivers decompressed bytes to the caller across member
// boundaries, with the same semantics as a standard decompressor's Read:
// io.EOF is returned once every member (and, if concatenated, the whole
// stream) has been consumed.
func (d *CountingGzipDecoder) ReadInto(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if d.eof {
		return 0, io.EOF
	}
	for {
		if d.state == stateAwaitMagic || d.state == stateReadHeaderFields {
			if err := d.startMember(); err != nil {
				if err == io.EOF {
					d.eof = true
					return 0, io.EOF
				}
				d.err = err
				return 0, err
			}
		}

		n, err := d.fr.Read(p)
		if n > 0 {
			d.crc = crc32.Update(d.crc, crc32.IEEETable, p[:n])
			d.produced += uint32(n)
			if len(d.snippet) < d.snippetWidth {
				take := d.snippetWidth - len(d.snippet)
				if take > n {
					take = n
				}
				d.snippet = append(d.snippet, p[:take]...)
			}
		}
		if err == io.EOF {
			if ferr := d.finishMember(); ferr != nil {
				d.err = ferr
				return n, ferr
			}
			if !d.concatenated {
				d.eof = true
				if n > 0 {
					return n, nil
				}
				return 0, io.EOF
			}
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			kind := KindDeflateFormat
			if err == io.ErrUnexpectedEOF {
				kind = KindTruncated
			}
			d.err = newDecodeError(kind, d.curID, d.curOffset, err)
			return n, d.err
		}
		return n, nil
	}
}

// startMember parses the header of the next member and readies the raw
// inflater to decode its payload.
func (d *CountingGzipDecoder) startMember() error {
	d.state = stateAwaitMagic
	d.curOffset = d.pr.Position()

	var magic [2]byte
	n, err := io.ReadFull(d.pr, magic[:])
	if n == 0 && err != nil {
		if d.sawMember && d.concatenated {
			return io.EOF
		}
		return newDecodeError(KindNotGzip, d.curID+1, d.curOffset, err)
	}
	if n < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		if d.sawMember {
			return newDecodeError(KindGarbageAfterValidStream, d.curID+1, d.curOffset, nil)
		}
		return newDecodeError(KindNotGzip, d.curID+1, d.curOffset, nil)
	}

	d.curID++
	d.state = stateReadHeaderFields
	d.snippet = d.snippet[:0]
	d.crc = 0
	d.produced = 0

	var hdr [8]byte
	if _, err := io.ReadFull(d.pr, hdr[:]); err != nil {
		return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
	}
	method := hdr[0]
	flags := hdr[1]
	// MTIME hdr[2:6], extra flags hdr[6], OS hdr[7] are stored but not
	// validated by this decoder.

	if method != 8 {
		return newDecodeError(KindUnsupportedMethod, d.curID, d.curOffset, nil)
	}
	if flags&0xe0 != 0 {
		return newDecodeError(KindReservedFlags, d.curID, d.curOffset, nil)
	}

	const (
		flagText    = 1 << 0
		flagHdrCRC  = 1 << 1
		flagExtra   = 1 << 2
		flagName    = 1 << 3
		flagComment = 1 << 4
	)

	if flags&flagExtra != 0 {
		var xlenBuf [2]byte
		if _, err := io.ReadFull(d.pr, xlenBuf[:]); err != nil {
			return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
		}
		xlen := int64(xlenBuf[0]) | int64(xlenBuf[1])<<8
		if err := d.pr.Skip(xlen); err != nil {
			return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
		}
	}
	if flags&flagName != 0 {
		if err := skipNulTerminated(d.pr); err != nil {
			return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
		}
	}
	if flags&flagComment != 0 {
		if err := skipNulTerminated(d.pr); err != nil {
			return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
		}
	}
	if flags&flagHdrCRC != 0 {
		var crcBuf [2]byte
		if _, err := io.ReadFull(d.pr, crcBuf[:]); err != nil {
			return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
		}
	}
	_ = flagText

	d.sawMember = true
	d.state = stateInflating
	d.feeder = newRefillFeeder(d.pr)
	d.fr = flate.NewReader(d.feeder)
	return nil
}

// finishMember parses and validates the trailer for the member currently
// being decoded, rewinds the reader onto the trailer's first byte, and
// appends the resulting Member on success.
func (d *CountingGzipDecoder) finishMember() error {
	d.fr.Close()
	d.fr = nil

	if err := d.pr.Reset(); err != nil {
		return newDecodeError(KindDeflateFormat, d.curID, d.curOffset, err)
	}
	if err := d.pr.Skip(int64(d.feeder.consumed())); err != nil {
		return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
	}

	d.state = stateReadTrailer
	var trailer [8]byte
	if _, err := io.ReadFull(d.pr, trailer[:]); err != nil {
		return newDecodeError(KindTruncated, d.curID, d.curOffset, err)
	}
	storedCRC := le32(trailer[0:4])
	storedISIZE := le32(trailer[4:8])

	if storedCRC != d.crc {
		return newDecodeError(KindCorruptCRC, d.curID, d.curOffset, nil)
	}
	if storedISIZE != d.produced {
		return newDecodeError(KindCorruptISIZE, d.curID, d.curOffset, nil)
	}

	d.state = stateFinalized
	end := d.pr.Position()
	m := Member{
		ID:              d.curID,
		Offset:          d.curOffset,
		CompressedLen:   end - d.curOffset,
		UncompressedLen: d.produced,
		Snippet:         append([]byte(nil), d.snippet...),
	}
	d.members = append(d.members, m)
	d.state = stateAwaitMagic
	return nil
}

func skipNulTerminated(r io.Reader) error {
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		if b[0] == 0 {
			return nil
		}
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
