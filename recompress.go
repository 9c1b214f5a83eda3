package warcdebug

import (
	"errors"
	"io"

	gzip "github.com/klauspost/pgzip"
)

// DefaultBlockSize is the uncompressed-byte budget SplitByFixedBlock uses
// between gzip members when no record boundaries are available.
const DefaultBlockSize = 64 * 1024

// Splitter decides, as bytes are written to a Recompress destination,
// whether the member currently being written should be closed and a new
// one started. It receives the bytes about to be written and the number
// of uncompressed bytes already written to the current member, and
// returns the number of leading bytes of data that belong to the current
// member; the rest starts a new member. Returning len(data) means "keep
// going, don't split here."
type Splitter func(data []byte, memberOff int64) int

// SplitByFixedBlock returns a Splitter that closes a member every
// blockSize uncompressed bytes, regardless of content. This is the
// cheapest strategy and the one used when the caller has no record
// boundaries to split on.
func SplitByFixedBlock(blockSize int64) Splitter {
	return func(data []byte, memberOff int64) int {
		remaining := blockSize - memberOff
		if remaining <= 0 {
			return 0
		}
		if int64(len(data)) <= remaining {
			return len(data)
		}
		return int(remaining)
	}
}

// SplitByWARCRecord returns a Splitter that closes a member as soon as it
// contains exactly one complete WARC record, keyed off the
// "WARC/...Content-Length: N...\r\n\r\n" header it finds at the member's
// start. This turns a monolithic WARC.gz into one gzip member per record,
// the shape that supports cheap random access to an individual record
// without decompressing its neighbors.
//
// The framed record length (header + declared Content-Length + the
// trailing CRLFCRLF) routinely exceeds a single Recompress read chunk,
// so the returned Splitter remembers that length in a closure across
// calls rather than re-deriving it from scratch each time: once a header
// is matched at memberOff 0, every subsequent call for that member keeps
// consuming data ("keep going, don't split here") until the remembered
// length is reached, then splits exactly there. Without that memory, a
// record longer than one read chunk would look like plain unrecognized
// content on the next call (memberOff != 0, no header to match) and fall
// through to the fixed-block fallback, which closes members at arbitrary
// offsets that no longer land on a record start — degrading every member
// after that point for the rest of the file.
//
// If the data at memberOff 0 does not look like a WARC record header, it
// falls back to DefaultBlockSize so that non-WARC content interleaved
// with WARC records (padding, stray bytes) does not stall the split.
func SplitByWARCRecord() Splitter {
	fallback := SplitByFixedBlock(DefaultBlockSize)
	const noRecordTracked = -1
	want := int64(noRecordTracked)

	return func(data []byte, memberOff int64) int {
		if memberOff == 0 {
			want = noRecordTracked
			loc := warcHeaderPattern.FindSubmatchIndex(toASCII(data))
			if loc != nil {
				headerEnd := loc[1]
				stated, err := parseContentLength(data[loc[2]:loc[3]])
				if err == nil {
					want = int64(headerEnd) + stated + 4
				}
			}
		}

		if want == noRecordTracked {
			return fallback(data, memberOff)
		}

		remaining := want - memberOff
		if remaining <= 0 {
			want = noRecordTracked
			return fallback(data, memberOff)
		}
		if int64(len(data)) < remaining {
			return len(data)
		}
		want = noRecordTracked
		return int(remaining)
	}
}

var errNotADecimalLength = errors.New("warcdebug: not a decimal content-length")

func parseContentLength(b []byte) (int64, error) {
	var n int64
	if len(b) == 0 {
		return 0, errNotADecimalLength
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, errNotADecimalLength
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

// Recompress reads a plain (single-member or already multi-member) gzip
// stream from r, decompresses it, and re-emits it to w as a fresh
// multi-member gzip stream, calling split to decide where each member
// ends. This is the fix for StatusSingleCompressed files: feed the
// Report's own source through Recompress with SplitByWARCRecord to turn
// it into a StatusMultiCompressed file that supports random per-record
// access. Each member is written at the given compression level, not at
// the level of the source. Only one gzip layer is removed: for a
// StatusRecompressed file the output still decompresses to the inner gzip
// stream.
func Recompress(w io.Writer, r io.Reader, level int, split Splitter) error {
	dec := NewCountingGzipDecoder(r, true, 0)
	defer dec.Close()

	gz, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return err
	}

	var memberOff int64
	buf := make([]byte, 32*1024)

	for {
		n, rerr := dec.ReadInto(buf)
		if n > 0 {
			data := buf[:n]
			for len(data) > 0 {
				take := split(data, memberOff)
				if take < 0 || take > len(data) {
					take = len(data)
				}
				if take > 0 {
					if _, werr := gz.Write(data[:take]); werr != nil {
						return werr
					}
					memberOff += int64(take)
					data = data[take:]
				}
				if len(data) > 0 {
					// split reported a boundary strictly before the end of
					// this chunk: close the member and start a new one for
					// the remainder.
					if err := gz.Close(); err != nil {
						return err
					}
					gz.Reset(w)
					memberOff = 0
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}

	return gz.Close()
}
