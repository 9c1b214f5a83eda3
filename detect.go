package warcdebug

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// DefaultPeekSize is how many decompressed bytes QuickCheck reads before
// giving up and declaring the stream "probably single member."
const DefaultPeekSize = DefaultBlockSize * 2

// QuickCheck is the triage counterpart to Analyze: instead of walking
// every member, it peeks at path's first DefaultPeekSize decompressed
// bytes and reports StatusMultiCompressed as soon as it sees a second
// member's header, or StatusSingleCompressed otherwise. It is what the
// CLI's --quick flag runs across many files before anyone pays for a
// full Analyze pass.
//
// QuickCheck's Status is necessarily coarser than Analyze's: it never
// produces Members, and it folds StatusUncompressed,
// StatusFaultyCompressed, StatusGarbageAtEnd, and StatusRecompressed all
// into StatusSingleCompressed, since distinguishing those requires the
// full decode this function exists to avoid. Treat a QuickCheck result
// of StatusSingleCompressed as "needs a real Analyze to be sure," not as
// a final answer.
func QuickCheck(path string) (Status, error) {
	f, err := os.Open(path)
	if err != nil {
		return StatusUncompressed, err
	}
	defer f.Close()

	if looksLikeMultiMember(f, DefaultPeekSize) {
		return StatusMultiCompressed, nil
	}
	return StatusSingleCompressed, nil
}

// looksLikeMultiMember reads up to peekSize bytes of decompressed data
// from the first member; if the member ends before that (a short read
// terminated by that member's own EOF) and a second member's header
// follows, the stream is probably multi-member.
func looksLikeMultiMember(r io.Reader, peekSize int64) bool {
	// gzip multistream requires buffered I/O to stop exactly at the
	// member boundary.
	buf := bufio.NewReader(r)
	gz, err := gzip.NewReader(buf)
	if err != nil {
		return false
	}
	gz.Multistream(false)

	n, err := io.CopyN(io.Discard, gz, peekSize)
	if err != io.EOF || n == peekSize {
		return false
	}

	// Short read: the first member ended before peekSize. See whether a
	// second member's header follows by resetting the gzip stream onto
	// the same buffered reader.
	return gz.Reset(buf) == nil
}
