package warcdebug

import (
	"compress/gzip"
	"fmt"
	"io"
)

// OpenMember returns a reader over exactly the decompressed bytes of the
// single member m, seeking r to m.Offset first. The returned ReadCloser
// stops at m's trailer: reading past its uncompressed length returns
// io.EOF even though the underlying file may hold further members past
// m.End(). This is the payoff of a StatusMultiCompressed file: given an
// index of Members (as produced by Analyze), a caller can decompress any
// one record without touching its neighbors.
//
// OpenMember re-verifies the member's CRC32 and size as it is read, via
// the standard gzip.Reader machinery; a mismatch surfaces as an error
// from Read, same as it would from compress/gzip directly.
func OpenMember(r io.ReadSeeker, m Member) (io.ReadCloser, error) {
	if _, err := r.Seek(m.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("warcdebug: seeking to member %d offset %d: %w", m.ID, m.Offset, err)
	}

	lr := io.LimitReader(r, m.CompressedLen)
	gz, err := gzip.NewReader(lr)
	if err != nil {
		return nil, fmt.Errorf("warcdebug: opening member %d: %w", m.ID, err)
	}
	gz.Multistream(false)

	return gz, nil
}

// MemberAt scans members in order and returns the one containing byte
// offset decompressedOffset in the logical concatenation of all members'
// decompressed bytes, along with the offset within that member. It
// returns false if decompressedOffset is past the end of the last
// member.
func MemberAt(members []Member, decompressedOffset int64) (m Member, within int64, ok bool) {
	var base int64
	for _, cand := range members {
		span := int64(cand.UncompressedLen)
		if decompressedOffset < base+span {
			return cand, decompressedOffset - base, true
		}
		base += span
	}
	return Member{}, 0, false
}
