package warcdebug

import (
	"fmt"
	"strings"
)

// DefaultSnippetWidth is the number of leading decompressed bytes captured
// per member when no explicit width is requested.
const DefaultSnippetWidth = 30

// Member describes one gzip member recovered from a stream: its physical
// location, its compressed and uncompressed sizes, and a short prefix of
// its decompressed content. A Member is only ever produced once its
// trailer has validated, so every Member in a Report is, by construction,
// well-formed.
type Member struct {
	ID              int
	Offset          int64
	CompressedLen   int64
	UncompressedLen uint32
	Snippet         []byte
}

// End returns the byte offset one past the member's last byte, i.e. the
// offset at which the next member (or garbage, or EOF) would begin.
func (m Member) End() int64 {
	return m.Offset + m.CompressedLen
}

// String renders the per-member report line described by the textual
// report format: source range, sizes, and an escaped snippet.
func (m Member) String() string {
	s := fmt.Sprintf("Entry #%d: source(%d->%d), compressed=%d bytes, uncompressed=%d bytes",
		m.ID, m.Offset, m.End(), m.CompressedLen, m.UncompressedLen)
	if len(m.Snippet) > 0 {
		s += " snippet=" + EscapeSnippet(m.Snippet)
	}
	return s
}

// EscapeSnippet renders raw bytes for display, escaping control bytes as
// \n, \r, \t, or \xHH, and passing other printable ASCII through verbatim.
func EscapeSnippet(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch c {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				fmt.Fprintf(&sb, `\x%02x`, c)
			}
		}
	}
	return sb.String()
}
