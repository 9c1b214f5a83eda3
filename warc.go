package warcdebug

import (
	"regexp"
	"strconv"
)

// warcHeaderPattern matches a WARC record's leading header block far
// enough to recover its declared Content-Length and the byte offset at
// which the header block (and its separating blank line) ends.
var warcHeaderPattern = regexp.MustCompile(`(?s)^WARC/.*?Content-Length: (\d+).*?\r\n\r\n`)

// toASCII drops any byte outside the printable ASCII / control range
// 1-127, mirroring treating the snippet as ASCII before matching.
func toASCII(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 1 && c <= 127 {
			out = append(out, c)
		}
	}
	return out
}

// WARCRecordLengthOK checks a member's declared Content-Length against its
// actual uncompressed length. It treats the member's snippet as ASCII and
// looks for a WARC record header ending in a blank line. If the snippet
// does not look like a WARC record header at all, ok is false and isWARC
// is false: this is not an error, just "not applicable." If it does look
// like one, isWARC is true and ok reports whether headerSize +
// statedContentLength + 4 (the record's trailing CRLFCRLF) equals the
// member's uncompressed length.
func WARCRecordLengthOK(m Member) (isWARC, ok bool) {
	ascii := toASCII(m.Snippet)
	loc := warcHeaderPattern.FindSubmatchIndex(ascii)
	if loc == nil {
		return false, false
	}
	headerSize := loc[1] - loc[0]
	stated, err := strconv.ParseUint(string(ascii[loc[2]:loc[3]]), 10, 64)
	if err != nil {
		return true, false
	}
	expected := int64(headerSize) + int64(stated) + 4
	return true, expected == int64(m.UncompressedLen)
}
