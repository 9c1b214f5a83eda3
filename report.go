package warcdebug

import (
	"fmt"
	"strings"
)

// Report bundles the outcome of analyzing one file: its classification,
// the members recovered before any failure, and the failure itself, if
// any. A Report is immutable once returned from Analyze/AnalyzeReader.
type Report struct {
	Filename string
	Status   Status
	Members  []Member
	Err      error
}

// TotalCompressed returns the sum of every member's compressed length.
func (r *Report) TotalCompressed() int64 {
	var total int64
	for _, m := range r.Members {
		total += m.CompressedLen
	}
	return total
}

// TotalUncompressedByOffset returns the last member's offset plus its
// uncompressed length. This mixes a compressed-stream offset with an
// uncompressed length and is kept only for compatibility with tools that
// replicate that convention; prefer TotalUncompressedBySum.
func (r *Report) TotalUncompressedByOffset() int64 {
	if len(r.Members) == 0 {
		return 0
	}
	last := r.Members[len(r.Members)-1]
	return last.Offset + int64(last.UncompressedLen)
}

// TotalUncompressedBySum returns the sum of every member's uncompressed
// length: the semantically clean total decompressed size of the file.
func (r *Report) TotalUncompressedBySum() int64 {
	var total int64
	for _, m := range r.Members {
		total += int64(m.UncompressedLen)
	}
	return total
}

// hasGzExtension reports whether filename ends in ".gz", case-insensitive.
func hasGzExtension(filename string) bool {
	return len(filename) >= 3 && strings.EqualFold(filename[len(filename)-3:], ".gz")
}

// Recommendation returns a human-readable recommendation derived from the
// Report's status and filename.
func (r *Report) Recommendation() string {
	named := r.Filename != ""
	gzNamed := named && hasGzExtension(r.Filename)

	switch r.Status {
	case StatusUncompressed:
		if gzNamed {
			return "file is named as gzip (.gz) but is not compressed: remove the extension or compress it"
		}
		return "file is not compressed; consider compressing it"
	case StatusSingleCompressed:
		return "file is a single gzip member: random access to individual records is impossible; recompress per-record"
	case StatusMultiCompressed:
		if named && !gzNamed {
			return "file is a proper multi-member gzip stream but lacks a .gz extension: rename to add .gz"
		}
		return "file is a proper multi-member gzip stream: OK"
	case StatusFaultyCompressed:
		s := "file has gzip compression errors"
		if named && !gzNamed {
			s += " and also lacks a .gz extension"
		}
		return s
	case StatusGarbageAtEnd:
		s := "file has valid gzip members followed by trailing non-gzip bytes"
		if named && !gzNamed {
			s += " and also lacks a .gz extension"
		}
		return s
	case StatusRecompressed:
		return "file is a single gzip member whose content is itself a multi-member gzip stream (double-wrapped): unwrap once and keep it as .gz"
	default:
		return ""
	}
}

// String renders the one-line summary described by the report's textual
// form: GzipReport(status=S, #entries=N, compressed=C bytes,
// uncompressed=U bytes, exception=E).
func (r *Report) String() string {
	exc := "none"
	if r.Err != nil {
		exc = r.Err.Error()
	}
	return fmt.Sprintf("GzipReport(status=%s, #entries=%d, compressed=%d bytes, uncompressed=%d bytes, exception=%s)",
		r.Status, len(r.Members), r.TotalCompressed(), r.TotalUncompressedBySum(), exc)
}

// Listing renders the one-line summary followed by one line per member.
func (r *Report) Listing() string {
	var sb strings.Builder
	sb.WriteString(r.String())
	for _, m := range r.Members {
		sb.WriteByte('\n')
		sb.WriteString(m.String())
	}
	return sb.String()
}
