package warcdebug

import (
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Analyze opens path and produces a Report describing its compression
// shape. The returned Report's Filename is set to path. A true I/O
// failure (the file cannot be opened or read at all) is returned as an
// error rather than folded into the Report; every other outcome,
// including every gzip structural error, is captured in the Report
// itself.
func Analyze(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rpt, err := analyzeReader(f, path)
	f.Close()
	if err != nil {
		return nil, err
	}

	// The first handle is closed before the double-wrap pass reopens the
	// file, so the two passes never hold the file open at the same time.
	if rpt.Status == StatusSingleCompressed {
		if upgraded, uErr := detectRecompressed(path); uErr == nil && upgraded != nil {
			rpt.Status = StatusRecompressed
			rpt.Members = upgraded
		}
	}

	return rpt, nil
}

// AnalyzeReader behaves like Analyze, but reads from an already-open
// source instead of a path. No double-wrap detection is attempted: that
// pass needs to reopen the source from byte zero, which an arbitrary
// io.Reader cannot guarantee. Use Analyze for that.
func AnalyzeReader(r io.Reader) (*Report, error) {
	return analyzeReader(r, "")
}

func analyzeReader(r io.Reader, filename string) (*Report, error) {
	dec := NewCountingGzipDecoder(r, true, DefaultSnippetWidth)
	_, drainErr := dec.Drain()

	rpt := &Report{
		Filename: filename,
		Members:  dec.Members(),
	}

	switch {
	case drainErr == nil:
		switch len(rpt.Members) {
		case 0:
			rpt.Status = StatusUncompressed
		case 1:
			rpt.Status = StatusSingleCompressed
		default:
			rpt.Status = StatusMultiCompressed
		}
		return rpt, nil

	default:
		var derr *DecodeError
		if errors.As(drainErr, &derr) {
			switch derr.Kind {
			case KindGarbageAfterValidStream:
				if len(rpt.Members) > 0 {
					rpt.Status = StatusGarbageAtEnd
					rpt.Err = drainErr
					return rpt, nil
				}
			case KindNotGzip:
				if len(rpt.Members) == 0 {
					rpt.Status = StatusUncompressed
					return rpt, nil
				}
			}
			rpt.Status = StatusFaultyCompressed
			rpt.Err = drainErr
			return rpt, nil
		}
		// A non-DecodeError failure (e.g. a genuine I/O error from the
		// underlying source) is not something the analyzer can classify;
		// propagate it.
		return nil, drainErr
	}
}

// detectRecompressed performs the second decoding pass described by the
// double-wrap check: it reopens path, wraps a standard gzip decoder
// around it to obtain the (single member's) decompressed bytes, and feeds
// those bytes into a fresh CountingGzipDecoder. If that inner decoder
// terminates cleanly with two or more members, the inner members are
// returned so the caller can upgrade its Report.
func detectRecompressed(path string) ([]Member, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	inner := NewCountingGzipDecoder(gz, true, DefaultSnippetWidth)
	_, drainErr := inner.Drain()
	if drainErr != nil {
		return nil, drainErr
	}
	if len(inner.Members()) < 2 {
		return nil, nil
	}
	return inner.Members(), nil
}
