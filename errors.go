package warcdebug

import "fmt"

// Kind distinguishes the ways a gzip member stream can fail to decode.
// Analyzer code switches on Kind, never on an error's message text.
type Kind int

const (
	// KindNotGzip means the very first two bytes of the stream were not
	// the gzip magic number.
	KindNotGzip Kind = iota
	// KindGarbageAfterValidStream means at least one member decoded
	// cleanly, and what follows it is not a valid gzip header.
	KindGarbageAfterValidStream
	// KindUnsupportedMethod means the header's compression method byte
	// was not 8 (DEFLATE).
	KindUnsupportedMethod
	// KindReservedFlags means a reserved bit was set in the header flags
	// byte.
	KindReservedFlags
	// KindTruncated means EOF was reached inside a member, before its
	// trailer could be read.
	KindTruncated
	// KindCorruptCRC means the trailer's stored CRC32 did not match the
	// CRC32 computed over the decompressed bytes.
	KindCorruptCRC
	// KindCorruptISIZE means the trailer's stored ISIZE did not match the
	// number of decompressed bytes actually produced.
	KindCorruptISIZE
	// KindDeflateFormat means the raw inflater itself rejected the
	// DEFLATE payload.
	KindDeflateFormat
)

func (k Kind) String() string {
	switch k {
	case KindNotGzip:
		return "not-gzip"
	case KindGarbageAfterValidStream:
		return "garbage-after-valid-stream"
	case KindUnsupportedMethod:
		return "unsupported-method"
	case KindReservedFlags:
		return "reserved-flags-set"
	case KindTruncated:
		return "truncated"
	case KindCorruptCRC:
		return "corrupt-crc"
	case KindCorruptISIZE:
		return "corrupt-isize"
	case KindDeflateFormat:
		return "deflate-format"
	default:
		return "unknown"
	}
}

// DecodeError reports a structural failure encountered while decoding a
// gzip member stream, along with the member index and byte offset at
// which it occurred.
type DecodeError struct {
	Kind     Kind
	MemberID int
	Offset   int64
	Err      error // underlying cause, if any (e.g. an io error)
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("warcdebug: member %d at offset %d: %s: %v", e.MemberID, e.Offset, e.Kind, e.Err)
	}
	return fmt.Sprintf("warcdebug: member %d at offset %d: %s", e.MemberID, e.Offset, e.Kind)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is a *DecodeError with the same Kind,
// supporting errors.Is(err, &DecodeError{Kind: KindNotGzip}) style checks.
func (e *DecodeError) Is(target error) bool {
	other, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newDecodeError(kind Kind, memberID int, offset int64, cause error) *DecodeError {
	return &DecodeError{Kind: kind, MemberID: memberID, Offset: offset, Err: cause}
}
