package warcdebug

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// gzipMember gzip-compresses data as one standalone member and returns its
// bytes.
func gzipMember(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// concatMembers gzip-compresses each byte slice in chunks as its own
// member and concatenates the results, producing a multi-member stream.
func concatMembers(t *testing.T, chunks ...[]byte) []byte {
	t.Helper()
	var out []byte
	for _, c := range chunks {
		out = append(out, gzipMember(t, c)...)
	}
	return out
}

func drainAll(t *testing.T, dec *CountingGzipDecoder) ([]byte, error) {
	t.Helper()
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := dec.ReadInto(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

func TestDecoderSingleMember(t *testing.T) {
	payload := []byte("hello, warc world")
	raw := gzipMember(t, payload)

	dec := NewCountingGzipDecoder(bytes.NewReader(raw), true, DefaultSnippetWidth)
	out, err := drainAll(t, dec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("got %q, want %q", out, payload)
	}

	members := dec.Members()
	if len(members) != 1 {
		t.Fatalf("got %d members, want 1", len(members))
	}
	m := members[0]
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0", m.Offset)
	}
	if m.CompressedLen != int64(len(raw)) {
		t.Errorf("CompressedLen = %d, want %d", m.CompressedLen, len(raw))
	}
	if m.UncompressedLen != uint32(len(payload)) {
		t.Errorf("UncompressedLen = %d, want %d", m.UncompressedLen, len(payload))
	}
	if !bytes.Equal(m.Snippet, payload) {
		t.Errorf("Snippet = %q, want %q", m.Snippet, payload)
	}
}

func TestDecoderMultiMember(t *testing.T) {
	a := []byte("first record")
	b := []byte("second record, a bit longer")
	c := []byte("third")
	raw := concatMembers(t, a, b, c)

	dec := NewCountingGzipDecoder(bytes.NewReader(raw), true, DefaultSnippetWidth)
	out, err := drainAll(t, dec)
	if err != nil {
		t.Fatal(err)
	}
	want := append(append(append([]byte{}, a...), b...), c...)
	if !bytes.Equal(out, want) {
		t.Fatalf("got %q, want %q", out, want)
	}

	members := dec.Members()
	if len(members) != 3 {
		t.Fatalf("got %d members, want 3", len(members))
	}
	if members[0].Offset != 0 {
		t.Errorf("member 0 offset = %d, want 0", members[0].Offset)
	}
	if members[1].Offset != members[0].End() {
		t.Errorf("member 1 offset = %d, want %d", members[1].Offset, members[0].End())
	}
	if members[2].Offset != members[1].End() {
		t.Errorf("member 2 offset = %d, want %d", members[2].Offset, members[1].End())
	}
}

func TestDecoderNonConcatenatedStopsAfterFirstMember(t *testing.T) {
	raw := concatMembers(t, []byte("one"), []byte("two"))

	dec := NewCountingGzipDecoder(bytes.NewReader(raw), false, DefaultSnippetWidth)
	out, err := drainAll(t, dec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte("one")) {
		t.Fatalf("got %q, want %q", out, "one")
	}
	if len(dec.Members()) != 1 {
		t.Fatalf("got %d members, want 1", len(dec.Members()))
	}
}

func TestDecoderNotGzip(t *testing.T) {
	dec := NewCountingGzipDecoder(bytes.NewReader([]byte("plain text, no magic here")), true, DefaultSnippetWidth)
	_, err := drainAll(t, dec)

	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != KindNotGzip {
		t.Fatalf("err = %v, want KindNotGzip", err)
	}
}

func TestDecoderEmptyInput(t *testing.T) {
	// An empty input reaches EOF before even the magic bytes, which the
	// decoder reports as KindNotGzip since no member has been seen yet;
	// Analyze is what folds this into a clean StatusUncompressed report.
	dec := NewCountingGzipDecoder(bytes.NewReader(nil), true, DefaultSnippetWidth)
	out, err := drainAll(t, dec)

	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != KindNotGzip {
		t.Fatalf("err = %v, want KindNotGzip", err)
	}
	if len(out) != 0 || len(dec.Members()) != 0 {
		t.Fatalf("expected no output and no members on empty input")
	}
}

func TestDecoderSingleMagicByte(t *testing.T) {
	dec := NewCountingGzipDecoder(bytes.NewReader([]byte{0x1f}), true, DefaultSnippetWidth)
	_, err := drainAll(t, dec)

	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != KindNotGzip {
		t.Fatalf("err = %v, want KindNotGzip", err)
	}
}

func TestDecoderGarbageAfterValidMember(t *testing.T) {
	raw := append(gzipMember(t, []byte("valid")), []byte("garbage")...)

	dec := NewCountingGzipDecoder(bytes.NewReader(raw), true, DefaultSnippetWidth)
	_, err := drainAll(t, dec)

	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != KindGarbageAfterValidStream {
		t.Fatalf("err = %v, want KindGarbageAfterValidStream", err)
	}
	if len(dec.Members()) != 1 {
		t.Fatalf("got %d members, want 1", len(dec.Members()))
	}
}

func TestDecoderTruncatedTrailer(t *testing.T) {
	raw := gzipMember(t, []byte("this member gets cut short"))
	truncated := raw[:len(raw)-4]

	dec := NewCountingGzipDecoder(bytes.NewReader(truncated), true, DefaultSnippetWidth)
	_, err := drainAll(t, dec)

	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != KindTruncated {
		t.Fatalf("err = %v, want KindTruncated", err)
	}
}

func TestDecoderCorruptCRC(t *testing.T) {
	raw := gzipMember(t, []byte("corrupt my checksum please"))
	corrupted := append([]byte{}, raw...)
	// The trailer's CRC32 sits in the last 8 bytes, little-endian, before ISIZE.
	crcOff := len(corrupted) - 8
	binary.LittleEndian.PutUint32(corrupted[crcOff:], binary.LittleEndian.Uint32(corrupted[crcOff:])^0xffffffff)

	dec := NewCountingGzipDecoder(bytes.NewReader(corrupted), true, DefaultSnippetWidth)
	_, err := drainAll(t, dec)

	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != KindCorruptCRC {
		t.Fatalf("err = %v, want KindCorruptCRC", err)
	}
}

func TestDecoderUnsupportedMethod(t *testing.T) {
	raw := gzipMember(t, []byte("anything"))
	corrupted := append([]byte{}, raw...)
	corrupted[2] = 0 // method byte, must be 8 (deflate)

	dec := NewCountingGzipDecoder(bytes.NewReader(corrupted), true, DefaultSnippetWidth)
	_, err := drainAll(t, dec)

	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != KindUnsupportedMethod {
		t.Fatalf("err = %v, want KindUnsupportedMethod", err)
	}
}

func TestDecoderSnippetWidthTruncatesLongMember(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 200)
	raw := gzipMember(t, payload)

	dec := NewCountingGzipDecoder(bytes.NewReader(raw), true, 10)
	if _, err := drainAll(t, dec); err != nil {
		t.Fatal(err)
	}
	if len(dec.Members()[0].Snippet) != 10 {
		t.Fatalf("Snippet length = %d, want 10", len(dec.Members()[0].Snippet))
	}
}
