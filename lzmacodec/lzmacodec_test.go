package lzmacodec

import (
	"bytes"
	"strings"
	"testing"
)

func TestIsCompressed(t *testing.T) {
	if IsCompressed([]byte{'V', 'B', 'S', 'P'}) {
		t.Fatal("VBSP ident should not look compressed")
	}
	if !IsCompressed([]byte("LZMA0000000000000000")) {
		t.Fatal("buffer starting with the magic should look compressed")
	}
	if IsCompressed([]byte("LZ")) {
		t.Fatal("short buffer should not be reported compressed")
	}
}

func TestDecompressPassthroughWhenUncompressed(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	out, err := Decompress(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("expected passthrough, got %v", out)
	}
}

func TestDecompressRejectsTruncatedHeader(t *testing.T) {
	_, err := Decompress([]byte("LZMA\x00\x00"))
	if err == nil {
		t.Fatal("expected an error for a truncated envelope")
	}
}

func TestCompressSkipsTinyPayloads(t *testing.T) {
	tiny := make([]byte, HeaderSize)
	out, err := Compress(tiny)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, tiny) {
		t.Fatal("payloads at or under HeaderSize should be returned unwrapped")
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	original := []byte(strings.Repeat("the lazy brush winding around a plane ", 200))

	compressed, err := Compress(original)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !IsCompressed(compressed) {
		t.Fatal("compressed output should carry the LZMA magic")
	}

	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(decompressed), len(original))
	}
}
