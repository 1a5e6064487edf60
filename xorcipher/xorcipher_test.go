package xorcipher

import "bytes"

import "testing"

func testKey() [KeySize]byte {
	var k [KeySize]byte
	for i := range k {
		k[i] = byte(i * 7)
	}
	return k
}

func TestApplyIsSymmetric(t *testing.T) {
	key := testKey()
	original := []byte("the quick brown fox jumps over the lazy dog, repeated past 32 bytes")
	buf := append([]byte(nil), original...)

	Apply(buf, key)
	if bytes.Equal(buf, original) {
		t.Fatal("expected ciphertext to differ from plaintext")
	}
	Apply(buf, key)
	if !bytes.Equal(buf, original) {
		t.Fatal("expected XOR applied twice to restore the original buffer")
	}
}

func TestApplyCyclesKeyEvery32Bytes(t *testing.T) {
	key := testKey()
	buf := make([]byte, 64)
	Apply(buf, key)
	for i := 0; i < KeySize; i++ {
		if buf[i] != buf[i+KeySize] {
			t.Fatalf("byte %d: key did not repeat every %d bytes", i, KeySize)
		}
	}
}

func TestApply32(t *testing.T) {
	key := testKey()
	word := uint32(0x56425350) // 'VBSP' little-endian-ish pattern
	x := Apply32(word, key)
	back := Apply32(x, key)
	if back != word {
		t.Fatalf("Apply32 not symmetric: got %#x, want %#x", back, word)
	}
}
