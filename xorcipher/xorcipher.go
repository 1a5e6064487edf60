// Package xorcipher implements the whole-buffer XOR obfuscation used by the
// Tactical Intervention dialect. It is not a cryptographic primitive: a
// fixed 32-byte rotating key with no nonce or authentication, so it is
// hand-rolled rather than built on golang.org/x/crypto. No ecosystem cipher
// matches "repeating-key XOR" because nothing treats that as a real cipher.
package xorcipher

// KeySize is the fixed length of the rotating XOR key.
const KeySize = 32

// Apply XORs every byte of buf in place against key, cycling key every
// KeySize bytes. Symmetric: calling it twice with the same key restores
// the original buffer.
func Apply(buf []byte, key [KeySize]byte) {
	for i := range buf {
		buf[i] ^= key[i%KeySize]
	}
}

// Apply32 XORs a little-endian 32-bit word against the first 4 bytes of
// key, as if the word were offset 0 of a hypothetical byte stream.
func Apply32(word uint32, key [KeySize]byte) uint32 {
	var k uint32
	k |= uint32(key[0])
	k |= uint32(key[1]) << 8
	k |= uint32(key[2]) << 16
	k |= uint32(key[3]) << 24
	return word ^ k
}
