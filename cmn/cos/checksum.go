package cos

import "github.com/OneOfOne/xxhash"

// Checksum computes the wire checksum spec.md §4.1/§6 calls for: xxhash64
// of the payload, masked to its low 32 bits. Grounded in the teacher's own
// use of OneOfOne/xxhash for its rendezvous-hash digest (fs/hrw.go,
// cmn/cos/uuid.go) — same library, unseeded here since the wire format has
// no seed field.
func Checksum(payload []byte) uint32 {
	return uint32(xxhash.Checksum64(payload) & 0xFFFFFFFF)
}
