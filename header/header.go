// Package header implements the SMF frame header codec: spec.md §4.1 and
// §6. The wire header is the fixed 16-byte tail of a FlatBuffers-encoded
// root object in the reference implementation; this package mirrors that
// inline layout bit-for-bit with a direct byte encoding, the same way the
// teacher's own transport package builds its frame headers directly rather
// than through a schema compiler (see DESIGN.md for why FlatBuffers itself
// isn't wired here).
package header

import (
	"encoding/binary"

	"github.com/smfrpc/smf-go/cmn/cos"
	"github.com/smfrpc/smf-go/cmn/debug"
)

// Size is the fixed wire size of a frame header, in bytes.
const Size = 16

// Compression flag values (spec.md §3, §6). Max is the highest value a
// decoder will accept; anything above it is InvalidCompression.
type Compression uint8

const (
	CompressionNone     Compression = 0
	CompressionDisabled Compression = 1
	CompressionZstd     Compression = 2

	CompressionMax = CompressionZstd
)

// MaxBufferSize bounds header.Size on decode (spec.md §3).
const MaxBufferSize = 512 * 1024 * 1024

// Header is the decoded, validated wire frame header.
type Header struct {
	Compression Compression
	Bitflags    uint8
	Session     uint16
	Size        uint32
	Checksum    uint32
	Meta        uint32
}

// Encode produces the 16-byte wire header for an outgoing frame. The
// checksum is computed here, over payload, so callers never have to
// remember to do it themselves nor can they drift from what decode()
// verifies.
func Encode(compression Compression, session uint16, meta uint32, payload []byte) []byte {
	b := make([]byte, Size)
	b[0] = byte(compression)
	b[1] = 0 // bitflags: reserved, always 0 on send
	binary.BigEndian.PutUint16(b[2:4], session)
	binary.BigEndian.PutUint32(b[4:8], uint32(len(payload)))
	binary.BigEndian.PutUint32(b[8:12], cos.Checksum(payload))
	binary.BigEndian.PutUint32(b[12:16], meta)
	return b
}

// Decode parses and validates a 16-byte wire header per spec.md §4.1. Any
// returned error is fatal to the reader (see §4.4 / §7).
func Decode(b []byte) (Header, error) {
	debug.Assertf(len(b) == Size, "header: decode requires exactly %d bytes, got %d", Size, len(b))

	h := Header{
		Compression: Compression(b[0]),
		Bitflags:    b[1],
		Session:     binary.BigEndian.Uint16(b[2:4]),
		Size:        binary.BigEndian.Uint32(b[4:8]),
		Checksum:    binary.BigEndian.Uint32(b[8:12]),
		Meta:        binary.BigEndian.Uint32(b[12:16]),
	}

	switch {
	case h.Size == 0:
		return Header{}, &cos.ErrEmptyBody{}
	case h.Size > MaxBufferSize:
		return Header{}, &cos.ErrOversizePayload{Size: h.Size, Max: MaxBufferSize}
	case h.Compression > CompressionMax:
		return Header{}, &cos.ErrInvalidCompression{Got: uint8(h.Compression), Max: uint8(CompressionMax)}
	case h.Checksum == 0:
		return Header{}, &cos.ErrEmptyChecksum{}
	case h.Bitflags != 0:
		return Header{}, &cos.ErrUnsupportedBitflag{Got: h.Bitflags}
	case h.Meta == 0:
		return Header{}, &cos.ErrEmptyMeta{}
	}
	return h, nil
}
