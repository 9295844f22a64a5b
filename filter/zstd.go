package filter

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression flag values, mirroring header.Compression without importing
// it (this package is lower-level than header; smf wires the two together).
const (
	FlagNone uint8 = 0
	FlagZstd uint8 = 2
)

// DefaultMinCompressionSize is the built-in compression filter's default
// min_compression_size (spec.md §4.2): payloads smaller than this are left
// alone even when compression is requested, since ZSTD's frame overhead
// swamps any savings on small buffers.
const DefaultMinCompressionSize = 64

var (
	sharedEncoder, _ = zstd.NewWriter(nil)
	sharedDecoder, _ = zstd.NewReader(nil)
)

// ZstdCompress is the outbound compression filter of spec.md §4.2: if the
// context's compression is not "none" and the payload is at least
// minSize bytes, replace the payload with its ZSTD compression and set
// compression to zstd. Otherwise, no-op — this respects an upstream
// decision to leave the payload uncompressed.
func ZstdCompress(minSize int) Filter {
	if minSize <= 0 {
		minSize = DefaultMinCompressionSize
	}
	return FilterFunc(func(ctx *Context) error {
		if ctx.Compression == FlagNone || len(ctx.Payload) < minSize {
			return nil
		}
		compressed := sharedEncoder.EncodeAll(ctx.Payload, nil)
		ctx.Payload = compressed
		ctx.Compression = FlagZstd
		return nil
	})
}

// ZstdDecompress is the inbound decompression filter of spec.md §4.2: if
// compression is zstd, replace the payload with its decompression and set
// compression back to none. Otherwise no-op.
func ZstdDecompress() Filter {
	return FilterFunc(func(ctx *Context) error {
		if ctx.Compression != FlagZstd {
			return nil
		}
		decompressed, err := sharedDecoder.DecodeAll(ctx.Payload, nil)
		if err != nil {
			return fmt.Errorf("filter: zstd decompress: %w", err)
		}
		ctx.Payload = decompressed
		ctx.Compression = FlagNone
		return nil
	})
}
