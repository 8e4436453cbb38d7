package container

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec wraps github.com/klauspost/compress/zstd (spec §4.1, id 8).
// Grounded directly on chd/codec_zstd.go.
type zstdCodec struct{}

func newZstdCodec() *zstdCodec { return &zstdCodec{} }

func (*zstdCodec) ID() CodecID { return CodecZstd }

func (*zstdCodec) ShouldUse(data []byte) bool {
	return len(data) >= 64
}

func (*zstdCodec) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: new writer: %w", err)
	}
	defer func() { _ = enc.Close() }()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (*zstdCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: new reader: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, make([]byte, 0, expectedLen))
	if err != nil {
		return nil, fmt.Errorf("zstd: decode: %w", err)
	}
	if len(out) > expectedLen {
		return out[:expectedLen], nil
	}
	if len(out) < expectedLen {
		padded := make([]byte, expectedLen)
		copy(padded, out)
		out = padded
	}
	return out, nil
}
