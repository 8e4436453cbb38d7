package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec wraps github.com/pierrec/lz4/v4 (spec §4.1, id 9). The teacher's
// go.mod lists this package as an indirect dependency of bodgit/sevenzip;
// here it is promoted to a direct dependency and given its own codec slot.
type lz4Codec struct{}

func newLZ4Codec() *lz4Codec { return &lz4Codec{} }

func (*lz4Codec) ID() CodecID { return CodecLZ4 }

func (*lz4Codec) ShouldUse(data []byte) bool {
	return len(data) >= 32
}

func (*lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4: close: %w", err)
	}
	return buf.Bytes(), nil
}

func (*lz4Codec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out := make([]byte, expectedLen)
	if _, err := io.ReadFull(r, out); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("lz4: read: %w", err)
	}
	return out, nil
}
