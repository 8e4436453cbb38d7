package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// brotliCodec wraps github.com/andybalholm/brotli (spec §4.1, id 10). Like
// LZ4, this is listed indirect in the teacher's go.mod (pulled in through
// bodgit/sevenzip) and is promoted to a direct dependency here.
type brotliCodec struct{}

func newBrotliCodec() *brotliCodec { return &brotliCodec{} }

func (*brotliCodec) ID() CodecID { return CodecBrotli }

func (*brotliCodec) ShouldUse(data []byte) bool {
	return len(data) >= 64
}

func (*brotliCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("brotli: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli: close: %w", err)
	}
	return buf.Bytes(), nil
}

func (*brotliCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(data))
	out := make([]byte, expectedLen)
	if _, err := io.ReadFull(r, out); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("brotli: read: %w", err)
	}
	return out, nil
}
