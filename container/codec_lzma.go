package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaCodec wraps github.com/ulikunitz/xz/lzma (spec §4.1, id 7). Grounded
// on chd/codec_lzma.go, which decodes the same headerless MAME LZMA
// variant; here the writer's own self-describing header is used instead of
// reconstructing one from a hunk size, since this format has no CHD-style
// "hunk bytes" constant to derive properties from.
type lzmaCodec struct{}

func newLZMACodec() *lzmaCodec { return &lzmaCodec{} }

func (*lzmaCodec) ID() CodecID { return CodecLZMA }

func (*lzmaCodec) ShouldUse(data []byte) bool {
	return len(data) >= 64
}

func (*lzmaCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("lzma: new writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lzma: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma: close: %w", err)
	}
	return buf.Bytes(), nil
}

func (*lzmaCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("lzma: new reader: %w", err)
	}
	out := make([]byte, expectedLen)
	if _, err := io.ReadFull(r, out); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("lzma: read: %w", err)
	}
	return out, nil
}
