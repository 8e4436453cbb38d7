package container

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
)

// deflateCodec wraps the standard library's raw DEFLATE implementation
// (spec §4.1, id 5). Grounded on chd/codec_zlib.go, which wraps the same
// compress/flate package for CHD's "zlib" hunk codec (CHD also uses raw
// deflate, not the zlib container format).
type deflateCodec struct{}

func newDeflateCodec() *deflateCodec { return &deflateCodec{} }

func (*deflateCodec) ID() CodecID { return CodecDeflate }

func (*deflateCodec) ShouldUse(data []byte) bool {
	return len(data) >= 32
}

func (*deflateCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("deflate: new writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate: close: %w", err)
	}
	return buf.Bytes(), nil
}

func (*deflateCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer func() { _ = r.Close() }()

	out := make([]byte, expectedLen)
	if _, err := io.ReadFull(r, out); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("deflate: read: %w", err)
	}
	return out, nil
}
