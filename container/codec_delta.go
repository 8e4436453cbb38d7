package container

import "fmt"

// deltaCodec stores the first byte literally, then the sequence of signed
// byte differences modulo 256 (spec §4.1, id 4). Effective when adjacent
// bytes tend to be numerically close (audio, sensor, or sorted data).
type deltaCodec struct{}

func newDeltaCodec() *deltaCodec { return &deltaCodec{} }

func (*deltaCodec) ID() CodecID { return CodecDelta }

func (*deltaCodec) ShouldUse(data []byte) bool {
	return smallDeltaScore(data) > 0.25
}

func (*deltaCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	out := make([]byte, len(data))
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = data[i] - data[i-1]
	}
	return out, nil
}

func (*deltaCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	if expectedLen == 0 {
		return []byte{}, nil
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("delta: empty payload for non-empty output")
	}
	out := make([]byte, expectedLen)
	out[0] = data[0]
	for i := 1; i < expectedLen; i++ {
		if i >= len(data) {
			return nil, fmt.Errorf("delta: payload too short at byte %d", i)
		}
		out[i] = out[i-1] + data[i]
	}
	return out, nil
}
