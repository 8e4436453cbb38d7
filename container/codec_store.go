package container

// storeCodec is the identity codec (id 255): compress is a no-op, decompress
// truncates or zero-pads to the expected length. Used whenever compression
// does not pay or every other codec fails (spec §4.1).
type storeCodec struct{}

func newStoreCodec() *storeCodec { return &storeCodec{} }

func (*storeCodec) ID() CodecID { return CodecStore }

func (*storeCodec) ShouldUse([]byte) bool { return true }

func (*storeCodec) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (*storeCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	out := make([]byte, expectedLen)
	copy(out, data)
	return out, nil
}
