package container

import "fmt"

// CodecID identifies one registered compression method on the wire.
type CodecID uint8

// Reserved codec ids (spec §3).
const (
	CodecEnd        CodecID = 0 // terminator chunk sentinel, never a real codec
	CodecRLE        CodecID = 1
	CodecDictionary CodecID = 2
	CodecHuffman    CodecID = 3
	CodecDelta      CodecID = 4
	CodecDeflate    CodecID = 5
	CodecBZip2      CodecID = 6
	CodecLZMA       CodecID = 7
	CodecZstd       CodecID = 8
	CodecLZ4        CodecID = 9
	CodecBrotli     CodecID = 10
	CodecLZHAM      CodecID = 11
	CodecStore      CodecID = 255
)

// Codec is the uniform contract every compression method honors so the
// engine can treat built-in and external codecs identically (spec §4.1).
type Codec interface {
	// ID returns this codec's stable wire id.
	ID() CodecID

	// ShouldUse is a cheap heuristic gate: it may return false for
	// inputs unlikely to benefit, letting the planner skip a trial
	// compression pass entirely.
	ShouldUse(data []byte) bool

	// Compress encodes data. It may fail; callers fall back to Store.
	Compress(data []byte) ([]byte, error)

	// Decompress restores data that was fed through Compress. It must not
	// panic on malformed input: it either returns an error or returns
	// exactly expectedLen bytes, padding with zeros or truncating as needed.
	Decompress(data []byte, expectedLen int) ([]byte, error)
}

// Registry holds the codecs available to one engine instance, keyed by id,
// plus the compatibility flags the planner's scoring adjustment (§4.4)
// consults for Zstandard and Brotli.
type Registry struct {
	codecs  map[CodecID]Codec
	order   []CodecID // registration order; built-ins first, then externals, then Store
	compat  map[CodecID]bool
}

// NewRegistry builds the registry in the order spec §4.1 requires: the four
// built-ins are always present, external codecs are appended only when the
// backing library is wired into this build, and Store is appended last.
//
// Unlike the teacher's package-level init()-registered global map, this
// registry is assembled explicitly in one place: the codec set here is
// closed (the Design Notes call out that plugin-style runtime loading is
// not warranted), so there is no benefit to the indirection and a real
// cost to auditability.
func NewRegistry() *Registry {
	r := &Registry{
		codecs: make(map[CodecID]Codec),
		compat: make(map[CodecID]bool),
	}

	builtins := []Codec{
		newRLECodec(),
		newDictionaryCodec(),
		newHuffmanCodec(),
		newDeltaCodec(),
	}
	for _, c := range builtins {
		r.register(c)
	}

	externals := []Codec{
		newDeflateCodec(),
		newLZMACodec(),
		newZstdCodec(),
		newLZ4Codec(),
		newBrotliCodec(),
	}
	for _, c := range externals {
		r.register(c)
	}
	// Zstandard and Brotli ship real, unmodified stream formats in this
	// build (no MAME-style "BRTL"/"ZSTD" sub-header per the Design
	// Notes' open question #4), so both are marked compatible and the
	// planner does not apply its scoring penalty to them.
	r.compat[CodecZstd] = true
	r.compat[CodecBrotli] = true

	r.register(newStoreCodec())

	return r
}

func (r *Registry) register(c Codec) {
	r.codecs[c.ID()] = c
	r.order = append(r.order, c.ID())
}

// Get looks up a codec by id.
func (r *Registry) Get(id CodecID) (Codec, bool) {
	c, ok := r.codecs[id]
	return c, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id CodecID) bool {
	_, ok := r.codecs[id]
	return ok
}

// IDs returns the registered codec ids in registration order, excluding
// Store.
func (r *Registry) IDs() []CodecID {
	ids := make([]CodecID, 0, len(r.order))
	for _, id := range r.order {
		if id != CodecStore {
			ids = append(ids, id)
		}
	}
	return ids
}

// Compatible reports whether the registered implementation for id is
// flagged as format-compatible (affects the planner's scoring penalty for
// Zstandard/Brotli, spec §4.4).
func (r *Registry) Compatible(id CodecID) bool {
	return r.compat[id]
}

// decode dispatches a chunk payload to its codec, following the recovery
// rule in spec §4.5/§7: an unknown codec or a codec that fails to decode
// yields expectedLen zero bytes rather than aborting the whole archive.
func (r *Registry) decode(id CodecID, payload []byte, expectedLen int) ([]byte, error) {
	c, ok := r.Get(id)
	if !ok {
		return make([]byte, expectedLen), fmt.Errorf("%w: id %d", ErrUnknownCodec, id)
	}
	out, err := c.Decompress(payload, expectedLen)
	if err != nil {
		return make([]byte, expectedLen), fmt.Errorf("codec %d decompress: %w", id, err)
	}
	if len(out) != expectedLen {
		if len(out) > expectedLen {
			out = out[:expectedLen]
		} else {
			padded := make([]byte, expectedLen)
			copy(padded, out)
			out = padded
		}
	}
	return out, nil
}
