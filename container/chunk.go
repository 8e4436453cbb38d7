package container

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// frameOverhead returns the fixed per-chunk framing cost used by the
// "does compression pay" check in spec §4.5: marker + codec_id + k_value +
// used_bytes_in_chunk + original_length + compressed_length.
func frameOverhead(markerLen int) int {
	return markerLen + 1 + 1 + 2 + 4 + 4
}

// kValue computes the informational log2 bucket for a chunk size, where the
// intended chunk size is 2^(10+k) (spec §3). Decode never depends on this
// field; it exists only on the wire.
func kValue(size int) uint8 {
	if size <= 1024 {
		return 0
	}
	k := bits.Len(uint(size-1)) - 10
	if k < 0 {
		k = 0
	}
	if k > 255 {
		k = 255
	}
	return uint8(k)
}

// EncodedChunk is one framed chunk ready to be concatenated into an archive,
// plus the bookkeeping the statistics accumulator needs.
type EncodedChunk struct {
	Frame       []byte
	CodecUsed   CodecID
	Compressed  bool
	BytesSaved  int64
	InputLength int
}

// EncodeChunk performs the "store raw if compression does not pay" decision
// from spec §4.5 and serializes the resulting frame.
func EncodeChunk(reg *Registry, marker Marker, slice []byte, chosenID CodecID) EncodedChunk {
	overhead := frameOverhead(len(marker.AlignedBytes))

	payload := slice
	codecUsed := CodecID(CodecStore)
	compressed := false
	var savedBytes int64

	if chosenID != CodecStore {
		if codec, ok := reg.Get(chosenID); ok {
			if out, err := codec.Compress(slice); err == nil {
				if len(out)+overhead < len(slice) {
					payload = out
					codecUsed = chosenID
					compressed = true
					savedBytes = int64(len(slice)) - int64(len(payload)+overhead)
				}
			}
		}
	}

	used := len(slice)
	if used > 65535 {
		used = 65535
	}

	frame := make([]byte, 0, frameOverhead(len(marker.AlignedBytes))+len(payload))
	frame = append(frame, marker.AlignedBytes...)
	frame = append(frame, byte(codecUsed))
	frame = append(frame, kValue(len(slice)))

	var u16buf [2]byte
	binary.LittleEndian.PutUint16(u16buf[:], uint16(used)) //nolint:gosec // capped above
	frame = append(frame, u16buf[:]...)

	var u32buf [4]byte
	binary.LittleEndian.PutUint32(u32buf[:], uint32(len(slice))) //nolint:gosec // bounded by MaxChunkSize
	frame = append(frame, u32buf[:]...)
	binary.LittleEndian.PutUint32(u32buf[:], uint32(len(payload))) //nolint:gosec // bounded by MaxChunkPayload
	frame = append(frame, u32buf[:]...)

	frame = append(frame, payload...)

	return EncodedChunk{
		Frame:       frame,
		CodecUsed:   codecUsed,
		Compressed:  compressed,
		BytesSaved:  savedBytes,
		InputLength: len(slice),
	}
}

// EncodeTerminator builds the end-of-stream sentinel frame: marker +
// codec_id=0 + every length field zero (spec §4.7).
func EncodeTerminator(marker Marker) []byte {
	frame := make([]byte, 0, frameOverhead(len(marker.AlignedBytes)))
	frame = append(frame, marker.AlignedBytes...)
	frame = append(frame, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	return frame
}

// DecodedChunk is the result of reading one chunk frame from an archive.
type DecodedChunk struct {
	Output    []byte
	CodecID   CodecID
	Consumed  int
	IsEnd     bool
	UnknownID bool // set when the codec id was not registered; recoverable per spec §7
}

// DecodeChunk reads one framed chunk starting at the head of data, dispatches
// its payload through the registry, and reports how many bytes it consumed
// (spec §4.5).
func DecodeChunk(reg *Registry, data []byte, marker Marker) (DecodedChunk, error) {
	markerLen := len(marker.AlignedBytes)
	headerLen := frameOverhead(markerLen)
	if len(data) < headerLen {
		return DecodedChunk{}, fmt.Errorf("%w: need %d header bytes, have %d", ErrTruncatedPayload, headerLen, len(data))
	}

	for i := 0; i < markerLen; i++ {
		if data[i] != marker.AlignedBytes[i] {
			return DecodedChunk{}, ErrMarkerMismatch
		}
	}

	off := markerLen
	codecID := CodecID(data[off])
	off++
	off++ // k_value: informational, intentionally unread (spec §9 note 2)

	usedBytes := binary.LittleEndian.Uint16(data[off : off+2])
	_ = usedBytes // duplicate of original_length, capped at 65535; not authoritative
	off += 2

	originalLength := binary.LittleEndian.Uint32(data[off : off+4])
	off += 4
	compressedLength := binary.LittleEndian.Uint32(data[off : off+4])
	off += 4

	if codecID == CodecEnd {
		return DecodedChunk{IsEnd: true, Consumed: off}, nil
	}

	if compressedLength > MaxChunkPayload {
		return DecodedChunk{}, fmt.Errorf("%w: declared payload %d exceeds limit", ErrTruncatedPayload, compressedLength)
	}
	if uint64(off)+uint64(compressedLength) > uint64(len(data)) {
		return DecodedChunk{}, fmt.Errorf("%w: declared %d payload bytes, have %d", ErrTruncatedPayload, compressedLength, len(data)-off)
	}

	payload := data[off : off+int(compressedLength)]
	consumed := off + int(compressedLength)

	out, err := reg.decode(codecID, payload, int(originalLength))
	unknown := false
	if err != nil {
		unknown = !reg.Has(codecID)
	}

	return DecodedChunk{
		Output:    out,
		CodecID:   codecID,
		Consumed:  consumed,
		UnknownID: unknown,
	}, nil
}
