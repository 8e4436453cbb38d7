package container

import (
	"bytes"
	"encoding/binary"
	"fmt"

	ambcbinary "github.com/archivelab/ambc/internal/binary"
)

// Magic is the four-byte signature every archive starts with (spec §6).
var Magic = [4]byte{'A', 'M', 'B', 'C'}

// FormatVersion is the only version this package writes and the highest
// version it accepts on decode.
const FormatVersion = 2

// ChecksumMD5 is the only checksum type this format declares (spec §6).
const ChecksumMD5 = 1

// Header is the parsed file-level header (spec §6).
type Header struct {
	Version      uint8
	HeaderSize   uint32
	Marker       Marker
	ChecksumType uint8
	Digest       [16]byte
	OriginalSize uint64

	// CompressedSize is the chunk-stream byte count, patched in after the
	// chunk stream is fully emitted (spec §4.7).
	CompressedSize uint64
}

// EncodeHeader serializes h with CompressedSize written as whatever value h
// currently holds; callers that don't yet know the final chunk-stream
// length should pass 0 and patch it in later with PatchCompressedSize.
func EncodeHeader(h Header) []byte {
	markerBytes := h.Marker.AlignedBytes
	size := 10 + len(markerBytes) + 1 + 16 + 8 + 8

	buf := make([]byte, size)
	copy(buf[0:4], Magic[:])
	buf[4] = FormatVersion
	binary.LittleEndian.PutUint32(buf[5:9], uint32(size)) //nolint:gosec // header size is small and bounded
	buf[9] = uint8(h.Marker.BitLength)                     //nolint:gosec // bit length <= 32
	copy(buf[10:10+len(markerBytes)], markerBytes)

	off := 10 + len(markerBytes)
	buf[off] = ChecksumMD5
	off++
	copy(buf[off:off+16], h.Digest[:])
	off += 16
	binary.LittleEndian.PutUint64(buf[off:off+8], h.OriginalSize)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:off+8], h.CompressedSize)

	return buf
}

// PatchCompressedSize overwrites the compressed-size field of an already
// serialized header in place, per spec §4.7's "write zero, patch later"
// sequencing.
func PatchCompressedSize(archive []byte, headerSize uint32, compressedSize uint64) {
	off := headerSize - 8
	binary.LittleEndian.PutUint64(archive[off:off+8], compressedSize)
}

// ParseHeader parses the file header at the start of data. The number of
// bytes the header occupies is reported in the returned HeaderSize field.
func ParseHeader(data []byte) (Header, error) {
	r := bytes.NewReader(data)

	if len(data) < 10 {
		return Header{}, fmt.Errorf("%w: %d bytes available", ErrTruncatedHeader, len(data))
	}

	magic, err := ambcbinary.ReadBytesAt(r, 0, 4)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return Header{}, ErrInvalidMagic
	}

	version, err := ambcbinary.ReadUint8At(r, 4)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}
	if version > FormatVersion {
		return Header{}, fmt.Errorf("%w: got %d, max %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize, err := ambcbinary.ReadUint32LEAt(r, 5)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}

	bitLength, err := ambcbinary.ReadUint8At(r, 9)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}
	if bitLength < 1 || bitLength > 32 {
		return Header{}, fmt.Errorf("%w: marker bit length %d out of range", ErrInvalidHeader, bitLength)
	}
	markerByteLen := (int(bitLength) + 7) / 8
	if markerByteLen > MaxHeaderMarkerBytes {
		return Header{}, fmt.Errorf("%w: marker too long", ErrInvalidHeader)
	}

	if uint64(headerSize) > uint64(len(data)) {
		return Header{}, fmt.Errorf("%w: declared %d, have %d", ErrTruncatedHeader, headerSize, len(data))
	}

	markerBytes, err := ambcbinary.ReadBytesAt(r, 10, markerByteLen)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}

	off := int64(10 + markerByteLen)
	checksumType, err := ambcbinary.ReadUint8At(r, off)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}
	if checksumType != ChecksumMD5 {
		return Header{}, fmt.Errorf("%w: unknown checksum type %d", ErrInvalidHeader, checksumType)
	}
	off++

	digestBytes, err := ambcbinary.ReadBytesAt(r, off, 16)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}
	off += 16

	originalSize, err := readUint64LEAt(r, off)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}
	off += 8

	compressedSize, err := readUint64LEAt(r, off)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}

	h := Header{
		Version:    version,
		HeaderSize: headerSize,
		Marker: Marker{
			BitLength:    int(bitLength),
			AlignedBytes: markerBytes,
		},
		ChecksumType:   checksumType,
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
	}
	copy(h.Digest[:], digestBytes)
	return h, nil
}

// readUint64LEAt fills the gap in internal/binary, which stops at 32-bit
// reads; the file header needs 64-bit size fields.
func readUint64LEAt(r *bytes.Reader, offset int64) (uint64, error) {
	buf, err := ambcbinary.ReadBytesAt(r, offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}
