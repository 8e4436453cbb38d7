// Package ambc implements an adaptive container compressor: it splits an
// input byte stream into variable-length chunks, compresses each with
// whichever registered codec yields the smallest encoding, and writes a
// self-describing archive that can be reconstructed and integrity-checked
// byte for byte.
package ambc

import (
	"bytes"
	"crypto/md5" //nolint:gosec // archive integrity check, not a security boundary; format-mandated
	"fmt"
	"time"

	"github.com/archivelab/ambc/container"
)

// Options configures one Compress call.
type Options struct {
	// ChunkSize is the planner's initial chunk size B (spec'd default
	// 4096). Zero selects container.DefaultInitialChunkSize.
	ChunkSize int

	// Workers is the encode worker-pool size. Zero selects
	// container.DefaultWorkerCount(); 1 forces sequential encoding.
	Workers int

	// MarkerSampleSize bounds how much of the input the marker finder
	// samples for large inputs. Zero selects container.DefaultMarkerSampleSize.
	MarkerSampleSize int

	// Warn, if set, is called with a human-readable message for each
	// recoverable condition Decompress hits (unknown codec id, decoded
	// length mismatch). Nil disables warning output entirely.
	Warn func(string)
}

// DecompressResult carries the decoded bytes plus the small statistics
// record spec §4.9 returns from decompress.
type DecompressResult struct {
	Data              []byte
	CompressedSize    int
	DecompressedSize  int
	ElapsedTime       time.Duration
	RecoveredWarnings int
}

// Compress builds a complete .ambc archive from input (spec §4.9's
// compress procedure).
func Compress(input []byte, opts Options) ([]byte, container.Stats, error) {
	reg := container.NewRegistry()

	digest := md5.Sum(input) //nolint:gosec // same reasoning as the import
	marker := container.FindMarker(input, opts.MarkerSampleSize)

	header := container.Header{
		Marker:       marker,
		ChecksumType: container.ChecksumMD5,
		Digest:       digest,
		OriginalSize: uint64(len(input)),
	}
	headerBytes := container.EncodeHeader(header)
	headerSize := uint32(len(headerBytes)) //nolint:gosec // header size is under a few hundred bytes

	plans := container.PlanChunks(reg, input, opts.ChunkSize)

	workers := opts.Workers
	if workers <= 0 {
		workers = container.DefaultWorkerCount()
	}
	chunks, stats := container.DispatchEncode(reg, marker, input, plans, workers)

	terminator := container.EncodeTerminator(marker)

	var body bytes.Buffer
	body.Write(headerBytes)
	for _, c := range chunks {
		body.Write(c.Frame)
	}
	body.Write(terminator)

	archive := body.Bytes()
	compressedStreamSize := uint64(len(archive)) - uint64(headerSize)
	container.PatchCompressedSize(archive, headerSize, compressedStreamSize)

	stats.OriginalSize = uint64(len(input))
	stats.HeaderSize = headerSize
	// The terminator frame is this façade's responsibility, not a planned
	// chunk, so its bytes are folded into overhead here to keep
	// compressed_size_without_overhead + overhead_bytes + header_size ==
	// len(archive).
	stats.OverheadBytes += uint64(len(terminator))

	return archive, stats, nil
}

// Decompress reconstructs the original bytes from an .ambc archive and
// verifies its MD5 digest (spec §4.9's decompress procedure). opts.Warn, if
// set, receives one message per chunk with an unknown codec id and one for a
// decoded-length mismatch. A chunk whose registered codec fails to decode is
// zero-filled without a message and is not counted in RecoveredWarnings.
func Decompress(archive []byte, opts Options) (DecompressResult, error) {
	start := time.Now()

	header, err := container.ParseHeader(archive)
	if err != nil {
		return DecompressResult{}, err
	}

	reg := container.NewRegistry()

	warn := func(string) {}
	if opts.Warn != nil {
		warn = opts.Warn
	}

	var out bytes.Buffer
	pos := int(header.HeaderSize)
	warnings := 0

	for {
		if pos > len(archive) {
			return DecompressResult{}, fmt.Errorf("%w: chunk offset beyond archive end", container.ErrTruncatedPayload)
		}
		decoded, err := container.DecodeChunk(reg, archive[pos:], header.Marker)
		if err != nil {
			return DecompressResult{}, err
		}
		if decoded.IsEnd {
			pos += decoded.Consumed
			break
		}
		if decoded.UnknownID {
			warnings++
			warn(fmt.Sprintf("chunk at offset %d: unknown codec id %d, zero-filled", pos, decoded.CodecID))
		}
		out.Write(decoded.Output)
		pos += decoded.Consumed
	}

	data := out.Bytes()
	if uint64(len(data)) != header.OriginalSize {
		warnings++
		warn(fmt.Sprintf("decoded length %d does not match header original_size %d, resizing", len(data), header.OriginalSize))
		data = resizeExact(data, header.OriginalSize)
	}

	sum := md5.Sum(data) //nolint:gosec // see Compress
	if !bytes.Equal(sum[:], header.Digest[:]) {
		return DecompressResult{}, container.ErrChecksumMismatch
	}

	return DecompressResult{
		Data:              data,
		CompressedSize:    len(archive),
		DecompressedSize:  len(data),
		ElapsedTime:       time.Since(start),
		RecoveredWarnings: warnings,
	}, nil
}

// resizeExact pads with zeros or truncates data to exactly n bytes, per the
// SizeMismatch recovery rule in spec §7.
func resizeExact(data []byte, n uint64) []byte {
	if uint64(len(data)) == n {
		return data
	}
	if uint64(len(data)) > n {
		return data[:n]
	}
	padded := make([]byte, n)
	copy(padded, data)
	return padded
}
