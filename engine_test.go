package ambc

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1)) //nolint:gosec // test fixture
	randomTail := make([]byte, 1000)
	r.Read(randomTail)

	inputs := map[string][]byte{
		"empty":    {},
		"one_byte": {0x7A},
		"repeated": bytes.Repeat([]byte{'A'}, 4096),
		"mixed": bytes.Join([][]byte{
			bytes.Repeat([]byte{'A'}, 1000),
			[]byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)),
			randomTail,
		}, nil),
		"exactly_65536": rampRepeat(65536),
	}

	for name, input := range inputs {
		name, input := name, input
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			archive, stats, err := Compress(input, Options{})
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}

			result, err := Decompress(archive, Options{})
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(result.Data, input) {
				t.Fatalf("round-trip mismatch: got %d bytes, want %d", len(result.Data), len(input))
			}

			if stats.TotalChunks == 0 && len(input) > 0 {
				t.Error("expected at least one chunk for non-empty input")
			}
			if sum := stats.CompressedChunks + stats.RawChunks; sum != stats.TotalChunks {
				t.Errorf("compressed(%d) + raw(%d) = %d, want TotalChunks %d",
					stats.CompressedChunks, stats.RawChunks, sum, stats.TotalChunks)
			}
			if got := stats.CompressedSizeWithoutOverhead + stats.OverheadBytes + uint64(stats.HeaderSize); got != uint64(len(archive)) {
				t.Errorf("compressed_size_without_overhead(%d) + overhead_bytes(%d) + header_size(%d) = %d, want archive size %d",
					stats.CompressedSizeWithoutOverhead, stats.OverheadBytes, stats.HeaderSize, got, len(archive))
			}
		})
	}
}

func TestCompressEmptyInputIsHeaderPlusTerminator(t *testing.T) {
	t.Parallel()

	archive, stats, err := Compress(nil, Options{})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if stats.TotalChunks != 0 {
		t.Errorf("empty input should plan zero chunks, got %d", stats.TotalChunks)
	}

	result, err := Decompress(archive, Options{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(result.Data) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(result.Data))
	}
}

func TestDecompressRejectsCorruption(t *testing.T) {
	t.Parallel()

	input := []byte(strings.Repeat("hello world ", 200))
	archive, _, err := Compress(input, Options{})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	corrupted := append([]byte(nil), archive...)
	corrupted[len(corrupted)-10] ^= 0xFF

	if _, err := Decompress(corrupted, Options{}); err == nil {
		t.Fatal("expected decompress to reject a corrupted archive")
	}
}

func TestDecompressRejectsTruncation(t *testing.T) {
	t.Parallel()

	input := []byte(strings.Repeat("hello world ", 200))
	archive, _, err := Compress(input, Options{})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	truncated := archive[:len(archive)-4]
	if _, err := Decompress(truncated, Options{}); err == nil {
		t.Fatal("expected decompress to reject a truncated archive")
	}
}

func TestHighEntropyInputMostlyStored(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(2)) //nolint:gosec // test fixture
	input := make([]byte, 4096)
	r.Read(input)

	archive, stats, err := Compress(input, Options{})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(archive) < len(input) {
		t.Errorf("archive (%d) should not be smaller than incompressible input (%d)", len(archive), len(input))
	}
	if stats.MethodUsage[255] == 0 {
		t.Error("expected Store to dominate method usage for random input")
	}

	result, err := Decompress(archive, Options{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(result.Data, input) {
		t.Fatal("round-trip mismatch on high-entropy input")
	}
}

func TestParallelEquivalence(t *testing.T) {
	t.Parallel()

	input := []byte(strings.Repeat("parallel equivalence payload ", 3000))

	seqArchive, _, err := Compress(input, Options{Workers: 1})
	if err != nil {
		t.Fatalf("Compress (sequential): %v", err)
	}
	parArchive, _, err := Compress(input, Options{Workers: 6})
	if err != nil {
		t.Fatalf("Compress (parallel): %v", err)
	}

	seqResult, err := Decompress(seqArchive, Options{})
	if err != nil {
		t.Fatalf("Decompress (sequential): %v", err)
	}
	parResult, err := Decompress(parArchive, Options{})
	if err != nil {
		t.Fatalf("Decompress (parallel): %v", err)
	}
	if !bytes.Equal(seqResult.Data, parResult.Data) {
		t.Fatal("sequential and parallel encodes decoded to different bytes")
	}
	if !bytes.Equal(seqResult.Data, input) {
		t.Fatal("decoded bytes do not match original input")
	}
}

func rampRepeat(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 256)
	}
	return out
}
