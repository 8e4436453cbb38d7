package container

import "sync"

// Stats are the running counters owned by the engine façade for the
// duration of one compress call (spec §4.8).
type Stats struct {
	TotalChunks      uint64
	CompressedChunks uint64
	RawChunks        uint64
	MethodUsage      map[CodecID]uint64
	BytesSaved       int64

	OriginalSize                  uint64
	CompressedSizeWithoutOverhead uint64
	OverheadBytes                 uint64
	HeaderSize                    uint32

	// Warning is not set anywhere in this module. Decode-time recoveries
	// (unknown codec id, size mismatch) are reported by ambc.Decompress
	// through Options.Warn and DecompressResult.RecoveredWarnings instead.
	Warning string
}

// accumulator is the single piece of shared mutable state the parallel
// dispatcher touches from multiple workers, guarded by mu (spec §5).
type accumulator struct {
	mu    sync.Mutex
	stats Stats
}

func newAccumulator() *accumulator {
	return &accumulator{stats: Stats{MethodUsage: make(map[CodecID]uint64)}}
}

// recordChunk folds one encoded chunk's outcome into the running totals.
func (a *accumulator) recordChunk(chunk EncodedChunk, markerLen int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.TotalChunks++
	overhead := uint64(frameOverhead(markerLen)) //nolint:gosec // small constant
	a.stats.OverheadBytes += overhead

	if chunk.Compressed {
		a.stats.CompressedChunks++
		a.stats.MethodUsage[chunk.CodecUsed]++
		a.stats.BytesSaved += chunk.BytesSaved
		a.stats.CompressedSizeWithoutOverhead += uint64(len(chunk.Frame)) - overhead
	} else {
		a.stats.RawChunks++
		a.stats.MethodUsage[CodecStore]++
		a.stats.CompressedSizeWithoutOverhead += uint64(len(chunk.Frame)) - overhead
	}
}

// snapshot returns a copy of the accumulated stats, safe to hand to a caller
// after all workers have finished.
func (a *accumulator) snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	usage := make(map[CodecID]uint64, len(a.stats.MethodUsage))
	for id, n := range a.stats.MethodUsage {
		usage[id] = n
	}
	out := a.stats
	out.MethodUsage = usage
	return out
}
