package container

import "runtime"

// DefaultWorkerCount returns the worker-pool size spec §4.6 defaults to:
// hardware thread count minus one, floored at one.
func DefaultWorkerCount() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		return 1
	}
	return n
}

// DispatchEncode runs EncodeChunk over every planned chunk, either
// sequentially (workers <= 1) or across a fixed-size worker pool, and
// returns the encoded chunks in plan order regardless of completion order
// (spec §4.6). A worker that panics-free-fails (Compress returning an
// error) already falls back to Store inside EncodeChunk, so there is no
// separate recovery path here.
func DispatchEncode(reg *Registry, marker Marker, input []byte, plans []Plan, workers int) ([]EncodedChunk, Stats) {
	out := make([]EncodedChunk, len(plans))
	acc := newAccumulator()

	encodeOne := func(i int) {
		p := plans[i]
		chunk := EncodeChunk(reg, marker, input[p.Offset:p.Offset+p.Size], p.Codec)
		out[i] = chunk
		acc.recordChunk(chunk, len(marker.AlignedBytes))
	}

	if workers <= 1 || len(plans) <= 1 {
		for i := range plans {
			encodeOne(i)
		}
		return out, acc.snapshot()
	}

	jobs := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				encodeOne(i)
			}
			done <- struct{}{}
		}()
	}

	go func() {
		for i := range plans {
			jobs <- i
		}
		close(jobs)
	}()

	for w := 0; w < workers; w++ {
		<-done
	}

	return out, acc.snapshot()
}
