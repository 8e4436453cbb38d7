package container

import "testing"

func TestDispatchEncodeOrderingSequentialVsParallel(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	marker := buildMarker(5, 9)
	data := append(append(rampBytes(2000), bytes0('A', 2000)...), randomBytes(2000, 5)...)
	plans := PlanChunks(reg, data, 0)

	seqChunks, seqStats := DispatchEncode(reg, marker, data, plans, 1)
	parChunks, parStats := DispatchEncode(reg, marker, data, plans, 4)

	if len(seqChunks) != len(parChunks) {
		t.Fatalf("got %d sequential chunks, %d parallel chunks", len(seqChunks), len(parChunks))
	}
	for i := range seqChunks {
		if string(seqChunks[i].Frame) != string(parChunks[i].Frame) {
			t.Fatalf("frame %d differs between sequential and parallel dispatch", i)
		}
	}
	if seqStats.TotalChunks != parStats.TotalChunks {
		t.Errorf("TotalChunks differ: %d vs %d", seqStats.TotalChunks, parStats.TotalChunks)
	}
}

func bytes0(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
