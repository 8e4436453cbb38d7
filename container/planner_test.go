package container

import "testing"

func TestPlanChunksCoversWholeInput(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	data := append(rampBytes(3000), randomBytes(5000, 7)...)

	plans := PlanChunks(reg, data, 0)
	if len(plans) == 0 {
		t.Fatal("expected at least one plan")
	}

	pos := 0
	for i, p := range plans {
		if p.Offset != pos {
			t.Fatalf("plan %d: offset %d, want %d", i, p.Offset, pos)
		}
		if p.Size <= 0 {
			t.Fatalf("plan %d: non-positive size %d", i, p.Size)
		}
		if p.Size > MaxChunkSize {
			t.Fatalf("plan %d: size %d exceeds MaxChunkSize", i, p.Size)
		}
		pos += p.Size
	}
	if pos != len(data) {
		t.Fatalf("plans cover %d bytes, want %d", pos, len(data))
	}
}

func TestPlanChunksEmptyInput(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	plans := PlanChunks(reg, nil, 0)
	if len(plans) != 0 {
		t.Fatalf("expected no plans for empty input, got %d", len(plans))
	}
}

func TestPlanChunksHighEntropyUsesStore(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	data := randomBytes(4096, 99)
	plans := PlanChunks(reg, data, 0)

	for _, p := range plans {
		if p.Codec != CodecStore {
			t.Errorf("high-entropy chunk got codec %d, want Store (255)", p.Codec)
		}
	}
}

func TestPlanChunksRepeatedByteUsesCompression(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	data := make([]byte, 4096)
	for i := range data {
		data[i] = 'A'
	}
	plans := PlanChunks(reg, data, 0)

	foundCompressed := false
	for _, p := range plans {
		if p.Codec != CodecStore {
			foundCompressed = true
		}
	}
	if !foundCompressed {
		t.Error("expected at least one non-Store codec choice for a highly repetitive buffer")
	}
}

func TestScoreCodecsIncompressibleShortCircuit(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	ranked := scoreCodecs(reg, Profile{Entropy: 7.9})
	if len(ranked) != 1 || ranked[0].id != CodecStore {
		t.Fatalf("entropy > 7.8 should short-circuit to [Store], got %+v", ranked)
	}
}

func TestKValueMonotone(t *testing.T) {
	t.Parallel()

	if kValue(1024) != 0 {
		t.Errorf("kValue(1024) = %d, want 0", kValue(1024))
	}
	if kValue(2048) <= kValue(1024) {
		t.Errorf("kValue should increase with size: kValue(2048)=%d, kValue(1024)=%d", kValue(2048), kValue(1024))
	}
}
