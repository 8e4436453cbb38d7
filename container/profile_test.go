package container

import (
	"bytes"
	"testing"
)

func TestProfileBytesEmptyInput(t *testing.T) {
	t.Parallel()

	p := ProfileBytes(nil)
	want := Profile{}
	if p != want {
		t.Errorf("ProfileBytes(nil) = %+v, want %+v", p, want)
	}
}

func TestProfileBytesAllSame(t *testing.T) {
	t.Parallel()

	p := ProfileBytes(bytes.Repeat([]byte{'A'}, 2000))
	if p.Entropy != 0 {
		t.Errorf("constant input entropy = %v, want 0", p.Entropy)
	}
	if p.Repetition != 1 {
		t.Errorf("constant input repetition = %v, want 1", p.Repetition)
	}
	if p.SmallDelta != 1 {
		t.Errorf("constant input small-delta = %v, want 1", p.SmallDelta)
	}
}

func TestProfileBytesTextRatio(t *testing.T) {
	t.Parallel()

	p := ProfileBytes([]byte("hello world, this is plain text"))
	if p.Text != 1 {
		t.Errorf("all-printable text score = %v, want 1", p.Text)
	}
}

func TestStrideSampleBounds(t *testing.T) {
	t.Parallel()

	data := rampBytes(5000)
	sample := strideSample(data, 1000)
	if len(sample) > 1000 {
		t.Errorf("strideSample returned %d bytes, want <= 1000", len(sample))
	}
	if len(sample) == 0 {
		t.Error("strideSample returned no bytes for non-empty input")
	}
}
