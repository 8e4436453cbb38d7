package container

import "sort"

// DefaultInitialChunkSize is the planner's starting chunk size B (spec §4.4).
const DefaultInitialChunkSize = 4096

// MaxChunkSize is the hard cap on a single chunk's input length, chosen
// large enough to need u16's used_bytes_in_chunk to saturate rather than
// overflow (spec §9 open question: caps at 65536 inclusive).
const MaxChunkSize = 65536

// entropyIncompressibleThreshold short-circuits scoring straight to Store
// when the slice looks like noise (spec §4.4).
const entropyIncompressibleThreshold = 7.8

// Plan is one planned chunk: a byte range of the input and the codec chosen
// to encode it.
type Plan struct {
	Offset int
	Size   int
	Codec  CodecID
}

// candidateScore pairs a codec id with its predicted score for one profile,
// used only to rank candidates before any trial compression is attempted.
type candidateScore struct {
	id    CodecID
	score float64
}

// scoreCodecs implements the table in spec §4.4: a per-codec score from the
// profile, a registration-presence filter, and the +2/-3 bonus/penalty
// adjustments, sorted best-first. Returns [Store] unconditionally when the
// entropy short-circuit fires.
func scoreCodecs(reg *Registry, p Profile) []candidateScore {
	if p.Entropy > entropyIncompressibleThreshold {
		return []candidateScore{{id: CodecStore, score: 0}}
	}

	raw := map[CodecID]float64{
		CodecRLE:        10*p.Repetition - p.Entropy,
		CodecDictionary: 8*p.Text + 4*p.Repetition - 0.8*p.Entropy,
		CodecHuffman:    10 - 1.2*p.Entropy,
		CodecDelta:      10*p.SmallDelta - 0.7*p.Entropy,
		CodecDeflate:    7 - 0.8*p.Entropy + 3*p.Text,
		CodecBZip2:      7.5*p.Text - 0.6*p.Entropy,
		CodecLZMA:       6 - 0.6*p.Entropy + 2*p.Repetition,
		CodecZstd:       6 - 0.7*p.Entropy + 2*p.Text + 2*p.Repetition,
		CodecLZ4:        5 - 0.6*p.Entropy + 1.5*p.Repetition,
		CodecBrotli:     7*p.Text - 0.5*p.Entropy,
		CodecLZHAM:      5 - 0.6*p.Entropy + 3*(1-p.Text),
	}

	bonusIDs := map[CodecID]bool{CodecRLE: true, CodecDictionary: true, CodecHuffman: true, CodecDelta: true, CodecBZip2: true}

	scores := make([]candidateScore, 0, len(raw))
	for _, id := range reg.IDs() {
		score, ok := raw[id]
		if !ok {
			continue
		}
		if bonusIDs[id] {
			score += 2
		}
		if (id == CodecZstd || id == CodecBrotli) && !reg.Compatible(id) {
			score -= 3
		}
		scores = append(scores, candidateScore{id: id, score: score})
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	return scores
}

// PlanChunks runs the sequential planning pass over the whole input,
// producing an ordered list of (offset, size, codec) jobs (spec §4.4, §4.6).
// initialSize is B; a value <= 0 selects DefaultInitialChunkSize.
func PlanChunks(reg *Registry, input []byte, initialSize int) []Plan {
	if initialSize <= 0 {
		initialSize = DefaultInitialChunkSize
	}

	var plans []Plan
	pos := 0
	for pos < len(input) {
		remaining := len(input) - pos
		maxSize := MaxChunkSize
		if remaining < maxSize {
			maxSize = remaining
		}
		plan := planOneChunk(reg, input, pos, initialSize, maxSize)
		plans = append(plans, plan)
		pos += plan.Size
	}
	return plans
}

// planOneChunk implements spec §4.4's two-branch algorithm for a single
// position: take-the-remainder when it's already small, or score-then-
// extend when there's room to grow the chunk.
func planOneChunk(reg *Registry, input []byte, pos, initialSize, maxSize int) Plan {
	if maxSize <= initialSize {
		slice := input[pos : pos+maxSize]
		profile := ProfileBytes(slice)
		ranked := scoreCodecs(reg, profile)
		top := ranked
		if len(top) > 2 {
			top = top[:2]
		}
		best := bestByTrial(reg, slice, top, 1.0)
		return Plan{Offset: pos, Size: maxSize, Codec: best}
	}

	slice := input[pos : pos+initialSize]
	profile := ProfileBytes(slice)
	ranked := scoreCodecs(reg, profile)
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}

	bestRatio := 1.0
	bestCodec := CodecID(CodecStore)
	for _, cand := range top {
		ratio, ok := trialRatio(reg, cand.id, slice)
		if !ok {
			continue
		}
		if ratio < bestRatio {
			bestRatio = ratio
			bestCodec = cand.id
		}
	}

	if bestRatio >= 0.95 {
		return Plan{Offset: pos, Size: initialSize, Codec: CodecStore}
	}

	bestSize := initialSize
	step := initialSize / 4
	if step < 1024 {
		step = 1024
	}
	for size := initialSize + step; size <= maxSize; size += step {
		cSlice := input[pos : pos+size]
		codec, ok := reg.Get(bestCodec)
		if !ok || !codec.ShouldUse(cSlice) {
			break
		}
		ratio, ok := trialRatio(reg, bestCodec, cSlice)
		if !ok {
			break
		}
		if ratio > bestRatio*1.03 {
			break
		}
		bestSize = size
		bestRatio = ratio
	}

	return Plan{Offset: pos, Size: bestSize, Codec: bestCodec}
}

// bestByTrial scores the given candidates by trial compression ratio,
// keeping the lowest one that also passes should_use, falling back to
// Store if nothing beats a 1.0 ratio (spec §4.4 step 1).
func bestByTrial(reg *Registry, slice []byte, candidates []candidateScore, worstAcceptable float64) CodecID {
	best := CodecID(CodecStore)
	bestRatio := worstAcceptable
	for _, cand := range candidates {
		ratio, ok := trialRatio(reg, cand.id, slice)
		if !ok {
			continue
		}
		if ratio < bestRatio {
			bestRatio = ratio
			best = cand.id
		}
	}
	return best
}

// trialRatio runs a candidate codec's should_use gate and, if it passes, a
// real trial compression, returning compressed-size/original-size.
func trialRatio(reg *Registry, id CodecID, slice []byte) (float64, bool) {
	codec, ok := reg.Get(id)
	if !ok || !codec.ShouldUse(slice) {
		return 0, false
	}
	compressed, err := codec.Compress(slice)
	if err != nil {
		return 0, false
	}
	return float64(len(compressed)) / float64(len(slice)), true
}
