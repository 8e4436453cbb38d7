package container

import (
	"bytes"
	"container/heap"
	"fmt"
	"sort"

	"github.com/icza/bitio"
)

// huffmanCodec implements canonical Huffman coding over the 256-symbol byte
// alphabet with an embedded code-length table (spec §4.1, id 3). Bit-level
// I/O is delegated to icza/bitio rather than a hand-rolled bit cursor.
type huffmanCodec struct{}

func newHuffmanCodec() *huffmanCodec { return &huffmanCodec{} }

func (*huffmanCodec) ID() CodecID { return CodecHuffman }

func (*huffmanCodec) ShouldUse(data []byte) bool {
	return len(data) >= 32
}

// huffmanNode is one node of the Huffman tree being built.
type huffmanNode struct {
	freq        int
	symbol      int // -1 for internal nodes
	left, right *huffmanNode
}

type nodeHeap []*huffmanNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].symbol < h[j].symbol
}
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(*huffmanNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// codeLengths returns the Huffman code length assigned to each byte value
// present in data (0 for bytes that never occur).
func codeLengths(data []byte) [256]uint8 {
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	var lengths [256]uint8

	present := 0
	for _, f := range freq {
		if f > 0 {
			present++
		}
	}
	if present == 0 {
		return lengths
	}
	if present == 1 {
		for sym, f := range freq {
			if f > 0 {
				lengths[sym] = 1
			}
		}
		return lengths
	}

	h := make(nodeHeap, 0, present)
	for sym, f := range freq {
		if f > 0 {
			h = append(h, &huffmanNode{freq: f, symbol: sym})
		}
	}
	heap.Init(&h)

	for h.Len() > 1 {
		a := heap.Pop(&h).(*huffmanNode)
		b := heap.Pop(&h).(*huffmanNode)
		heap.Push(&h, &huffmanNode{freq: a.freq + b.freq, symbol: -1, left: a, right: b})
	}
	root := heap.Pop(&h).(*huffmanNode)

	var walk func(n *huffmanNode, depth int)
	walk = func(n *huffmanNode, depth int) {
		if n == nil {
			return
		}
		if n.symbol >= 0 {
			d := depth
			if d == 0 {
				d = 1
			}
			lengths[n.symbol] = uint8(d) //nolint:gosec // tree depth bounded by 256 symbols
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(root, 0)

	return lengths
}

// canonicalCodes assigns canonical Huffman codes from a code-length table:
// symbols are ordered by (length, symbol), and codes increase by one within
// a length, shifting left whenever length increases.
func canonicalCodes(lengths [256]uint8) (codes [256]uint32) {
	type entry struct {
		symbol int
		length uint8
	}
	var entries []entry
	for sym, l := range lengths {
		if l > 0 {
			entries = append(entries, entry{sym, l})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].length != entries[j].length {
			return entries[i].length < entries[j].length
		}
		return entries[i].symbol < entries[j].symbol
	})

	var code uint32
	var prevLen uint8
	for _, e := range entries {
		code <<= e.length - prevLen
		codes[e.symbol] = code
		code++
		prevLen = e.length
	}
	return codes
}

func (*huffmanCodec) Compress(data []byte) ([]byte, error) {
	lengths := codeLengths(data)
	codes := canonicalCodes(lengths)

	var buf bytes.Buffer
	buf.Write(lengths[:])

	bw := bitio.NewWriter(&buf)
	for _, b := range data {
		l := lengths[b]
		if l == 0 {
			return nil, fmt.Errorf("huffman: symbol %d has no code", b)
		}
		if err := bw.WriteBits(uint64(codes[b]), l); err != nil {
			return nil, fmt.Errorf("huffman: write bits: %w", err)
		}
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("huffman: close writer: %w", err)
	}

	return buf.Bytes(), nil
}

func (*huffmanCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	if expectedLen == 0 {
		return []byte{}, nil
	}
	if len(data) < 256 {
		return nil, fmt.Errorf("huffman: payload too short for length table")
	}

	var lengths [256]uint8
	copy(lengths[:], data[:256])
	codes := canonicalCodes(lengths)

	// decodeTable[length][code] = symbol+1 (0 means absent).
	decodeTable := make(map[uint8]map[uint32]int)
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		if decodeTable[l] == nil {
			decodeTable[l] = make(map[uint32]int)
		}
		decodeTable[l][codes[sym]] = sym + 1
	}

	br := bitio.NewReader(bytes.NewReader(data[256:]))
	out := make([]byte, 0, expectedLen)

	var code uint32
	var length uint8
	for len(out) < expectedLen {
		bit, err := br.ReadBits(1)
		if err != nil {
			return nil, fmt.Errorf("huffman: decode underflow at byte %d: %w", len(out), err)
		}
		code = (code << 1) | uint32(bit)
		length++

		if table := decodeTable[length]; table != nil {
			if sym, ok := table[code]; ok {
				out = append(out, byte(sym-1))
				code = 0
				length = 0
			}
		}
		if length > 32 {
			return nil, fmt.Errorf("huffman: no matching code after 32 bits")
		}
	}

	return out, nil
}
