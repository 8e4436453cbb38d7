package container

import (
	"encoding/binary"
	"fmt"
)

// dictionaryCodec is an LZ78-style dictionary coder (spec §4.1, id 2): it
// builds a table of previously seen phrases and emits each new phrase as a
// reference to its longest matching prefix plus one literal byte.
//
// Wire format per token: [index:uint16 LE][hasChar:1 byte][char:1 byte if
// hasChar=1]. Index 0 denotes the empty phrase (the table root). The table
// is capped at 65535 entries, matching the uint16 index width and the
// format's 65536-byte chunk ceiling (spec §3's open question) — once full,
// further phrases simply match against the existing table without growing
// it.
type dictionaryCodec struct{}

func newDictionaryCodec() *dictionaryCodec { return &dictionaryCodec{} }

func (*dictionaryCodec) ID() CodecID { return CodecDictionary }

func (*dictionaryCodec) ShouldUse(data []byte) bool {
	return len(data) >= 16
}

const dictionaryMaxEntries = 65535

func (*dictionaryCodec) Compress(data []byte) ([]byte, error) {
	dict := make(map[string]int, 1024)
	nextCode := 1

	out := make([]byte, 0, len(data))
	tok := make([]byte, 4)

	w := ""
	for i := 0; i < len(data); i++ {
		c := data[i]
		wc := w + string([]byte{c})
		if _, ok := dict[wc]; ok {
			w = wc
			continue
		}

		idx := 0
		if w != "" {
			idx = dict[w]
		}
		binary.LittleEndian.PutUint16(tok[0:2], uint16(idx)) //nolint:gosec // idx bounded by dictionaryMaxEntries
		tok[2] = 1
		tok[3] = c
		out = append(out, tok...)

		if nextCode <= dictionaryMaxEntries {
			dict[wc] = nextCode
			nextCode++
		}
		w = ""
	}

	if w != "" {
		idx := dict[w]
		binary.LittleEndian.PutUint16(tok[0:2], uint16(idx)) //nolint:gosec // idx bounded by dictionaryMaxEntries
		tok[2] = 0
		out = append(out, tok[0], tok[1], tok[2])
	}

	return out, nil
}

func (*dictionaryCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	table := make([]string, 1, dictionaryMaxEntries+1)
	table[0] = ""

	out := make([]byte, 0, expectedLen)
	i := 0
	for i < len(data) && len(out) < expectedLen {
		if i+3 > len(data) {
			return nil, fmt.Errorf("dictionary: truncated token at offset %d", i)
		}
		idx := int(binary.LittleEndian.Uint16(data[i : i+2]))
		hasChar := data[i+2]
		i += 3

		if idx >= len(table) {
			return nil, fmt.Errorf("dictionary: index %d out of range (table size %d)", idx, len(table))
		}
		entry := table[idx]

		if hasChar == 0 {
			out = append(out, entry...)
			continue
		}
		if i >= len(data) {
			return nil, fmt.Errorf("dictionary: truncated token char at offset %d", i)
		}
		c := data[i]
		i++

		symbol := entry + string([]byte{c})
		out = append(out, symbol...)
		if len(table) <= dictionaryMaxEntries {
			table = append(table, symbol)
		}
	}

	if len(out) != expectedLen {
		return nil, fmt.Errorf("dictionary: decoded %d bytes, want %d", len(out), expectedLen)
	}
	return out, nil
}
