package codec

import (
	"bytes"
	"sort"

	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

// NOTE: Contrary to JSON's "canonical" order, for canonical CBOR
// keys are only byte-sorted if their lengths are identical. Thus,
// "z" sorts EARLIER than "aa". Byte strings sort before text strings.

type sortKey struct {
	major   byte
	payload []byte
	pair    value.Pair
}

// sortPairs returns pairs ordered by their encoded keys.
// Keys are encoded on their own, without reference tracking, only to find their order;
// the caller writes them again in that order so shareable indexes follow the output.
func (e *encodeState) sortPairs(pairs []value.Pair) ([]value.Pair, error) {
	scratch := newEncodeState(e.Config, encio.NewBuffer())
	scratch.depth = e.depth

	offsets := make([]int, len(pairs)+1)
	for i, p := range pairs {
		if err := scratch.encode(p.Key); err != nil {
			return nil, err
		}
		offsets[i+1] = scratch.buff.Len()
	}

	encoded := scratch.buff.Bytes()
	keys := make([]sortKey, len(pairs))
	for i, p := range pairs {
		keys[i] = newSortKey(encoded[offsets[i]:offsets[i+1]], p)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return compareKeys(&keys[i], &keys[j]) < 0
	})

	sorted := make([]value.Pair, len(keys))
	for i := range keys {
		sorted[i] = keys[i].pair
	}
	return sorted, nil
}

// newSortKey splits an encoded key into its major type and the bytes it sorts by.
// Strings sort by their content, everything else by its whole encoding.
func newSortKey(encoded []byte, p value.Pair) sortKey {
	k := sortKey{
		major:   encoded[0] >> 5,
		payload: encoded,
		pair:    p,
	}
	if k.major == encio.MajorBytes || k.major == encio.MajorText {
		// our own output; always a complete definite head
		h, _, _ := encio.ParseHead(encoded)
		k.payload = encoded[h.Size:]
	}
	return k
}

// compareKeys orders by major type, then payload length, then payload bytes.
func compareKeys(a, b *sortKey) int {
	switch {
	case a.major < b.major:
		return -1
	case a.major > b.major:
		return 1
	case len(a.payload) < len(b.payload):
		return -1
	case len(a.payload) > len(b.payload):
		return 1
	}
	return bytes.Compare(a.payload, b.payload)
}
