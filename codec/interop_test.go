package codec_test

import (
	"math"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/cborfree/codec"
	"github.com/stewi1014/cborfree/value"
)

// The output of Encode without the reference extension must read back the same through another implementation.
func TestInteropDecode(t *testing.T) {
	v := value.NewMap(
		value.Pair{Key: value.Text("a"), Value: value.Uint(1)},
		value.Pair{Key: value.Text("b"), Value: value.NewArray(
			value.Int(-2),
			value.Float(1.5),
			value.Bytes([]byte{0xde, 0xad}),
			value.Bool(true),
			value.Null(),
			value.Text("ü"),
		)},
		value.Pair{Key: value.Uint(3), Value: value.Tag(1000, value.Uint(1))},
	)

	data, err := codec.Encode(v, nil)
	td.CmpNoError(t, err)
	td.CmpNoError(t, cbor.Wellformed(data))

	var got interface{}
	td.CmpNoError(t, cbor.Unmarshal(data, &got))
	td.Cmp(t, got, map[interface{}]interface{}{
		"a": uint64(1),
		"b": []interface{}{
			int64(-2),
			1.5,
			[]byte{0xde, 0xad},
			true,
			nil,
			"ü",
		},
		uint64(3): cbor.Tag{Number: 1000, Content: uint64(1)},
	})
}

func TestInteropEncode(t *testing.T) {
	data, err := cbor.Marshal(map[string]interface{}{
		"list":  []interface{}{1, -1, "x", []byte{1}},
		"half":  float32(0.5),
		"exact": 1.1,
		"nan":   math.NaN(),
		"inf":   math.Inf(-1),
	})
	td.CmpNoError(t, err)

	got, err := codec.Decode(data, nil)
	td.CmpNoError(t, err)

	want := value.NewMap(
		value.Pair{Key: value.Text("list"), Value: value.NewArray(value.Int(1), value.Int(-1), value.Text("x"), value.Bytes([]byte{1}))},
		value.Pair{Key: value.Text("half"), Value: value.Float(0.5)},
		value.Pair{Key: value.Text("exact"), Value: value.Float(1.1)},
		value.Pair{Key: value.Text("nan"), Value: value.Float(math.NaN())},
		value.Pair{Key: value.Text("inf"), Value: value.Float(math.Inf(-1))},
	)
	cmpValue(t, got, want)
}

// Special floats are written the same way by both.
func TestInteropSpecialFloats(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		theirs, err := cbor.Marshal(f)
		td.CmpNoError(t, err)

		ours, err := codec.Encode(value.Float(f), nil)
		td.CmpNoError(t, err)
		td.Cmp(t, ours, theirs, "%v", f)
	}
}

// For text keys, canonical order is the length-first order of RFC 7049 canonical CBOR.
func TestInteropCanonical(t *testing.T) {
	keys := map[string]interface{}{
		"z":   1,
		"aa":  2,
		"b":   3,
		"ccc": 4,
		"":    5,
		"ab":  6,
	}

	em, err := cbor.CanonicalEncOptions().EncMode()
	td.CmpNoError(t, err)
	theirs, err := em.Marshal(keys)
	td.CmpNoError(t, err)

	pairs := make([]value.Pair, 0, len(keys))
	for k, n := range keys {
		pairs = append(pairs, value.Pair{Key: value.Text(k), Value: value.Uint(uint64(n.(int)))})
	}
	ours, err := codec.Encode(value.NewMap(pairs...), &codec.Config{Canonical: true})
	td.CmpNoError(t, err)
	td.Cmp(t, ours, theirs)
}
