package value_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

func TestFromGo(t *testing.T) {
	n := 7
	v, err := value.FromGo(map[string]interface{}{
		"int":    -3,
		"uint":   uint8(200),
		"float":  float32(1.5),
		"text":   "hello",
		"bytes":  []byte{1, 2},
		"list":   []interface{}{true, nil},
		"fixed":  [2]int{1, 2},
		"ptr":    &n,
		"tagged": value.Tagged{Number: 32, Content: "http://x"},
	})
	td.CmpNoError(t, err)

	want := value.NewMap(
		value.Pair{Key: value.Text("int"), Value: value.Int(-3)},
		value.Pair{Key: value.Text("uint"), Value: value.Uint(200)},
		value.Pair{Key: value.Text("float"), Value: value.Float(1.5)},
		value.Pair{Key: value.Text("text"), Value: value.Text("hello")},
		value.Pair{Key: value.Text("bytes"), Value: value.Bytes([]byte{1, 2})},
		value.Pair{Key: value.Text("list"), Value: value.NewArray(value.Bool(true), value.Null())},
		value.Pair{Key: value.Text("fixed"), Value: value.NewArray(value.Uint(1), value.Uint(2))},
		value.Pair{Key: value.Text("ptr"), Value: value.NewRef(value.Uint(7))},
		value.Pair{Key: value.Text("tagged"), Value: value.Tag(32, value.Text("http://x"))},
	)
	td.CmpTrue(t, value.Equal(v, want), "got %v", v)
}

func TestFromGoAliases(t *testing.T) {
	inner := map[string]interface{}{"k": 1}
	v, err := value.FromGo([]interface{}{inner, inner})
	td.CmpNoError(t, err)

	items := v.Array().Items
	td.CmpTrue(t, items[0].Identity() == items[1].Identity())

	cyclic := make(map[string]interface{})
	cyclic["self"] = cyclic
	v, err = value.FromGo(cyclic)
	td.CmpNoError(t, err)

	self, ok := v.Map().Get(value.Text("self"))
	td.CmpTrue(t, ok)
	td.CmpTrue(t, self.Identity() == v.Identity())

	// empty slices and zero sized values share one runtime address without being aliases
	v, err = value.FromGo([]interface{}{make([]int, 0), make([]string, 0), make([]float64, 0), [][0]int{{}}})
	td.CmpNoError(t, err)
	items = v.Array().Items
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			td.CmpFalse(t, items[i].Identity() == items[j].Identity(), "items %v and %v", i, j)
		}
	}

	v, err = value.FromGo([]interface{}{new([0]int), new([0]int)})
	td.CmpNoError(t, err)
	items = v.Array().Items
	td.CmpFalse(t, items[0].Identity() == items[1].Identity())
}

func TestGoBigIntegers(t *testing.T) {
	for _, v := range []value.Value{
		value.NegInt(math.MaxUint64),
		value.NegInt(math.MaxInt64 + 1),
		value.Uint(math.MaxUint64),
		value.Int(math.MinInt64),
	} {
		x, err := value.ToGo(v)
		if !td.CmpNoError(t, err, "%v", v) {
			continue
		}

		got, err := value.FromGo(x)
		td.CmpNoError(t, err, "%v", v)
		td.CmpTrue(t, value.Equal(got, v), "%v: got %v", v, got)
	}

	tooSmall := new(big.Int).Lsh(big.NewInt(-1), 65)
	_, err := value.FromGo(tooSmall)
	td.CmpErrorIs(t, err, encio.ErrUnrecognized)
}

func TestFromGoUnrecognized(t *testing.T) {
	for _, x := range []interface{}{
		make(chan int),
		func() {},
		complex(1, 2),
		struct{ A int }{1},
	} {
		_, err := value.FromGo(x)
		td.CmpErrorIs(t, err, encio.ErrUnrecognized)
	}
}

func TestToGo(t *testing.T) {
	shared := value.NewArray(value.Uint(1))
	v := value.NewMap(
		value.Pair{Key: value.Uint(12), Value: value.NegInt(0)},
		value.Pair{Key: value.Int(-12), Value: value.Uint(math.MaxUint64)},
		value.Pair{Key: value.Text("a"), Value: shared},
		value.Pair{Key: value.BytesString("b"), Value: shared},
		value.Pair{Key: value.Text("r"), Value: value.NewRef(value.Text("x"))},
		value.Pair{Key: value.Text("t"), Value: value.Tag(1, value.Float(2.5))},
	)

	x, err := value.ToGo(v)
	td.CmpNoError(t, err)

	r, ok := x.(map[string]interface{})["r"].(*interface{})
	td.CmpTrue(t, ok)
	td.Cmp(t, *r, "x")

	td.Cmp(t, x, td.Map(map[string]interface{}{}, td.MapEntries{
		"12":  int64(-1),
		"-12": uint64(math.MaxUint64),
		"a":   []interface{}{int64(1)},
		"b":   []interface{}{int64(1)},
		"t":   value.Tagged{Number: 1, Content: 2.5},
		"r":   td.Ignore(),
	}))

	m := x.(map[string]interface{})
	a, b := m["a"].([]interface{}), m["b"].([]interface{})
	a[0] = "changed"
	td.Cmp(t, b[0], "changed", "aliased containers stay aliased")

	_, err = value.ToGo(value.NewMap(value.Pair{Key: value.NewArray(), Value: value.Null()}))
	td.CmpErrorIs(t, err, encio.ErrUnrecognized)
}
