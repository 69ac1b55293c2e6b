package codec_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/cborfree/codec"
	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		desc string
		v    value.Value
		want []byte
	}{
		{"null", value.Null(), []byte{0xf6}},
		{"true", value.Bool(true), []byte{0xf5}},
		{"false", value.Bool(false), []byte{0xf4}},
		{"zero", value.Uint(0), []byte{0x00}},
		{"23", value.Uint(23), []byte{0x17}},
		{"24", value.Uint(24), []byte{0x18, 0x18}},
		{"1000", value.Uint(1000), []byte{0x19, 0x03, 0xe8}},
		{"max uint", value.Uint(math.MaxUint64), []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"-1", value.Int(-1), []byte{0x20}},
		{"-100", value.Int(-100), []byte{0x38, 0x63}},
		{"min negint", value.NegInt(math.MaxUint64), []byte{0x3b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"1.5", value.Float(1.5), []byte{0xfb, 0x3f, 0xf8, 0, 0, 0, 0, 0, 0}},
		{"negative zero", value.Float(math.Copysign(0, -1)), []byte{0xfb, 0x80, 0, 0, 0, 0, 0, 0, 0}},
		{"NaN", value.Float(math.NaN()), []byte{0xf9, 0x7e, 0x00}},
		{"+Inf", value.Float(math.Inf(1)), []byte{0xf9, 0x7c, 0x00}},
		{"-Inf", value.Float(math.Inf(-1)), []byte{0xf9, 0xfc, 0x00}},
		{"empty text", value.Text(""), []byte{0x60}},
		{"text", value.Text("IETF"), []byte{0x64, 0x49, 0x45, 0x54, 0x46}},
		{"bytes", value.Bytes([]byte{1, 2, 3, 4}), []byte{0x44, 1, 2, 3, 4}},
		{"empty array", value.NewArray(), []byte{0x80}},
		{"array", value.NewArray(value.Uint(1), value.NewArray(value.Uint(2), value.Uint(3))), []byte{0x82, 0x01, 0x82, 0x02, 0x03}},
		{
			desc: "map in insertion order",
			v: value.NewMap(
				value.Pair{Key: value.Text("b"), Value: value.Uint(1)},
				value.Pair{Key: value.Text("a"), Value: value.Uint(2)},
			),
			want: []byte{0xa2, 0x61, 0x62, 0x01, 0x61, 0x61, 0x02},
		},
		{
			desc: "duplicate keys",
			v: value.NewMap(
				value.Pair{Key: value.Uint(1), Value: value.Uint(1)},
				value.Pair{Key: value.Uint(1), Value: value.Uint(2)},
			),
			want: []byte{0xa2, 0x01, 0x01, 0x01, 0x02},
		},
		{"tag", value.Tag(1, value.Uint(1363896240)), []byte{0xc1, 0x1a, 0x51, 0x4b, 0x67, 0xb0}},
		{"big tag", value.Tag(1<<40, value.Null()), []byte{0xdb, 0, 0, 1, 0, 0, 0, 0, 0, 0xf6}},
		{"shared ref", value.SharedRef(3), []byte{0xd8, 0x1d, 0x03}},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := codec.Encode(tC.v, nil)
			td.CmpNoError(t, err)
			td.Cmp(t, got, tC.want)
		})
	}
}

func TestEncodeTerminated(t *testing.T) {
	got, err := codec.Encode(value.Text("abc"), nil)
	td.CmpNoError(t, err)
	td.Cmp(t, got, []byte{0x63, 'a', 'b', 'c'})
	td.Cmp(t, cap(got) > len(got), true)
	td.Cmp(t, got[:len(got)+1][len(got)], byte(0))
}

func TestEncodeLengthBoundaries(t *testing.T) {
	testCases := []struct {
		n    int
		info byte
	}{
		{23, 23},
		{24, encio.InfoUint8},
		{255, encio.InfoUint8},
		{256, encio.InfoUint16},
		{65535, encio.InfoUint16},
		{65536, encio.InfoUint32},
	}

	for _, tC := range testCases {
		t.Run(fmt.Sprint(tC.n), func(t *testing.T) {
			items := make([]value.Value, tC.n)
			for i := range items {
				items[i] = value.Null()
			}

			got, err := codec.Encode(value.NewArray(items...), nil)
			td.CmpNoError(t, err)
			td.Cmp(t, got[0], encio.MajorArray<<5|tC.info)
			td.Cmp(t, got[:encio.HeadSize(uint64(tC.n))], encio.AppendHead(nil, encio.MajorArray, uint64(tC.n)))
			td.Cmp(t, len(got), encio.HeadSize(uint64(tC.n))+tC.n)

			v, err := codec.Decode(got, nil)
			td.CmpNoError(t, err)
			td.Cmp(t, v.Array().Len(), tC.n)
		})
	}
}

func TestEncodeLarge(t *testing.T) {
	// larger than a single buffer chunk
	payload := make([]byte, 3*encio.ChunkSize+7)
	for i := range payload {
		payload[i] = byte(i)
	}

	got, err := codec.Encode(value.NewArray(value.Bytes(payload), value.Bytes(payload)), nil)
	td.CmpNoError(t, err)

	want := []byte{0x82}
	for i := 0; i < 2; i++ {
		want = encio.AppendHead(want, encio.MajorBytes, uint64(len(payload)))
		want = append(want, payload...)
	}
	td.Cmp(t, got, want)
}

func TestEncodeCanonical(t *testing.T) {
	pairs := []value.Pair{
		{Key: value.Text("aa"), Value: value.Uint(1)},
		{Key: value.Text("z"), Value: value.Uint(2)},
		{Key: value.BytesString("x"), Value: value.Uint(3)},
		{Key: value.Uint(10), Value: value.Uint(4)},
		{Key: value.Int(-1), Value: value.Uint(5)},
		{Key: value.Uint(100), Value: value.Uint(6)},
		{Key: value.Text("b"), Value: value.Uint(7)},
	}
	want := []byte{
		0xa7,
		0x0a, 0x04, // 10
		0x18, 0x64, 0x06, // 100
		0x20, 0x05, // -1
		0x41, 'x', 0x03, // h'78'
		0x61, 'b', 0x07, // "b"
		0x61, 'z', 0x02, // "z"
		0x62, 'a', 'a', 0x01, // "aa"
	}

	config := &codec.Config{Canonical: true}
	got, err := codec.Encode(value.NewMap(pairs...), config)
	td.CmpNoError(t, err)
	td.Cmp(t, got, want)

	// any insertion order gives the same bytes
	reversed := make([]value.Pair, len(pairs))
	for i, p := range pairs {
		reversed[len(pairs)-1-i] = p
	}
	got, err = codec.Encode(value.NewMap(reversed...), config)
	td.CmpNoError(t, err)
	td.Cmp(t, got, want)

	rotated := append(append([]value.Pair{}, pairs[3:]...), pairs[:3]...)
	got, err = codec.Encode(value.NewMap(rotated...), config)
	td.CmpNoError(t, err)
	td.Cmp(t, got, want)

	// natural order is left alone
	got, err = codec.Encode(value.NewMap(pairs...), nil)
	td.CmpNoError(t, err)
	td.Cmp(t, got[:4], []byte{0xa7, 0x62, 'a', 'a'})
}

func TestEncodeCanonicalNested(t *testing.T) {
	inner := func(pairs ...value.Pair) value.Value { return value.NewMap(pairs...) }
	v := inner(
		value.Pair{Key: value.Text("yy"), Value: inner(
			value.Pair{Key: value.Text("bb"), Value: value.Null()},
			value.Pair{Key: value.Text("a"), Value: value.Null()},
		)},
		value.Pair{Key: value.Text("x"), Value: value.Null()},
	)

	got, err := codec.Encode(v, &codec.Config{Canonical: true})
	td.CmpNoError(t, err)
	td.Cmp(t, got, []byte{
		0xa2,
		0x61, 'x', 0xf6,
		0x62, 'y', 'y', 0xa2,
		0x61, 'a', 0xf6,
		0x62, 'b', 'b', 0xf6,
	})
}

func TestEncodeStringModes(t *testing.T) {
	testCases := []struct {
		desc string
		v    value.Value
		want map[codec.StringMode][]byte
	}{
		{
			desc: "ascii text",
			v:    value.Text("abc"),
			want: map[codec.StringMode][]byte{
				codec.StringAsIs:    {0x63, 'a', 'b', 'c'},
				codec.StringUnicode: {0x63, 'a', 'b', 'c'},
				codec.StringUTF8:    {0x63, 'a', 'b', 'c'},
				codec.StringOctets:  {0x43, 'a', 'b', 'c'},
			},
		},
		{
			desc: "latin-1 text",
			v:    value.Text("é"),
			want: map[codec.StringMode][]byte{
				codec.StringAsIs:    {0x62, 0xc3, 0xa9},
				codec.StringUnicode: {0x62, 0xc3, 0xa9},
				codec.StringUTF8:    {0x61, 0xe9},
				codec.StringOctets:  {0x41, 0xe9},
			},
		},
		{
			desc: "high bytes",
			v:    value.Bytes([]byte{0xe9}),
			want: map[codec.StringMode][]byte{
				codec.StringAsIs:    {0x41, 0xe9},
				codec.StringUnicode: {0x62, 0xc3, 0xa9},
				codec.StringUTF8:    {0x61, 0xe9},
				codec.StringOctets:  {0x41, 0xe9},
			},
		},
		{
			desc: "map key",
			v:    value.NewMap(value.Pair{Key: value.Bytes([]byte{0xe9}), Value: value.Null()}),
			want: map[codec.StringMode][]byte{
				codec.StringAsIs:    {0xa1, 0x41, 0xe9, 0xf6},
				codec.StringUnicode: {0xa1, 0x62, 0xc3, 0xa9, 0xf6},
				codec.StringUTF8:    {0xa1, 0x61, 0xe9, 0xf6},
				codec.StringOctets:  {0xa1, 0x41, 0xe9, 0xf6},
			},
		},
	}

	for _, tC := range testCases {
		for mode, want := range tC.want {
			t.Run(tC.desc+"/"+mode.String(), func(t *testing.T) {
				got, err := codec.Encode(tC.v, &codec.Config{StringMode: mode})
				td.CmpNoError(t, err)
				td.Cmp(t, got, want)
			})
		}
	}
}

func TestEncodeWideCharacter(t *testing.T) {
	wide := value.Text("€uro")

	for _, mode := range []codec.StringMode{codec.StringUTF8, codec.StringOctets} {
		got, err := codec.Encode(wide, &codec.Config{StringMode: mode})
		td.CmpErrorIs(t, err, encio.ErrWideCharacter, mode.String())
		td.CmpNil(t, got)

		_, err = codec.Encode(value.NewArray(value.Uint(1), wide), &codec.Config{StringMode: mode})
		td.CmpErrorIs(t, err, encio.ErrWideCharacter, mode.String())
	}

	for _, mode := range []codec.StringMode{codec.StringAsIs, codec.StringUnicode} {
		got, err := codec.Encode(wide, &codec.Config{StringMode: mode})
		td.CmpNoError(t, err, mode.String())
		td.Cmp(t, got, append([]byte{0x66}, "€uro"...), mode.String())
	}
}

func TestEncodeRecursion(t *testing.T) {
	nest := func(depth int) value.Value {
		v := value.Uint(0)
		for i := 0; i < depth; i++ {
			v = value.NewArray(v)
		}
		return v
	}

	// the innermost integer is one level too
	_, err := codec.Encode(nest(codec.DefaultMaxDepth-1), nil)
	td.CmpNoError(t, err)

	_, err = codec.Encode(nest(codec.DefaultMaxDepth), nil)
	td.CmpErrorIs(t, err, encio.ErrRecursion)

	_, err = codec.Encode(nest(2), &codec.Config{MaxDepth: 3})
	td.CmpNoError(t, err)

	_, err = codec.Encode(nest(3), &codec.Config{MaxDepth: 3})
	td.CmpErrorIs(t, err, encio.ErrRecursion)

	a := new(value.Array)
	a.Append(value.FromArray(a))
	got, err := codec.Encode(value.FromArray(a), nil)
	td.CmpErrorIs(t, err, encio.ErrRecursion)
	td.CmpNil(t, got)
}

func TestEncodeUnrecognized(t *testing.T) {
	_, err := codec.Encode(value.Value{}, nil)
	td.CmpErrorIs(t, err, encio.ErrUnrecognized)

	_, err = codec.Encode(value.NewArray(value.Uint(1), value.Value{}), nil)
	td.CmpErrorIs(t, err, encio.ErrUnrecognized)

	_, err = codec.Encode(value.NewRef(value.Uint(1)), nil)
	td.CmpErrorIs(t, err, encio.ErrUnrecognized)
}

func TestEncodeScalarRefs(t *testing.T) {
	got, err := codec.Encode(value.NewRef(value.Uint(5)), &codec.Config{EncodeScalarRefs: true})
	td.CmpNoError(t, err)
	td.Cmp(t, got, []byte{0xd9, 0x56, 0x52, 0x05})

	ref := value.NewRef(value.Text("a"))
	got, err = codec.Encode(value.NewArray(ref, ref), &codec.Config{EncodeScalarRefs: true, PreserveReferences: true})
	td.CmpNoError(t, err)
	td.Cmp(t, got, []byte{
		0x82,
		0xd8, 0x1c, 0xd9, 0x56, 0x52, 0x61, 'a',
		0xd8, 0x1d, 0x00,
	})
}

func TestEncodeReferences(t *testing.T) {
	config := &codec.Config{PreserveReferences: true}

	t.Run("repeated", func(t *testing.T) {
		shared := value.NewArray(value.Uint(1))
		got, err := codec.Encode(value.NewArray(shared, shared, value.NewArray(value.Uint(1))), config)
		td.CmpNoError(t, err)
		td.Cmp(t, got, []byte{
			0x83,
			0xd8, 0x1c, 0x81, 0x01, // shareable [1]
			0xd8, 0x1d, 0x00, // reference 0
			0x81, 0x01, // a different [1], written in full
		})
	})

	t.Run("not repeated", func(t *testing.T) {
		got, err := codec.Encode(value.NewArray(value.NewArray(), value.NewMap()), config)
		td.CmpNoError(t, err)
		td.Cmp(t, got, []byte{0x82, 0x80, 0xa0})
	})

	t.Run("cycle", func(t *testing.T) {
		m := new(value.Map)
		v := value.FromMap(m)
		m.Add(value.Text("self"), v)

		got, err := codec.Encode(v, config)
		td.CmpNoError(t, err)
		td.Cmp(t, got, []byte{
			0xd8, 0x1c, 0xa1,
			0x64, 's', 'e', 'l', 'f',
			0xd8, 0x1d, 0x00,
		})
	})

	t.Run("indexes in output order", func(t *testing.T) {
		first := value.NewArray(value.Uint(1))
		second := value.NewArray(value.Uint(2))
		got, err := codec.Encode(value.NewArray(second, first, first, second), config)
		td.CmpNoError(t, err)
		td.Cmp(t, got, []byte{
			0x84,
			0xd8, 0x1c, 0x81, 0x02,
			0xd8, 0x1c, 0x81, 0x01,
			0xd8, 0x1d, 0x01,
			0xd8, 0x1d, 0x00,
		})
	})

	t.Run("canonical", func(t *testing.T) {
		shared := value.NewArray()
		v := value.NewMap(
			value.Pair{Key: value.Text("bb"), Value: shared},
			value.Pair{Key: value.Text("a"), Value: shared},
		)
		got, err := codec.Encode(v, &codec.Config{PreserveReferences: true, Canonical: true})
		td.CmpNoError(t, err)
		td.Cmp(t, got, []byte{
			0xa2,
			0x61, 'a', 0xd8, 0x1c, 0x80,
			0x62, 'b', 'b', 0xd8, 0x1d, 0x00,
		})
	})

	t.Run("without preservation", func(t *testing.T) {
		shared := value.NewArray(value.Uint(1))
		got, err := codec.Encode(value.NewArray(shared, shared), nil)
		td.CmpNoError(t, err)
		td.Cmp(t, got, []byte{0x82, 0x81, 0x01, 0x81, 0x01})
	})
}
