// Package value is the dynamic value graph the codec reads from and writes to.
//
// Value is a closed union over the CBOR data model. Scalars are held inline;
// containers (Array, Map) and scalar references (Box) are pointers, and pointer
// identity is what makes two Values "the same" container for reference sharing.
package value

import (
	"fmt"
	"math"
)

// Kind is the variant held by a Value.
type Kind uint8

// Kinds. The zero Kind is Invalid; a zero Value cannot be encoded.
const (
	Invalid Kind = iota
	NullKind
	BoolKind
	UintKind
	NegIntKind
	FloatKind
	BytesKind
	TextKind
	ArrayKind
	MapKind
	TagKind
	RefKind
	SharedRefKind
)

var kindNames = [...]string{
	Invalid:       "invalid",
	NullKind:      "null",
	BoolKind:      "bool",
	UintKind:      "uint",
	NegIntKind:    "negint",
	FloatKind:     "float",
	BytesKind:     "bytes",
	TextKind:      "text",
	ArrayKind:     "array",
	MapKind:       "map",
	TagKind:       "tag",
	RefKind:       "ref",
	SharedRefKind: "sharedref",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a single node in the value graph.
type Value struct {
	kind Kind

	// n holds Bool (0/1), Uint, NegInt magnitude, Tag number, SharedRef index and Float bits.
	n uint64

	// s holds Bytes and Text payloads.
	s string

	// p holds *Array, *Map, *Box or *tagged.
	p interface{}
}

type tagged struct {
	inner Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: NullKind} }

// Bool returns a boolean Value.
func Bool(b bool) Value {
	v := Value{kind: BoolKind}
	if b {
		v.n = 1
	}
	return v
}

// Uint returns an unsigned integer Value.
func Uint(u uint64) Value { return Value{kind: UintKind, n: u} }

// NegInt returns the negative integer -1-n.
func NegInt(n uint64) Value { return Value{kind: NegIntKind, n: n} }

// Int returns i as a Uint or NegInt Value.
func Int(i int64) Value {
	if i < 0 {
		return NegInt(uint64(-(i + 1)))
	}
	return Uint(uint64(i))
}

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: FloatKind, n: math.Float64bits(f)} }

// Bytes returns a byte string Value. b is copied.
func Bytes(b []byte) Value { return Value{kind: BytesKind, s: string(b)} }

// BytesString returns a byte string Value holding the bytes of s.
func BytesString(s string) Value { return Value{kind: BytesKind, s: s} }

// Text returns a text string Value. s should be UTF-8.
func Text(s string) Value { return Value{kind: TextKind, s: s} }

// Tag returns inner wrapped with tag number num.
func Tag(num uint64, inner Value) Value {
	return Value{kind: TagKind, n: num, p: &tagged{inner: inner}}
}

// SharedRef returns a placeholder for the previously shared container at index.
func SharedRef(index uint64) Value { return Value{kind: SharedRefKind, n: index} }

// Kind returns the variant held.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == NullKind }

// Bool returns the boolean held. It is false for other kinds.
func (v Value) Bool() bool { return v.kind == BoolKind && v.n != 0 }

// Uint returns the unsigned integer held, or the magnitude of a NegInt.
func (v Value) Uint() uint64 { return v.n }

// Int returns the integer held as an int64, with ok false if it is not an integer or does not fit.
func (v Value) Int() (i int64, ok bool) {
	switch v.kind {
	case UintKind:
		return int64(v.n), v.n <= math.MaxInt64
	case NegIntKind:
		return -1 - int64(v.n), v.n <= math.MaxInt64
	}
	return 0, false
}

// Float returns the float held.
func (v Value) Float() float64 {
	if v.kind != FloatKind {
		return 0
	}
	return math.Float64frombits(v.n)
}

// Bytes returns the payload of a Bytes or Text value.
func (v Value) Bytes() []byte { return []byte(v.s) }

// Text returns the payload of a Bytes or Text value as a string.
func (v Value) Text() string { return v.s }

// TagNumber returns the tag number of a Tag value.
func (v Value) TagNumber() uint64 { return v.n }

// Tagged returns the inner value of a Tag value.
func (v Value) Tagged() Value {
	if t, ok := v.p.(*tagged); ok {
		return t.inner
	}
	return Value{}
}

// Index returns the index of a SharedRef value.
func (v Value) Index() uint64 { return v.n }

// Array returns the array held, or nil.
func (v Value) Array() *Array {
	a, _ := v.p.(*Array)
	return a
}

// Map returns the map held, or nil.
func (v Value) Map() *Map {
	m, _ := v.p.(*Map)
	return m
}

// Ref returns the box a Ref value points to, or nil.
func (v Value) Ref() *Box {
	b, _ := v.p.(*Box)
	return b
}

// Identity returns the container pointer for Array, Map and Ref values, and nil for everything else.
// Two Values with the same non-nil Identity are aliases.
func (v Value) Identity() interface{} {
	switch v.kind {
	case ArrayKind, MapKind, RefKind:
		return v.p
	}
	return nil
}
