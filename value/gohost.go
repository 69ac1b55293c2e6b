package value

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"

	"github.com/stewi1014/cborfree/encio"
)

// Tagged is the Go-side form of a tagged value, used by FromGo and ToGo.
type Tagged struct {
	Number  uint64
	Content interface{}
}

// ScratchSize is the capacity of the buffer integer map keys are formatted through;
// enough for the digits of any 64 bit integer and its sign.
const ScratchSize = 30

// FromGo converts a Go value into a Value.
//
// nil, bools, integers, floats, strings, []byte, slices, arrays, maps, pointers, Tagged, Value, *Array, *Map and *Box are accepted.
// A map, slice or pointer reached more than once becomes one shared container, so aliasing
// and cycles in the Go graph carry over. Anything else fails with encio.ErrUnrecognized.
func FromGo(x interface{}) (Value, error) {
	c := fromGo{seen: make(map[goIdentity]Value)}
	return c.convert(reflect.ValueOf(x))
}

type goIdentity struct {
	kind reflect.Kind
	ptr  uintptr
	len  int
}

type fromGo struct {
	seen map[goIdentity]Value
}

func (c *fromGo) convert(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}

	switch x := rv.Interface().(type) {
	case Value:
		return x, nil
	case *Array:
		return FromArray(x), nil
	case *Map:
		return FromMap(x), nil
	case *Box:
		return FromBox(x), nil
	case Tagged:
		inner, err := c.convert(reflect.ValueOf(x.Content))
		if err != nil {
			return Value{}, err
		}
		return Tag(x.Number, inner), nil
	case *big.Int:
		if x != nil && x.IsInt64() {
			return Int(x.Int64()), nil
		}
		if x != nil && x.IsUint64() {
			return Uint(x.Uint64()), nil
		}
		if x != nil && x.Sign() < 0 {
			// -1-n, the form ToGo gives for integers below math.MinInt64
			n := new(big.Int).Neg(x)
			if n.Sub(n, big.NewInt(1)).IsUint64() {
				return NegInt(n.Uint64()), nil
			}
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Text(rv.String()), nil

	case reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.convert(rv.Elem())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Bytes()), nil
		}
		if rv.IsNil() {
			return Null(), nil
		}
		a := &Array{Items: make([]Value, rv.Len())}
		v := FromArray(a)
		if zeroSized(rv) {
			return v, c.fill(a, rv)
		}

		id := goIdentity{kind: reflect.Slice, ptr: rv.Pointer(), len: rv.Len()}
		if seen, ok := c.seen[id]; ok {
			return seen, nil
		}
		c.seen[id] = v
		return v, c.fill(a, rv)

	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return Bytes(b), nil
		}
		a := &Array{Items: make([]Value, rv.Len())}
		return FromArray(a), c.fill(a, rv)

	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		id := goIdentity{kind: reflect.Map, ptr: rv.Pointer()}
		if v, ok := c.seen[id]; ok {
			return v, nil
		}
		m := &Map{Pairs: make([]Pair, 0, rv.Len())}
		v := FromMap(m)
		c.seen[id] = v

		iter := rv.MapRange()
		for iter.Next() {
			key, err := c.convert(iter.Key())
			if err != nil {
				return Value{}, err
			}
			val, err := c.convert(iter.Value())
			if err != nil {
				return Value{}, err
			}
			m.Add(key, val)
		}
		return v, nil

	case reflect.Ptr:
		if rv.IsNil() {
			return Null(), nil
		}
		b := new(Box)
		v := FromBox(b)
		if !zeroSized(rv) {
			id := goIdentity{kind: reflect.Ptr, ptr: rv.Pointer()}
			if seen, ok := c.seen[id]; ok {
				return seen, nil
			}
			c.seen[id] = v
		}

		inner, err := c.convert(rv.Elem())
		if err != nil {
			return Value{}, err
		}
		b.Value = inner
		return v, nil
	}

	return Value{}, encio.Errorf(encio.ErrUnrecognized, "%#v (%v)", rv.Interface(), rv.Type())
}

// zeroSized reports whether slice or pointer rv addresses no memory of its own.
// The runtime hands every such value the same address, so it says nothing about aliasing.
func zeroSized(rv reflect.Value) bool {
	if rv.Type().Elem().Size() == 0 {
		return true
	}
	return rv.Kind() == reflect.Slice && rv.Cap() == 0
}

func (c *fromGo) fill(a *Array, rv reflect.Value) error {
	for i := range a.Items {
		item, err := c.convert(rv.Index(i))
		if err != nil {
			return err
		}
		a.Items[i] = item
	}
	return nil
}

// ToGo converts a Value into plain Go values.
//
// Integers become int64 when they fit, otherwise uint64 or *big.Int.
// Arrays become []interface{}, maps map[string]interface{} with integer keys written in decimal,
// Ref values *interface{}, and tags Tagged. Aliased containers stay aliased.
func ToGo(v Value) (interface{}, error) {
	c := toGo{seen: make(map[interface{}]interface{})}
	return c.convert(v)
}

type toGo struct {
	seen    map[interface{}]interface{}
	scratch [ScratchSize]byte
}

func (c *toGo) convert(v Value) (interface{}, error) {
	switch v.kind {
	case NullKind:
		return nil, nil
	case BoolKind:
		return v.Bool(), nil
	case UintKind:
		if v.n <= math.MaxInt64 {
			return int64(v.n), nil
		}
		return v.n, nil
	case NegIntKind:
		if i, ok := v.Int(); ok {
			return i, nil
		}
		n := new(big.Int).SetUint64(v.n)
		return n.Neg(n.Add(n, big.NewInt(1))), nil
	case FloatKind:
		return v.Float(), nil
	case BytesKind:
		return v.Bytes(), nil
	case TextKind:
		return v.s, nil
	case TagKind:
		inner, err := c.convert(v.Tagged())
		if err != nil {
			return nil, err
		}
		return Tagged{Number: v.n, Content: inner}, nil

	case ArrayKind:
		if x, ok := c.seen[v.p]; ok {
			return x, nil
		}
		a := v.Array()
		s := make([]interface{}, a.Len())
		c.seen[v.p] = s
		for i, item := range a.Items {
			x, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			s[i] = x
		}
		return s, nil

	case MapKind:
		if x, ok := c.seen[v.p]; ok {
			return x, nil
		}
		m := v.Map()
		gm := make(map[string]interface{}, m.Len())
		c.seen[v.p] = gm
		for _, p := range m.Pairs {
			key, err := c.key(p.Key)
			if err != nil {
				return nil, err
			}
			x, err := c.convert(p.Value)
			if err != nil {
				return nil, err
			}
			gm[key] = x
		}
		return gm, nil

	case RefKind:
		if x, ok := c.seen[v.p]; ok {
			return x, nil
		}
		ptr := new(interface{})
		c.seen[v.p] = ptr
		x, err := c.convert(v.Ref().Value)
		if err != nil {
			return nil, err
		}
		*ptr = x
		return ptr, nil
	}

	return nil, encio.Errorf(encio.ErrUnrecognized, "%v has no Go form", v.kind)
}

// key synthesizes a string map key.
func (c *toGo) key(k Value) (string, error) {
	switch k.kind {
	case TextKind, BytesKind:
		return k.s, nil
	case UintKind:
		return string(strconv.AppendUint(c.scratch[:0], k.n, 10)), nil
	case NegIntKind:
		if i, ok := k.Int(); ok {
			return string(strconv.AppendInt(c.scratch[:0], i, 10)), nil
		}
		return k.String(), nil
	case BoolKind, NullKind, FloatKind:
		return k.String(), nil
	}
	return "", encio.Errorf(encio.ErrUnrecognized, "map key %v cannot be used as a Go map key", k)
}

// String implements fmt.Stringer.
func (t Tagged) String() string {
	return fmt.Sprintf("%d(%v)", t.Number, t.Content)
}
