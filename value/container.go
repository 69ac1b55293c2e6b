package value

// Array is an ordered sequence of Values.
type Array struct {
	Items []Value
}

// NewArray returns an array Value holding items.
func NewArray(items ...Value) Value {
	return FromArray(&Array{Items: items})
}

// FromArray returns a Value for an existing Array, sharing it.
func FromArray(a *Array) Value {
	if a == nil {
		a = new(Array)
	}
	return Value{kind: ArrayKind, p: a}
}

// Len returns the number of items.
func (a *Array) Len() int { return len(a.Items) }

// Append adds items to the end of the array.
func (a *Array) Append(items ...Value) {
	a.Items = append(a.Items, items...)
}

// Pair is a key and its value.
type Pair struct {
	Key   Value
	Value Value
}

// Map is an ordered list of pairs. Keys need not be unique.
type Map struct {
	Pairs []Pair
}

// NewMap returns a map Value holding pairs.
func NewMap(pairs ...Pair) Value {
	return FromMap(&Map{Pairs: pairs})
}

// FromMap returns a Value for an existing Map, sharing it.
func FromMap(m *Map) Value {
	if m == nil {
		m = new(Map)
	}
	return Value{kind: MapKind, p: m}
}

// Len returns the number of pairs.
func (m *Map) Len() int { return len(m.Pairs) }

// Get returns the value of the first pair whose key equals key.
func (m *Map) Get(key Value) (Value, bool) {
	for _, p := range m.Pairs {
		if Equal(p.Key, key) {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value of the first pair whose key equals key, or appends a new pair.
func (m *Map) Set(key, val Value) {
	for i := range m.Pairs {
		if Equal(m.Pairs[i].Key, key) {
			m.Pairs[i].Value = val
			return
		}
	}
	m.Pairs = append(m.Pairs, Pair{Key: key, Value: val})
}

// Add appends a pair without looking for an existing key.
func (m *Map) Add(key, val Value) {
	m.Pairs = append(m.Pairs, Pair{Key: key, Value: val})
}

// Box is the target of a scalar reference.
type Box struct {
	Value Value
}

// NewRef returns a Ref value pointing at a new Box holding v.
func NewRef(v Value) Value {
	return FromBox(&Box{Value: v})
}

// FromBox returns a Ref value for an existing Box, sharing it.
func FromBox(b *Box) Value {
	if b == nil {
		b = &Box{Value: Null()}
	}
	return Value{kind: RefKind, p: b}
}
