package codec

import (
	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

// Encode returns the CBOR encoding of v.
//
// A NUL byte is written after the encoding, in the returned slice's capacity but outside its length.
// On error no partial output is returned.
func Encode(v value.Value, config *Config) ([]byte, error) {
	c, err := config.copyAndFill()
	if err != nil {
		return nil, err
	}

	e := newEncodeState(c, encio.NewBuffer())
	if c.PreserveReferences {
		e.refs = new(referencer)
		e.counts = make(map[interface{}]int)
		e.count(v, 0)
	}

	if err := e.encode(v); err != nil {
		e.buff.Release()
		e.release()
		return nil, err
	}

	e.buff.Terminate()
	out := e.buff.Bytes()
	e.release()
	return out, nil
}

// encodeState is the state of a single encode call.
type encodeState struct {
	*Config
	buff  *encio.Buffer
	depth int

	// refs is nil unless references are preserved.
	refs *referencer

	// counts is how many times each container is reached in the value graph.
	counts map[interface{}]int
}

func newEncodeState(c *Config, buff *encio.Buffer) *encodeState {
	return &encodeState{
		Config: c,
		buff:   buff,
	}
}

// release forgets the tracker and the buffer; the caller keeps any slice it already took.
func (e *encodeState) release() {
	if e.refs != nil {
		e.refs.reset()
	}
	e.counts = nil
	e.buff = nil
}

// count walks the graph once, counting how often each container is reached.
// A container reached more than once is what gets written as shareable.
func (e *encodeState) count(v value.Value, depth int) {
	if depth > e.MaxDepth {
		// encode reports this
		return
	}

	switch v.Kind() {
	case value.TagKind:
		e.count(v.Tagged(), depth+1)
		return
	case value.RefKind:
		if !e.EncodeScalarRefs {
			return
		}
	case value.ArrayKind, value.MapKind:
	default:
		return
	}

	id := v.Identity()
	e.counts[id]++
	if e.counts[id] > 1 {
		return
	}

	switch v.Kind() {
	case value.ArrayKind:
		for _, item := range v.Array().Items {
			e.count(item, depth+1)
		}
	case value.MapKind:
		for _, p := range v.Map().Pairs {
			e.count(p.Key, depth+1)
			e.count(p.Value, depth+1)
		}
	case value.RefKind:
		e.count(v.Ref().Value, depth+1)
	}
}

func (e *encodeState) encode(v value.Value) error {
	e.depth++
	if e.depth > e.MaxDepth {
		return encio.Errorf(encio.ErrRecursion, "nesting deeper than %v", e.MaxDepth)
	}

	switch v.Kind() {
	case value.NullKind:
		e.buff.WriteByte(encio.Null)

	case value.BoolKind:
		if v.Bool() {
			e.buff.WriteByte(encio.True)
		} else {
			e.buff.WriteByte(encio.False)
		}

	case value.UintKind:
		e.buff.Head(encio.MajorUint, v.Uint())

	case value.NegIntKind:
		e.buff.Head(encio.MajorNegInt, v.Uint())

	case value.FloatKind:
		var scratch [encio.MaxHeadSize]byte
		e.buff.Write(appendFloat(scratch[:0], v.Float()))

	case value.BytesKind, value.TextKind:
		if err := e.encodeString(v); err != nil {
			return err
		}

	case value.ArrayKind:
		if e.refs == nil || e.checkReference(v) {
			items := v.Array().Items
			e.buff.Head(encio.MajorArray, uint64(len(items)))
			for _, item := range items {
				if err := e.encode(item); err != nil {
					return err
				}
			}
		}

	case value.MapKind:
		if e.refs == nil || e.checkReference(v) {
			if err := e.encodeMap(v.Map()); err != nil {
				return err
			}
		}

	case value.TagKind:
		e.buff.Head(encio.MajorTag, v.TagNumber())
		if err := e.encode(v.Tagged()); err != nil {
			return err
		}

	case value.RefKind:
		if !e.EncodeScalarRefs {
			return encio.Errorf(encio.ErrUnrecognized, "scalar reference %v without EncodeScalarRefs", v)
		}
		if e.refs == nil || e.checkReference(v) {
			e.buff.Head(encio.MajorTag, TagIndirection)
			if err := e.encode(v.Ref().Value); err != nil {
				return err
			}
		}

	case value.SharedRefKind:
		e.buff.Head(encio.MajorTag, TagSharedRef)
		e.buff.Head(encio.MajorUint, v.Index())

	default:
		return encio.Errorf(encio.ErrUnrecognized, "cannot encode %v value", v.Kind())
	}

	e.depth--
	return nil
}

// checkReference writes the reference tags for v if it is shared.
// It returns true if v itself still needs to be written.
func (e *encodeState) checkReference(v value.Value) bool {
	id := v.Identity()
	if e.counts[id] < 2 {
		return true
	}

	if index, seen := e.refs.find(id); seen {
		e.buff.Head(encio.MajorTag, TagSharedRef)
		e.buff.Head(encio.MajorUint, index)
		return false
	}

	e.refs.add(v)
	e.buff.Head(encio.MajorTag, TagShareable)
	return true
}

func (e *encodeState) encodeString(v value.Value) error {
	s := v.Text()
	major := encio.MajorBytes
	if v.Kind() == value.TextKind {
		major = encio.MajorText
	}

	switch e.StringMode {
	case StringUnicode:
		if major == encio.MajorBytes {
			s = upgrade(s)
		}
		major = encio.MajorText
	case StringUTF8, StringOctets:
		if major == encio.MajorText {
			var err error
			if s, err = downgrade(s); err != nil {
				return err
			}
		}
		major = encio.MajorText
		if e.StringMode == StringOctets {
			major = encio.MajorBytes
		}
	}

	e.buff.Head(major, uint64(len(s)))
	e.buff.WriteString(s)
	return nil
}

func (e *encodeState) encodeMap(m *value.Map) error {
	pairs := m.Pairs
	e.buff.Head(encio.MajorMap, uint64(len(pairs)))

	if e.Canonical {
		var err error
		if pairs, err = e.sortPairs(pairs); err != nil {
			return err
		}
	}

	for _, p := range pairs {
		if err := e.encode(p.Key); err != nil {
			return err
		}
		if err := e.encode(p.Value); err != nil {
			return err
		}
	}
	return nil
}
