package codec

import (
	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

// referencer tracks shareable values for a single encode or decode call.
// index is the position in references; indexes are not static, and are resolved on every encode and decode.
// for encoding, it ensures a shared container is only written once, with later encounters only writing its index.
// for decoding, it keeps decoded shareable values so indexes read from the input resolve to the same container.
//
// The referencer does not own what it tracks; reset only forgets.
type referencer struct {
	references []value.Value
}

// find returns the index of the value with the given identity.
// Linear scan; shared containers are expected to be few.
func (ref *referencer) find(id interface{}) (index uint64, ok bool) {
	for i, v := range ref.references {
		if v.Identity() == id {
			return uint64(i), true
		}
	}
	return 0, false
}

// add registers v under the next free index.
func (ref *referencer) add(v value.Value) uint64 {
	ref.references = append(ref.references, v)
	return uint64(len(ref.references) - 1)
}

// get resolves index to a registered value.
func (ref *referencer) get(index uint64) (value.Value, error) {
	if index >= uint64(len(ref.references)) {
		return value.Value{}, encio.Errorf(
			encio.ErrDanglingReference,
			"shared reference %v, but only %v shareable values are known",
			index, len(ref.references),
		)
	}
	return ref.references[index], nil
}

// len returns the number of registered values.
func (ref *referencer) len() int {
	return len(ref.references)
}

// reset forgets every tracked value.
func (ref *referencer) reset() {
	for i := range ref.references {
		ref.references[i] = value.Value{}
	}
	ref.references = ref.references[:0]
}
