package value

import "math"

// During equal, must keep track of container comparisons that are
// in progress. The comparison assumes that all comparisons in progress
// are true when it reencounters them, which is what lets cyclic graphs terminate.
type visit struct {
	a, b interface{}
}

// Equal reports whether a and b are structurally equal.
// Maps are compared as unordered collections of pairs, and NaN equals NaN.
// Aliasing is not compared; a shared container equals an unshared copy of it.
func Equal(a, b Value) bool {
	return equal(a, b, make(map[visit]bool))
}

func equal(a, b Value, visited map[visit]bool) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case Invalid, NullKind:
		return true
	case BoolKind, UintKind, NegIntKind, SharedRefKind:
		return a.n == b.n
	case FloatKind:
		fa, fb := a.Float(), b.Float()
		if math.IsNaN(fa) || math.IsNaN(fb) {
			return math.IsNaN(fa) && math.IsNaN(fb)
		}
		return a.n == b.n
	case BytesKind, TextKind:
		return a.s == b.s
	case TagKind:
		return a.n == b.n && equal(a.Tagged(), b.Tagged(), visited)
	}

	// containers
	if a.p == b.p {
		return true
	}
	v := visit{a.p, b.p}
	if visited[v] {
		return true
	}
	visited[v] = true

	var eq bool
	switch a.kind {
	case ArrayKind:
		eq = equalArray(a.Array(), b.Array(), visited)
	case MapKind:
		eq = equalMap(a.Map(), b.Map(), visited)
	case RefKind:
		eq = equal(a.Ref().Value, b.Ref().Value, visited)
	}

	if !eq {
		delete(visited, v)
	}
	return eq
}

func equalArray(a, b *Array, visited map[visit]bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Items {
		if !equal(a.Items[i], b.Items[i], visited) {
			return false
		}
	}
	return true
}

func equalMap(a, b *Map, visited map[visit]bool) bool {
	if a.Len() != b.Len() {
		return false
	}

	used := make([]bool, b.Len())
next:
	for _, pa := range a.Pairs {
		for j, pb := range b.Pairs {
			if used[j] {
				continue
			}
			if equal(pa.Key, pb.Key, visited) && equal(pa.Value, pb.Value, visited) {
				used[j] = true
				continue next
			}
		}
		return false
	}
	return true
}
