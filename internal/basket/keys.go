package basket

import "strings"

// PairKey is the canonical key of an unordered item pair: A <= B.
// Being a comparable struct, equal keys hash equally in Go maps.
type PairKey struct {
	A, B string
}

// NewPairKey orders the two names lexicographically.
func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

func (k PairKey) String() string { return k.A + " + " + k.B }

// TripletKey is the canonical key of an unordered item triple: A <= B <= C.
type TripletKey struct {
	A, B, C string
}

// NewTripletKey sorts the three names lexicographically.
func NewTripletKey(x, y, z string) TripletKey {
	if y < x {
		x, y = y, x
	}
	if z < y {
		y, z = z, y
		if y < x {
			x, y = y, x
		}
	}
	return TripletKey{A: x, B: y, C: z}
}

// Items returns the names in canonical order.
func (k TripletKey) Items() [3]string { return [3]string{k.A, k.B, k.C} }

func (k TripletKey) String() string {
	return strings.Join([]string{k.A, k.B, k.C}, " + ")
}
