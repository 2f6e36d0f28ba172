package field

import "github.com/Davincible/g2p/pkg/poly"

// InvTable maps every nonzero element to its multiplicative inverse. Index
// 0 holds 0 and is never consulted; division by zero is rejected before
// any lookup.
type InvTable struct {
	inv []uint32
}

// BuildInvTable computes the inverse of every nonzero element of spec's
// field.
//
// Since the modulus m is irreducible, gcd(a, m) = 1 for every nonzero a,
// and the extended Euclidean algorithm yields x with a*x + m*y = 1, so
// a*x = 1 mod m. Inversion is an involution, so each gcd fills two slots.
func BuildInvTable(spec Spec) *InvTable {
	size := spec.Size()
	inv := make([]uint32, size)

	for a := uint64(1); a < size; a++ {
		if inv[a] != 0 {
			continue
		}
		_, x, _ := poly.ExtendedGCD(poly.Poly(a), spec.Modulus)
		inv[a] = uint32(x)
		inv[x] = uint32(a)
	}
	return &InvTable{inv: inv}
}

// Len returns the number of entries, equal to the field size.
func (t *InvTable) Len() int {
	return len(t.inv)
}

// Inv returns the inverse of a nonzero, in-range element.
func (t *InvTable) Inv(a uint32) uint32 {
	return t.inv[a]
}

// Values returns a copy of the table.
func (t *InvTable) Values() []uint32 {
	return append([]uint32(nil), t.inv...)
}
