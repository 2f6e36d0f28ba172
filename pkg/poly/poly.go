// Package poly implements arithmetic on polynomials over GF(2) encoded as
// bitmasks: bit i of a Poly is the coefficient of x^i.
package poly

import (
	"math/bits"
	"strconv"
	"strings"
)

// Poly is a polynomial over GF(2) of degree at most 63.
type Poly uint64

// Degree returns the index of the highest set bit, or -1 for the zero
// polynomial.
func (p Poly) Degree() int {
	return bits.Len64(uint64(p)) - 1
}

// Add returns p + q, which over GF(2) is the bitwise xor of the two.
func (p Poly) Add(q Poly) Poly {
	return p ^ q
}

// Mul returns the carry-less product of p and q, mod x^64.
func (p Poly) Mul(q Poly) Poly {
	var prod Poly
	for p != 0 && q != 0 {
		if q&1 != 0 {
			prod ^= p
		}
		q >>= 1
		p <<= 1
	}
	return prod
}

// DivMod returns the quotient and remainder of p divided by m. It panics
// if m is zero.
func (p Poly) DivMod(m Poly) (q, r Poly) {
	if m == 0 {
		panic("poly: division by zero polynomial")
	}
	dm := m.Degree()
	r = p
	for {
		dr := r.Degree()
		if dr < dm {
			return q, r
		}
		shift := dr - dm
		q |= 1 << shift
		r ^= m << shift
	}
}

// Mod returns the remainder of p divided by m.
func (p Poly) Mod(m Poly) Poly {
	_, r := p.DivMod(m)
	return r
}

// MulMod returns p * q mod m. Unlike Mul it never overflows, as long as m
// has degree at most 63.
func (p Poly) MulMod(q, m Poly) Poly {
	dm := m.Degree()
	if dm < 0 {
		panic("poly: division by zero polynomial")
	}
	if dm == 0 {
		return 0
	}
	a := p.Mod(m)
	b := q.Mod(m)
	top := Poly(1) << dm

	var r Poly
	for b != 0 {
		if b&1 != 0 {
			r ^= a
		}
		b >>= 1
		a <<= 1
		if a&top != 0 {
			a ^= m
		}
	}
	return r
}

// ExpMod returns p^e mod m.
func (p Poly) ExpMod(e uint64, m Poly) Poly {
	result := Poly(1).Mod(m)
	base := p.Mod(m)
	for e > 0 {
		if e&1 != 0 {
			result = result.MulMod(base, m)
		}
		base = base.MulMod(base, m)
		e >>= 1
	}
	return result
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b Poly) Poly {
	for b != 0 {
		a, b = b, a.Mod(b)
	}
	return a
}

// ExtendedGCD returns (g, x, y) such that a*x + m*y = g, where g is the
// greatest common divisor of a and m. When m is nonzero, x has degree
// below deg(m).
func ExtendedGCD(a, m Poly) (g, x, y Poly) {
	oldR, r := a, m
	oldS, s := Poly(1), Poly(0)
	oldT, t := Poly(0), Poly(1)

	for r != 0 {
		q, rem := oldR.DivMod(r)
		oldR, r = r, rem
		oldS, s = s, oldS^q.Mul(s)
		oldT, t = t, oldT^q.Mul(t)
	}
	return oldR, oldS, oldT
}

// String renders p as a sum of powers of x, highest first.
func (p Poly) String() string {
	if p == 0 {
		return "0"
	}
	var terms []string
	for i := p.Degree(); i >= 0; i-- {
		if p&(1<<i) == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, "1")
		case 1:
			terms = append(terms, "x")
		default:
			terms = append(terms, "x^"+strconv.Itoa(i))
		}
	}
	return strings.Join(terms, " + ")
}
