package poly

// IsIrreducible reports whether p has no nontrivial factorization over
// GF(2). Constants, including zero, are not irreducible.
//
// It uses Ben-Or's test: p of degree d is irreducible iff
// gcd(x^(2^i) - x mod p, p) = 1 for every 1 <= i <= d/2.
func (p Poly) IsIrreducible() bool {
	d := p.Degree()
	if d < 1 {
		return false
	}
	if d == 1 {
		return true
	}

	const x = Poly(0b10)
	h := x
	for i := 1; i <= d/2; i++ {
		h = h.MulMod(h, p)
		if GCD(h^x, p) != 1 {
			return false
		}
	}
	return true
}

// IsGenerator reports whether g is a primitive element of GF(2)[x]/(m),
// that is whether the multiplicative order of g mod m is 2^deg(m) - 1.
// m is expected to be irreducible; for a reducible m the result is false.
func (g Poly) IsGenerator(m Poly) bool {
	d := m.Degree()
	if d < 1 || d > 63 || !m.IsIrreducible() {
		return false
	}

	g = g.Mod(m)
	if g == 0 {
		return false
	}

	order := uint64(1)<<d - 1
	if g.ExpMod(order, m) != 1 {
		return false
	}
	for _, q := range primeFactors(order) {
		if g.ExpMod(order/q, m) == 1 {
			return false
		}
	}
	return true
}

// primeFactors returns the distinct prime factors of n in ascending order.
func primeFactors(n uint64) []uint64 {
	var factors []uint64
	for q := uint64(2); q*q <= n; q++ {
		if n%q != 0 {
			continue
		}
		factors = append(factors, q)
		for n%q == 0 {
			n /= q
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}
