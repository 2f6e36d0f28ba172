package field

import (
	"fmt"
	"math/rand/v2"

	"github.com/Davincible/g2p/pkg/poly"
)

// ExhaustiveLimit is the largest field size Verify checks pairwise in full.
const ExhaustiveLimit = 256

// Verify cross-checks the tables against polynomial arithmetic and the
// field axioms. Fields up to ExhaustiveLimit elements have every pair
// checked; larger ones use samples random pairs drawn from seed. Triples
// for associativity and distributivity are always sampled.
func (f *Field) Verify(samples int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	random := func() Element {
		return Element(rng.Uint32() & f.mask)
	}

	if f.Size() <= ExhaustiveLimit {
		for a := uint64(0); a < f.Size(); a++ {
			for b := uint64(0); b < f.Size(); b++ {
				if err := f.checkPair(Element(a), Element(b)); err != nil {
					return err
				}
			}
		}
	} else {
		for i := 0; i < samples; i++ {
			if err := f.checkPair(random(), random()); err != nil {
				return err
			}
		}
	}

	for i := 0; i < samples; i++ {
		if err := f.checkTriple(random(), random(), random()); err != nil {
			return err
		}
	}

	if g := f.Generator(); f.Pow(g, f.Size()-1) != f.One() {
		return fmt.Errorf("%w: generator %s does not have order %d", ErrTableMismatch, f.Format(g), f.Size()-1)
	}
	return nil
}

func (f *Field) checkPair(a, b Element) error {
	got := f.Mul(a, b)
	want := Element(poly.Poly(a).MulMod(poly.Poly(b), f.spec.Modulus))
	if got != want {
		return fmt.Errorf("%w: %s * %s = %s, want %s", ErrTableMismatch, f.Format(a), f.Format(b), f.Format(got), f.Format(want))
	}
	if f.Mul(b, a) != got {
		return fmt.Errorf("%w: multiplication of %s and %s does not commute", ErrTableMismatch, f.Format(a), f.Format(b))
	}
	if a != 0 {
		inv, err := f.Inv(a)
		if err != nil {
			return err
		}
		if f.Mul(a, inv) != f.One() {
			return fmt.Errorf("%w: %s is not the inverse of %s", ErrTableMismatch, f.Format(inv), f.Format(a))
		}
	}
	return nil
}

func (f *Field) checkTriple(a, b, c Element) error {
	if f.Mul(f.Mul(a, b), c) != f.Mul(a, f.Mul(b, c)) {
		return fmt.Errorf("%w: multiplication of %s, %s, %s is not associative", ErrTableMismatch, f.Format(a), f.Format(b), f.Format(c))
	}
	if f.Mul(a, f.Add(b, c)) != f.Add(f.Mul(a, b), f.Mul(a, c)) {
		return fmt.Errorf("%w: multiplication by %s does not distribute over %s + %s", ErrTableMismatch, f.Format(a), f.Format(b), f.Format(c))
	}
	return nil
}
