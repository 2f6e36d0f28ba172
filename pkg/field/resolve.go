package field

import (
	"fmt"

	"github.com/Davincible/g2p/pkg/poly"
)

// MaxDegree is the largest supported field degree. Elements are stored in
// a uint32.
const MaxDegree = 32

// Spec is a resolved field definition. It is immutable once returned by
// Resolve.
type Spec struct {
	Name      string    `json:"name"`
	P         uint      `json:"p"`
	Modulus   poly.Poly `json:"modulus"`
	Generator poly.Poly `json:"generator"`
}

// Size returns the number of elements, 2^P.
func (s Spec) Size() uint64 {
	return 1 << s.P
}

// Mask returns Size()-1, the bit mask of a valid element.
func (s Spec) Mask() uint32 {
	return uint32(s.Size() - 1)
}

// Validate checks the invariants every table build relies on: P in range,
// an irreducible modulus of degree P and a primitive generator.
func (s Spec) Validate() error {
	if err := checkDegree(s.P); err != nil {
		return err
	}
	if s.Modulus.Degree() != int(s.P) || !s.Modulus.IsIrreducible() {
		return fmt.Errorf("%w: %#x is not an irreducible polynomial of degree %d", ErrInvalidModulus, uint64(s.Modulus), s.P)
	}
	if !s.Generator.IsGenerator(s.Modulus) {
		return fmt.Errorf("%w: %#x does not generate GF(2^%d) under %#x", ErrNoGenerator, uint64(s.Generator), s.P, uint64(s.Modulus))
	}
	return nil
}

func checkDegree(p uint) error {
	if p == 0 || p > MaxDegree {
		return fmt.Errorf("%w: p must be in [1, %d], got %d", ErrUnsupportedDegree, MaxDegree, p)
	}
	return nil
}

// Resolve turns a degree and an optional modulus (zero meaning "search for
// one") into a validated Spec.
func Resolve(name string, p uint, supplied poly.Poly) (Spec, error) {
	modulus, err := ResolveModulus(p, supplied)
	if err != nil {
		return Spec{}, err
	}

	generator, err := ResolveGenerator(modulus)
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{
		Name:      name,
		P:         p,
		Modulus:   modulus,
		Generator: generator,
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// ResolveModulus validates a supplied modulus, or when supplied is zero
// returns the smallest irreducible polynomial of degree exactly p.
func ResolveModulus(p uint, supplied poly.Poly) (poly.Poly, error) {
	if err := checkDegree(p); err != nil {
		return 0, err
	}

	if supplied != 0 {
		if supplied.Degree() != int(p) {
			return 0, fmt.Errorf("%w: %#x has degree %d, want %d", ErrInvalidModulus, uint64(supplied), supplied.Degree(), p)
		}
		if !supplied.IsIrreducible() {
			return 0, fmt.Errorf("%w: %#x is not irreducible", ErrInvalidModulus, uint64(supplied))
		}
		return supplied, nil
	}

	// Every polynomial of degree exactly p lies in [2^p, 2^(p+1)). 2^p
	// itself is x^p and never irreducible for p > 1.
	start := poly.Poly(1)<<p + 1
	end := poly.Poly(1)<<(p+1) - 1
	for m := start; m <= end; m++ {
		if m.IsIrreducible() {
			return m, nil
		}
	}

	// Unreachable: irreducible polynomials exist over GF(2) for every
	// positive degree.
	return 0, fmt.Errorf("%w: degree %d", ErrNoModulus, p)
}

// ResolveGenerator returns the smallest primitive element of the field
// defined by modulus.
func ResolveGenerator(modulus poly.Poly) (poly.Poly, error) {
	d := modulus.Degree()
	if d < 1 || !modulus.IsIrreducible() {
		return 0, fmt.Errorf("%w: %#x is not irreducible", ErrInvalidModulus, uint64(modulus))
	}

	limit := poly.Poly(2) << d
	for g := poly.Poly(1); g < limit; g++ {
		if g.IsGenerator(modulus) {
			return g, nil
		}
	}

	// Unreachable for an irreducible modulus: the multiplicative group of
	// a finite field is cyclic.
	return 0, fmt.Errorf("%w: modulus %#x", ErrNoGenerator, uint64(modulus))
}
