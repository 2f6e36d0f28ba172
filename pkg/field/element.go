package field

import (
	"fmt"
	"math/bits"
)

// Element is the bit pattern of a field element. It only has meaning
// relative to the Field that produced it.
type Element uint32

// Uint32 returns the underlying representation.
func (e Element) Uint32() uint32 {
	return uint32(e)
}

// Elem converts an integer to an element, masking it to the field width.
func (f *Field) Elem(v uint64) Element {
	return Element(uint32(v) & f.mask)
}

// Zero returns the additive identity.
func (f *Field) Zero() Element {
	return 0
}

// One returns the multiplicative identity.
func (f *Field) One() Element {
	return 1
}

// Generator returns a primitive element: its powers enumerate every
// nonzero element.
func (f *Field) Generator() Element {
	return Element(f.spec.Generator)
}

// Add returns a + b. Like every operation, it masks its operands to the
// field width first.
func (f *Field) Add(a, b Element) Element {
	return (a ^ b) & Element(f.mask)
}

// Sub returns a - b, which in characteristic 2 equals a + b.
func (f *Field) Sub(a, b Element) Element {
	return (a ^ b) & Element(f.mask)
}

// Neg returns -a. Every element is its own additive inverse.
func (f *Field) Neg(a Element) Element {
	return a & Element(f.mask)
}

// Mul returns a * b.
func (f *Field) Mul(a, b Element) Element {
	return Element(f.mul.Mul(uint32(a)&f.mask, uint32(b)&f.mask))
}

// Inv returns the multiplicative inverse of a.
func (f *Field) Inv(a Element) (Element, error) {
	a &= Element(f.mask)
	if a == 0 {
		return 0, fmt.Errorf("%w in %s", ErrDivisionByZero, f.spec.Name)
	}
	return Element(f.inv.Inv(uint32(a))), nil
}

// Div returns a / b, or ErrDivisionByZero when b is zero.
func (f *Field) Div(a, b Element) (Element, error) {
	inv, err := f.Inv(b)
	if err != nil {
		return 0, err
	}
	return f.Mul(a, inv), nil
}

// Pow returns a^n by square-and-multiply, most significant exponent bit
// first. Pow(a, 0) is One for every a, including zero.
func (f *Field) Pow(a Element, n uint64) Element {
	val := f.One()
	for i := bits.Len64(n) - 1; i >= 0; i-- {
		val = f.Mul(val, val)
		if n&(1<<i) != 0 {
			val = f.Mul(val, a)
		}
	}
	return val
}

// Sum folds Add over elems starting from Zero.
func (f *Field) Sum(elems ...Element) Element {
	acc := f.Zero()
	for _, e := range elems {
		acc = f.Add(acc, e)
	}
	return acc
}

// Product folds Mul over elems starting from One.
func (f *Field) Product(elems ...Element) Element {
	acc := f.One()
	for _, e := range elems {
		acc = f.Mul(acc, e)
	}
	return acc
}

// Format renders e the way generated field types print themselves,
// for example "255_GF256".
func (f *Field) Format(e Element) string {
	return fmt.Sprintf("%d_%s", uint32(e), f.spec.Name)
}
