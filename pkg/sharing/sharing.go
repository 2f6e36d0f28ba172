// Package sharing implements Shamir's secret sharing over any field built
// by package field.
package sharing

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Davincible/g2p/internal/validation"
	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/secure"
)

var (
	ErrNotEnoughShares = errors.New("at least 2 shares are required for reconstruction")
	ErrDuplicateShare  = errors.New("duplicate share x coordinate")
)

// Share is one evaluation of the random sharing polynomials: Y[k] is the
// polynomial hiding secret element k, evaluated at X.
type Share struct {
	X field.Element
	Y []field.Element
}

type Config struct {
	Parts     int
	Threshold int
}

// Validate checks the config against f: every share needs its own
// nonzero x coordinate.
func (c Config) Validate(f *field.Field) error {
	return validation.ValidateSplitParams(c.Parts, c.Threshold, f.Size()-1)
}

// Split shares secret so that any config.Threshold of the returned shares
// reconstruct it. Share i is evaluated at x = i+1. Random coefficients are
// read from rnd, or crypto/rand when rnd is nil.
func Split(f *field.Field, secret []field.Element, config Config, rnd io.Reader) ([]Share, error) {
	if err := config.Validate(f); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret cannot be empty")
	}
	if rnd == nil {
		rnd = rand.Reader
	}

	shares := make([]Share, config.Parts)
	for i := range shares {
		shares[i] = Share{
			X: f.Elem(uint64(i + 1)),
			Y: make([]field.Element, len(secret)),
		}
	}

	coeffs := make([]field.Element, config.Threshold)
	defer secure.Zero(coeffs)

	buf := make([]byte, 4*(config.Threshold-1))
	for k, s := range secret {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return nil, fmt.Errorf("failed to generate random coefficients: %w", err)
		}
		coeffs[0] = f.Elem(uint64(s))
		for j := 1; j < config.Threshold; j++ {
			coeffs[j] = f.Elem(uint64(binary.LittleEndian.Uint32(buf[4*(j-1):])))
		}

		for i := range shares {
			shares[i].Y[k] = evaluate(f, coeffs, shares[i].X)
		}
	}
	secure.Zero(buf)

	return shares, nil
}

// evaluate computes the polynomial with the given coefficients, lowest
// degree first, at x using Horner's rule.
func evaluate(f *field.Field, coeffs []field.Element, x field.Element) field.Element {
	acc := f.Zero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = f.Add(f.Mul(acc, x), coeffs[i])
	}
	return acc
}

// Combine reconstructs the secret by Lagrange interpolation at zero. With
// fewer shares than the split threshold the result is unrelated noise.
func Combine(f *field.Field, shares []Share) ([]field.Element, error) {
	if len(shares) < 2 {
		return nil, ErrNotEnoughShares
	}

	n := len(shares[0].Y)
	seen := make(map[field.Element]bool, len(shares))
	for i, share := range shares {
		if len(share.Y) == 0 {
			return nil, fmt.Errorf("share %d has empty data", i+1)
		}
		if len(share.Y) != n {
			return nil, fmt.Errorf("share %d has %d elements, expected %d", i+1, len(share.Y), n)
		}
		x := f.Elem(uint64(share.X))
		if x == f.Zero() {
			return nil, fmt.Errorf("share %d has x coordinate 0", i+1)
		}
		if seen[x] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShare, f.Format(x))
		}
		seen[x] = true
	}

	// basis[i] = prod_{j != i} x_j / (x_j - x_i), the Lagrange basis
	// polynomial of share i evaluated at 0.
	basis := make([]field.Element, len(shares))
	for i := range shares {
		num, den := f.One(), f.One()
		for j := range shares {
			if i == j {
				continue
			}
			num = f.Mul(num, shares[j].X)
			den = f.Mul(den, f.Sub(shares[j].X, shares[i].X))
		}
		b, err := f.Div(num, den)
		if err != nil {
			return nil, fmt.Errorf("failed to interpolate: %w", err)
		}
		basis[i] = b
	}

	secret := make([]field.Element, n)
	for k := range secret {
		terms := make([]field.Element, len(shares))
		for i, share := range shares {
			terms[i] = f.Mul(share.Y[k], basis[i])
		}
		secret[k] = f.Sum(terms...)
	}
	return secret, nil
}
