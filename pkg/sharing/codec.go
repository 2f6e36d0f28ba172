package sharing

import (
	"fmt"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/secure"
)

// ElementBytes returns the number of bytes used to encode one element of a
// degree-p field.
func ElementBytes(p uint) int {
	return field.CeilLog256(uint64(1) << p)
}

// EncodeShare serializes a share as its Y elements followed by its X tag,
// each big-endian in ElementBytes(f.P()) bytes. Over GF(2^8) this is the
// layout used by hashicorp/vault/shamir.
func EncodeShare(f *field.Field, share Share) []byte {
	w := ElementBytes(f.P())
	out := make([]byte, 0, (len(share.Y)+1)*w)
	for _, y := range share.Y {
		out = appendElement(out, y, w)
	}
	return appendElement(out, share.X, w)
}

// DecodeShare parses the output of EncodeShare. Values outside the field are
// rejected.
func DecodeShare(f *field.Field, data []byte) (Share, error) {
	w := ElementBytes(f.P())
	if len(data) < 2*w || len(data)%w != 0 {
		return Share{}, fmt.Errorf("invalid share length %d for %s", len(data), f.Name())
	}

	elems := make([]field.Element, len(data)/w)
	for i := range elems {
		var v uint32
		for _, b := range data[i*w : (i+1)*w] {
			v = v<<8 | uint32(b)
		}
		if v&^f.Mask() != 0 {
			return Share{}, fmt.Errorf("share value %#x out of range for %s", v, f.Name())
		}
		elems[i] = field.Element(v)
	}

	last := len(elems) - 1
	return Share{X: elems[last], Y: elems[:last]}, nil
}

func appendElement(out []byte, e field.Element, w int) []byte {
	for i := w - 1; i >= 0; i-- {
		out = append(out, byte(e>>(8*i)))
	}
	return out
}

// SplitBytes splits a byte secret over a degree-8 field, one element per
// byte, and returns the encoded shares.
func SplitBytes(f *field.Field, secret []byte, config Config) ([][]byte, error) {
	if f.P() != 8 {
		return nil, fmt.Errorf("byte secrets need a field of degree 8, %s has degree %d", f.Name(), f.P())
	}

	elems := make([]field.Element, len(secret))
	for i, b := range secret {
		elems[i] = field.Element(b)
	}
	defer secure.Zero(elems)

	shares, err := Split(f, elems, config, nil)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(shares))
	for i, share := range shares {
		out[i] = EncodeShare(f, share)
	}
	return out, nil
}

// CombineBytes reverses SplitBytes. It also accepts shares produced by
// hashicorp/vault/shamir when f is the AES field.
func CombineBytes(f *field.Field, encoded [][]byte) ([]byte, error) {
	if f.P() != 8 {
		return nil, fmt.Errorf("byte secrets need a field of degree 8, %s has degree %d", f.Name(), f.P())
	}

	shares := make([]Share, len(encoded))
	for i, data := range encoded {
		share, err := DecodeShare(f, data)
		if err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		shares[i] = share
	}

	elems, err := Combine(f, shares)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}

	secret := make([]byte, len(elems))
	for i, e := range elems {
		secret[i] = byte(e)
	}
	return secret, nil
}

// VerifyShare checks an encoded share's length against the secret length.
func VerifyShare(f *field.Field, data []byte, secretLen int) error {
	if want := (secretLen + 1) * ElementBytes(f.P()); len(data) != want {
		return fmt.Errorf("invalid share length: expected %d, got %d", want, len(data))
	}
	share, err := DecodeShare(f, data)
	if err != nil {
		return err
	}
	if share.X == 0 {
		return fmt.Errorf("share x coordinate cannot be 0")
	}
	return nil
}
