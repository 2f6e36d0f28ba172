package sharing

import (
	"bytes"
	"testing"

	vault "github.com/hashicorp/vault/shamir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/poly"
	"github.com/Davincible/g2p/pkg/secure"
)

func newField(t *testing.T, name string, p uint, modulus poly.Poly) *field.Field {
	t.Helper()
	f, err := field.New(name, p, modulus)
	require.NoError(t, err)
	return f
}

func elems(f *field.Field, values ...uint64) []field.Element {
	out := make([]field.Element, len(values))
	for i, v := range values {
		out[i] = f.Elem(v)
	}
	return out
}

func TestSplitAndCombine(t *testing.T) {
	tests := []struct {
		name      string
		p         uint
		modulus   poly.Poly
		secret    []uint64
		parts     int
		threshold int
	}{
		{
			name:      "GF4 2 of 3",
			p:         2,
			secret:    []uint64{1, 2, 3, 0},
			parts:     3,
			threshold: 2,
		},
		{
			name:      "GF16 3 of 5",
			p:         4,
			secret:    []uint64{0xA, 0x0, 0xF, 0x7},
			parts:     5,
			threshold: 3,
		},
		{
			name:      "AES field 5 of 7",
			p:         8,
			modulus:   0x11B,
			secret:    []uint64{0x00, 0x53, 0xCA, 0xFF, 0x01},
			parts:     7,
			threshold: 5,
		},
		{
			name:      "GF1024 4 of 9",
			p:         10,
			secret:    []uint64{555, 444, 1023, 1},
			parts:     9,
			threshold: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newField(t, "F", tt.p, tt.modulus)
			secret := elems(f, tt.secret...)
			config := Config{Parts: tt.parts, Threshold: tt.threshold}

			shares, err := Split(f, secret, config, nil)
			require.NoError(t, err)
			require.Len(t, shares, tt.parts)

			for i, share := range shares {
				assert.Equal(t, f.Elem(uint64(i+1)), share.X)
				assert.Len(t, share.Y, len(secret))
			}

			got, err := Combine(f, shares[:tt.threshold])
			require.NoError(t, err)
			assert.Equal(t, secret, got)

			got, err = Combine(f, shares[tt.parts-tt.threshold:])
			require.NoError(t, err)
			assert.Equal(t, secret, got)

			got, err = Combine(f, shares)
			require.NoError(t, err)
			assert.Equal(t, secret, got)
		})
	}
}

func TestSplitUsesReader(t *testing.T) {
	f := newField(t, "GF256", 8, 0x11B)
	secret := elems(f, 1, 2, 3)
	config := Config{Parts: 4, Threshold: 3}

	seed := bytes.Repeat([]byte{0x5A, 0x13, 0xC7}, 64)
	a, err := Split(f, secret, config, bytes.NewReader(seed))
	require.NoError(t, err)
	b, err := Split(f, secret, config, bytes.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = Split(f, secret, config, bytes.NewReader(nil))
	assert.ErrorContains(t, err, "failed to generate random coefficients")
}

func TestSplitInvalidConfig(t *testing.T) {
	gf2 := newField(t, "GF2", 1, 0)
	_, err := Split(gf2, elems(gf2, 1), Config{Parts: 2, Threshold: 2}, nil)
	assert.ErrorContains(t, err, "parts must be between 2 and 1")

	gf16 := newField(t, "GF16", 4, 0)
	_, err = Split(gf16, elems(gf16, 1), Config{Parts: 16, Threshold: 2}, nil)
	assert.Error(t, err)

	_, err = Split(gf16, elems(gf16, 1), Config{Parts: 3, Threshold: 4}, nil)
	assert.ErrorContains(t, err, "threshold")

	_, err = Split(gf16, nil, Config{Parts: 3, Threshold: 2}, nil)
	assert.ErrorContains(t, err, "secret cannot be empty")
}

func TestCombineErrors(t *testing.T) {
	f := newField(t, "GF16", 4, 0)
	shares, err := Split(f, elems(f, 7, 9), Config{Parts: 3, Threshold: 2}, nil)
	require.NoError(t, err)

	_, err = Combine(f, shares[:1])
	assert.ErrorIs(t, err, ErrNotEnoughShares)

	_, err = Combine(f, []Share{shares[0], shares[0]})
	assert.ErrorIs(t, err, ErrDuplicateShare)

	short := Share{X: shares[1].X, Y: shares[1].Y[:1]}
	_, err = Combine(f, []Share{shares[0], short})
	assert.ErrorContains(t, err, "expected 2")

	_, err = Combine(f, []Share{shares[0], {X: 0, Y: shares[1].Y}})
	assert.ErrorContains(t, err, "x coordinate 0")

	_, err = Combine(f, []Share{shares[0], {X: 2}})
	assert.ErrorContains(t, err, "empty data")
}

func TestShareCodec(t *testing.T) {
	assert.Equal(t, 1, ElementBytes(1))
	assert.Equal(t, 1, ElementBytes(8))
	assert.Equal(t, 2, ElementBytes(9))
	assert.Equal(t, 4, ElementBytes(32))

	f := newField(t, "GF1024", 10, 0)
	share := Share{X: 3, Y: elems(f, 0x3FF, 0x100, 7)}

	data := EncodeShare(f, share)
	assert.Equal(t, []byte{0x03, 0xFF, 0x01, 0x00, 0x00, 0x07, 0x00, 0x03}, data)

	decoded, err := DecodeShare(f, data)
	require.NoError(t, err)
	assert.Equal(t, share, decoded)

	_, err = DecodeShare(f, []byte{0x04, 0x00, 0x00, 0x01})
	assert.ErrorContains(t, err, "out of range")

	_, err = DecodeShare(f, []byte{0x00, 0x01, 0x02})
	assert.ErrorContains(t, err, "invalid share length")

	require.NoError(t, VerifyShare(f, data, 3))
	assert.Error(t, VerifyShare(f, data, 2))
	assert.Error(t, VerifyShare(f, []byte{0, 1, 0, 0}, 1))
}

func TestBytesRoundTrip(t *testing.T) {
	f := newField(t, "GF256", 8, 0x11D)
	secret := []byte("my secret data")

	shares, err := SplitBytes(f, secret, Config{Parts: 5, Threshold: 3})
	require.NoError(t, err)
	for _, s := range shares {
		assert.Len(t, s, len(secret)+1)
	}

	got, err := CombineBytes(f, [][]byte{shares[4], shares[0], shares[2]})
	require.NoError(t, err)
	assert.True(t, secure.ConstantTimeCompare(secret, got))

	gf16 := newField(t, "GF16", 4, 0)
	_, err = SplitBytes(gf16, secret, Config{Parts: 3, Threshold: 2})
	assert.ErrorContains(t, err, "degree 8")
	_, err = CombineBytes(gf16, shares)
	assert.ErrorContains(t, err, "degree 8")
}

func TestVaultInterop(t *testing.T) {
	aes := newField(t, "Rijndael", 8, 0x11B)
	secret := bytes.Repeat([]byte{0x42, 0x00, 0xFF, 0x17}, 8)

	t.Run("vault split, local combine", func(t *testing.T) {
		shares, err := vault.Split(secret, 5, 3)
		require.NoError(t, err)

		got, err := CombineBytes(aes, shares[1:4])
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	})

	t.Run("local split, vault combine", func(t *testing.T) {
		shares, err := SplitBytes(aes, secret, Config{Parts: 5, Threshold: 3})
		require.NoError(t, err)

		got, err := vault.Combine(shares[:3])
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	})

	t.Run("different modulus does not interoperate", func(t *testing.T) {
		other := newField(t, "Other", 8, 0x11D)
		shares, err := SplitBytes(other, secret, Config{Parts: 5, Threshold: 3})
		require.NoError(t, err)

		// With x = 1, 2, 3 every Lagrange weight is 1 in any field, so
		// pick tags whose weights need reduction by the modulus.
		got, err := vault.Combine(shares[2:])
		require.NoError(t, err)
		assert.NotEqual(t, secret, got)
	})
}
