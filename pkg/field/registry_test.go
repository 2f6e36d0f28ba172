package field_test

import (
	"testing"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davincible/g2p/pkg/field"
)

func TestRegistry(t *testing.T) {
	spec.Run(t, "Registry", func(t *testing.T, when spec.G, it spec.S) {
		var r *field.Registry

		it.Before(func() {
			r = field.NewRegistry(2)
		})

		when("a field is declared", func() {
			it("builds it once and hands out the same frozen field", func() {
				a, err := r.Get("GF256", 8, 0x11B)
				require.NoError(t, err)

				b, err := r.Get("GF256", 8, 0x11B)
				require.NoError(t, err)

				assert.Same(t, a, b)
				assert.Equal(t, 1, r.Len())
			})

			it("accepts a redeclaration that resolves to the same field", func() {
				a, err := r.Get("GF8", 3, 0)
				require.NoError(t, err)

				b, err := r.Get("GF8", 3, 0b1011)
				require.NoError(t, err)
				assert.Same(t, a, b)

				c, err := r.Get("GF8", 3, 0)
				require.NoError(t, err)
				assert.Same(t, a, c)
			})
		})

		when("a name is redeclared with other parameters", func() {
			it("fails with a conflicting declaration", func() {
				_, err := r.Get("GF256", 8, 0x11B)
				require.NoError(t, err)

				_, err = r.Get("GF256", 8, 0x11D)
				assert.ErrorIs(t, err, field.ErrConflictingDeclaration)

				_, err = r.Get("GF256", 9, 0)
				assert.ErrorIs(t, err, field.ErrConflictingDeclaration)
			})

			it("reports the resolved modulus of the first declaration", func() {
				_, err := r.Get("GF256", 8, 0)
				require.NoError(t, err)

				_, err = r.Get("GF256", 8, 0x11D)
				assert.ErrorIs(t, err, field.ErrConflictingDeclaration)
				assert.ErrorContains(t, err, "GF256 is already declared as GF(2^8) mod 0x11b")

				_, err = r.Get("Alt", 8, 0x11D)
				require.NoError(t, err)
				_, err = r.Get("Alt", 8, 0)
				assert.ErrorContains(t, err, "Alt is already declared as GF(2^8) mod 0x11d")
			})
		})

		when("the declaration is invalid", func() {
			it("surfaces the construction error and binds nothing", func() {
				_, err := r.Get("Bad", 8, 0x100)
				assert.ErrorIs(t, err, field.ErrInvalidModulus)

				f, err := r.Get("Bad", 4, 0)
				require.NoError(t, err)
				assert.Equal(t, uint64(16), f.Size())
			})
		})

		when("more fields are declared than the cache holds", func() {
			it("evicts the least recently used but keeps the binding", func() {
				first, err := r.Get("A", 2, 0)
				require.NoError(t, err)
				_, err = r.Get("B", 3, 0)
				require.NoError(t, err)
				_, err = r.Get("C", 4, 0)
				require.NoError(t, err)

				assert.Equal(t, 2, r.Len())

				_, err = r.Get("A", 5, 0)
				assert.ErrorIs(t, err, field.ErrConflictingDeclaration)

				a, err := r.Get("A", 2, 0)
				require.NoError(t, err)
				assert.Equal(t, uint64(4), a.Size())
				assert.NotSame(t, first, a)
				assert.Equal(t, first.Digest(), a.Digest())
			})
		})
	}, spec.Report(report.Terminal{}))
}
