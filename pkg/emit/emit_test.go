package emit

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/poly"
)

func newField(t *testing.T, name string, p uint, modulus poly.Poly) *field.Field {
	t.Helper()
	f, err := field.New(name, p, modulus)
	require.NoError(t, err)
	return f
}

func TestBackingType(t *testing.T) {
	assert.Equal(t, "uint8", BackingType(1))
	assert.Equal(t, "uint8", BackingType(8))
	assert.Equal(t, "uint16", BackingType(9))
	assert.Equal(t, "uint16", BackingType(16))
	assert.Equal(t, "uint32", BackingType(17))
	assert.Equal(t, "uint32", BackingType(32))
}

func TestGoSource(t *testing.T) {
	f := newField(t, "GF16", 4, 0b10011)

	src, err := GoSource(f, "gf", "")
	require.NoError(t, err)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "gf16.go", src, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "gf", file.Name.Name)

	decls := map[string]bool{}
	ast.Inspect(file, func(n ast.Node) bool {
		switch d := n.(type) {
		case *ast.FuncDecl:
			decls[d.Name.Name] = true
		case *ast.TypeSpec:
			decls[d.Name.Name] = true
		case *ast.ValueSpec:
			for _, name := range d.Names {
				decls[name.Name] = true
			}
		}
		return true
	})

	for _, want := range []string{
		"GF16", "GF16Size", "GF16Modulus", "GF16Mask", "GF16Zero", "GF16One", "GF16Generator",
		"mulTableGF16", "invTableGF16", "NewGF16", "Add", "Sub", "Neg", "Mul", "Div", "Pow",
		"String", "SumGF16", "ProductGF16",
	} {
		assert.True(t, decls[want], "missing declaration %s", want)
	}

	text := string(src)
	assert.True(t, strings.HasPrefix(text, "// Code generated by g2p. DO NOT EDIT."))
	assert.Contains(t, text, "type GF16 uint8")
	assert.Regexp(t, `GF16Modulus\s+= 0x13\n`, text)
	assert.Regexp(t, `GF16Generator\s+GF16\s+= 0x2\n`, text)
	assert.Contains(t, text, "[1][1][256][256]GF16")
	assert.Contains(t, text, "[16]GF16")
	assert.Contains(t, text, `panic("division by 0 in GF16")`)
}

func TestGoSourceWideField(t *testing.T) {
	f := newField(t, "GF1024", 10, 0b100_0000_1001)

	src, err := GoSource(f, "tables", "Elem")
	require.NoError(t, err)

	text := string(src)
	assert.Contains(t, text, "type Elem uint16")
	assert.Contains(t, text, "[2][2][256][256]Elem")
	assert.Contains(t, text, "[1024]Elem")
	assert.Regexp(t, `ElemMask\s+Elem\s+= 0x3ff\n`, text)

	_, err = parser.ParseFile(token.NewFileSet(), "elem.go", src, 0)
	require.NoError(t, err)
}

func TestGoSourceRejectsBadNames(t *testing.T) {
	f := newField(t, "GF4", 2, 0)

	_, err := GoSource(f, "my-pkg", "")
	assert.Error(t, err)

	_, err = GoSource(f, "gf", "9lives")
	assert.Error(t, err)
}

func TestBlobRoundTrip(t *testing.T) {
	f := newField(t, "GF256", 8, 0x11B)

	data, err := MarshalBlob(f)
	require.NoError(t, err)

	g, err := LoadBlob(data)
	require.NoError(t, err)

	assert.Equal(t, f.Spec(), g.Spec())
	assert.Equal(t, f.Digest(), g.Digest())
	assert.Equal(t, g.One(), g.Mul(g.Elem(0x53), g.Elem(0xCA)))
}

func TestLoadBlobDetectsTampering(t *testing.T) {
	f := newField(t, "GF16", 4, 0b10011)

	tamper := func(mut func(b *Blob)) []byte {
		b := NewBlob(f)
		mut(b)
		data, err := json.Marshal(b)
		require.NoError(t, err)
		return data
	}

	_, err := LoadBlob(tamper(func(b *Blob) { b.Mul[300] ^= 1 }))
	assert.ErrorContains(t, err, "digest mismatch")

	_, err = LoadBlob(tamper(func(b *Blob) { b.Inv[3], b.Inv[5] = b.Inv[5], b.Inv[3] }))
	assert.ErrorContains(t, err, "not an inverse")

	_, err = LoadBlob(tamper(func(b *Blob) { b.Version = 99 }))
	assert.ErrorContains(t, err, "unsupported blob version")

	_, err = LoadBlob(tamper(func(b *Blob) { b.Digest = "zz" }))
	assert.ErrorContains(t, err, "invalid blob digest")

	_, err = LoadBlob(tamper(func(b *Blob) { b.Spec.Modulus = 0b10101 }))
	assert.ErrorIs(t, err, field.ErrInvalidModulus)

	_, err = LoadBlob([]byte("{"))
	assert.ErrorContains(t, err, "failed to parse blob")
}

func TestLoadBlobRejectsOutOfRangeCells(t *testing.T) {
	f := newField(t, "Rijndael", 8, 0x11B)

	b := NewBlob(f)
	b.Mul[0x53<<8|0x02] = 0x1FFFF
	digest := field.TableDigest(b.Spec, b.Mul, b.Inv)
	b.Digest = fasthex.EncodeToString(digest[:])

	data, err := json.Marshal(b)
	require.NoError(t, err)

	_, err = LoadBlob(data)
	assert.ErrorContains(t, err, "invalid blob tables")
	assert.ErrorContains(t, err, "outside Rijndael")
}
