package test

import (
	"bytes"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davincible/g2p/internal/cli"
	"github.com/Davincible/g2p/pkg/emit"
	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/storage"
)

// typeCheck parses and type-checks generated source as a standalone
// package.
func typeCheck(t *testing.T, src []byte) *types.Package {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "field.go", src, 0)
	require.NoError(t, err)

	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check(file.Name.Name, fset, []*ast.File{file}, nil)
	require.NoError(t, err)
	return pkg
}

func TestGeneratedSourceTypeChecks(t *testing.T) {
	for _, tc := range []struct {
		name    string
		p       uint
		backing string
	}{
		{"GF2", 1, "uint8"},
		{"GF16", 4, "uint8"},
		{"GF256", 8, "uint8"},
		{"GF1024", 10, "uint16"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := field.New(tc.name, tc.p, 0)
			require.NoError(t, err)

			src, err := emit.GoSource(f, "gf", "")
			require.NoError(t, err)

			pkg := typeCheck(t, src)
			obj := pkg.Scope().Lookup(tc.name)
			require.NotNil(t, obj)
			assert.Equal(t, tc.backing, obj.Type().Underlying().String())

			for _, name := range []string{"New" + tc.name, "Sum" + tc.name, "Product" + tc.name} {
				assert.NotNil(t, pkg.Scope().Lookup(name), name)
			}

			named := obj.Type().(*types.Named)
			methods := map[string]bool{}
			for i := 0; i < named.NumMethods(); i++ {
				methods[named.Method(i).Name()] = true
			}
			for _, m := range []string{"Add", "Sub", "Neg", "Mul", "Div", "Pow", "String"} {
				assert.True(t, methods[m], "missing method %s", m)
			}
		})
	}
}

func TestCLIGenerateThenLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	outDir := filepath.Join(dir, "out")

	root := cli.NewRootCommand("test", nil)
	root.SetArgs([]string{"--config", configPath, "--no-color", "gen", "Rijndael, 8, modulus: 0x11B", "--format", "blob", "-o", outDir, "--json"})
	var out bytes.Buffer
	root.SetOut(&out)
	require.NoError(t, root.Execute())

	var result cli.GenerateResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))

	data, err := storage.NewArtifactStore(outDir).Load("rijndael.json")
	require.NoError(t, err)

	f, err := emit.LoadBlob(data)
	require.NoError(t, err)
	digest := f.Digest()
	assert.Len(t, result.Digest, 2*len(digest))
	assert.Equal(t, f.One(), f.Mul(f.Elem(0x53), f.Elem(0xCA)))
}
