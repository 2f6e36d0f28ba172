package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davincible/g2p/internal/validation"
	"github.com/Davincible/g2p/pkg/poly"
)

func TestNewConfigManagerCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g2p", "config.json")

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cm.GetConfig())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	decl, err := cm.DefaultDeclaration()
	require.NoError(t, err)
	assert.Equal(t, validation.Declaration{Name: "GF256", P: 8}, decl)
}

func TestConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	t.Setenv("G2P_CONFIG", path)

	cm, err := NewConfigManager()
	require.NoError(t, err)
	assert.Equal(t, path, cm.Path())

	dir := t.TempDir()
	t.Setenv("G2P_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := getConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "g2p", "config.json"), got)
}

func TestAddAndLoadFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	require.NoError(t, cm.AddField(FieldEntry{Name: "GF256", P: 8, Modulus: "0x11b"}))
	require.NoError(t, cm.AddField(FieldEntry{Name: "GF1024", P: 10}))

	err = cm.AddField(FieldEntry{Name: "GF256", P: 8})
	assert.True(t, validation.IsConfigurationError(err))

	err = cm.AddField(FieldEntry{Name: "Bad", P: 40})
	assert.True(t, validation.IsConfigurationError(err))

	reloaded, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	decls, err := reloaded.Declarations()
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, validation.Declaration{Name: "GF256", P: 8, Modulus: poly.Poly(0x11B)}, decls[0])
	assert.Equal(t, validation.Declaration{Name: "GF1024", P: 10}, decls[1])

	decl, err := reloaded.Declaration("GF1024")
	require.NoError(t, err)
	assert.Equal(t, uint(10), decl.P)

	require.NoError(t, reloaded.RemoveField("GF1024"))
	assert.Error(t, reloaded.RemoveField("GF1024"))
	_, err = reloaded.Declaration("GF1024")
	assert.Error(t, err)
}

func TestDeclarationsRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "fields": [
    {"name": "GF16", "p": 4},
    {"name": "GF16", "p": 4, "modulus": "0b10011"}
  ]
}`), 0600))

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	_, err = cm.Declarations()
	assert.True(t, validation.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "declared twice")

	// Unset keys keep their defaults.
	assert.Equal(t, "gf", cm.GetConfig().Emit.Package)
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewConfigManagerAt(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestRegistryFromConfig(t *testing.T) {
	cm, err := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	f, err := cm.NewRegistry().Get("GF8", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, poly.Poly(0b1011), f.Modulus())
}
