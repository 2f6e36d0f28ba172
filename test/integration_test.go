package test

import (
	"bytes"
	"path/filepath"
	"testing"

	vault "github.com/hashicorp/vault/shamir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davincible/g2p/pkg/config"
	"github.com/Davincible/g2p/pkg/emit"
	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/sharing"
	"github.com/Davincible/g2p/pkg/storage"
)

func TestFullWorkflow(t *testing.T) {
	dir := t.TempDir()

	cm, err := config.NewConfigManagerAt(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	require.NoError(t, cm.AddField(config.FieldEntry{Name: "Rijndael", P: 8, Modulus: "0b1_0001_1011"}))
	require.NoError(t, cm.AddField(config.FieldEntry{Name: "GF1024", P: 10}))

	decls, err := cm.Declarations()
	require.NoError(t, err)
	require.Len(t, decls, 2)

	registry := cm.NewRegistry()
	store := storage.NewArtifactStore(filepath.Join(dir, "artifacts"))

	for _, d := range decls {
		f, err := registry.Get(d.Name, d.P, d.Modulus)
		require.NoError(t, err)

		blob, err := emit.MarshalBlob(f)
		require.NoError(t, err)
		require.NoError(t, store.Save(d.Name+".json", blob))

		data, err := store.Load(d.Name + ".json")
		require.NoError(t, err)
		loaded, err := emit.LoadBlob(data)
		require.NoError(t, err)

		assert.Equal(t, f.Spec(), loaded.Spec())
		assert.Equal(t, f.Digest(), loaded.Digest())
		require.NoError(t, loaded.Verify(1000, 42))
	}

	// The AES modulus is also the smallest irreducible of degree 8, so
	// leaving it out names the same field.
	aes, err := registry.Get("Rijndael", 8, 0)
	require.NoError(t, err)
	assert.Equal(t, aes.One(), aes.Mul(aes.Elem(0x53), aes.Elem(0xCA)))

	gf1024, err := registry.Get("GF1024", 10, 0x409)
	require.NoError(t, err)
	q, err := gf1024.Div(gf1024.Elem(765), gf1024.Elem(444))
	require.NoError(t, err)
	assert.Equal(t, gf1024.Elem(555), q)

	// A second declaration of the same name must agree with the first.
	_, err = registry.Get("GF1024", 10, 0x40F)
	assert.ErrorIs(t, err, field.ErrConflictingDeclaration)
}

func TestSharingOverLoadedField(t *testing.T) {
	f, err := field.New("Rijndael", 8, 0x11B)
	require.NoError(t, err)

	blob, err := emit.MarshalBlob(f)
	require.NoError(t, err)
	loaded, err := emit.LoadBlob(blob)
	require.NoError(t, err)

	secret := []byte("test secret for multiple combinations")
	shares, err := sharing.SplitBytes(loaded, secret, sharing.Config{Parts: 7, Threshold: 4})
	require.NoError(t, err)

	combinations := [][]int{
		{0, 1, 2, 3},
		{3, 4, 5, 6},
		{0, 2, 4, 6},
		{1, 3, 5, 6},
		{0, 1, 5, 6},
	}

	for _, combo := range combinations {
		selected := make([][]byte, len(combo))
		for i, idx := range combo {
			selected[i] = shares[idx]
		}

		got, err := sharing.CombineBytes(f, selected)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(secret, got), "combination %v", combo)

		got, err = vault.Combine(selected)
		require.NoError(t, err)
		assert.Equal(t, secret, got, "vault combination %v", combo)
	}
}

func TestSharingOverWideField(t *testing.T) {
	f, err := field.New("GF65536", 16, 0, field.WithWorkers(0))
	require.NoError(t, err)

	secret := []field.Element{f.Elem(0xBEEF), f.Elem(0), f.Elem(0xFFFF), f.Elem(1)}
	shares, err := sharing.Split(f, secret, sharing.Config{Parts: 10, Threshold: 6}, nil)
	require.NoError(t, err)

	encoded := make([][]byte, len(shares))
	for i, s := range shares {
		encoded[i] = sharing.EncodeShare(f, s)
		require.NoError(t, sharing.VerifyShare(f, encoded[i], len(secret)))
	}

	var subset []sharing.Share
	for _, data := range encoded[4:] {
		s, err := sharing.DecodeShare(f, data)
		require.NoError(t, err)
		subset = append(subset, s)
	}

	got, err := sharing.Combine(f, subset)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}
