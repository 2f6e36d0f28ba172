package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	fasthex "github.com/tmthrgd/go-hex"
	"golang.org/x/crypto/blake2b"
)

// ChecksumSuffix is appended to an artifact's file name to form the name
// of its checksum file.
const ChecksumSuffix = ".b2sum"

// ArtifactStore keeps generated artifacts in a directory, each next to a
// BLAKE2b-256 checksum that Load verifies.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{
		dir: dir,
	}
}

// Path returns the file path of the named artifact.
func (s *ArtifactStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	if strings.HasSuffix(name, ChecksumSuffix) {
		return fmt.Errorf("artifact name %q uses the reserved %s suffix", name, ChecksumSuffix)
	}
	return nil
}

func checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return fasthex.EncodeToString(sum[:])
}

// Save writes data atomically, then its checksum.
func (s *ArtifactStore) Save(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := writeAtomic(s.Path(name), data); err != nil {
		return err
	}
	if err := writeAtomic(s.Path(name)+ChecksumSuffix, []byte(checksum(data)+"\n")); err != nil {
		return err
	}

	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Load reads the named artifact and verifies it against its checksum.
func (s *ArtifactStore) Load(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	sum, err := os.ReadFile(s.Path(name) + ChecksumSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to read checksum: %w", err)
	}

	if want := strings.TrimSpace(string(sum)); want != checksum(data) {
		return nil, fmt.Errorf("checksum mismatch for %s", name)
	}

	return data, nil
}

func (s *ArtifactStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Delete removes an artifact and its checksum. Missing files are not an
// error.
func (s *ArtifactStore) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	for _, path := range []string{s.Path(name), s.Path(name) + ChecksumSuffix} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// List returns the names of stored artifacts.
func (s *ArtifactStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ChecksumSuffix) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
