package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/pbkdf2"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/secure"
)

const (
	SealedVersion = 1
	SaltSize      = 32
	KeySize       = 32
	// Iterations is the PBKDF2-SHA256 work factor for new files. Files
	// asking for less are refused.
	Iterations = 100000
)

var (
	ErrSealedFileExists = errors.New("sealed file already exists")
	ErrWrongPassphrase  = errors.New("wrong passphrase or corrupted file")
)

// envelope is the on-disk form of a sealed file. Version and iterations
// are authenticated as additional data.
type envelope struct {
	Version    int    `json:"version"`
	Iterations int    `json:"iterations"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func (e *envelope) header() []byte {
	h := []byte("g2p sealed ")
	h = binary.BigEndian.AppendUint32(h, uint32(e.Version))
	return binary.BigEndian.AppendUint32(h, uint32(e.Iterations))
}

func (e *envelope) aead(passphrase []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(passphrase, e.Salt, e.Iterations, KeySize, sha256.New)
	defer secure.Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// SealedFile is a payload encrypted with AES-256-GCM under a passphrase
// stretched by PBKDF2-SHA256.
type SealedFile struct {
	path string
}

func NewSealedFile(path string) *SealedFile {
	return &SealedFile{path: path}
}

func (s *SealedFile) Path() string {
	return s.path
}

func (s *SealedFile) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Seal encrypts payload to the file. An existing file is only replaced
// when overwrite is set.
func (s *SealedFile) Seal(payload, passphrase []byte, overwrite bool) error {
	if len(passphrase) == 0 {
		return fmt.Errorf("passphrase cannot be empty")
	}
	if !overwrite && s.Exists() {
		return fmt.Errorf("%w: %s", ErrSealedFileExists, s.path)
	}

	env := envelope{
		Version:    SealedVersion,
		Iterations: Iterations,
		Salt:       make([]byte, SaltSize),
	}
	if _, err := io.ReadFull(rand.Reader, env.Salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := env.aead(passphrase)
	if err != nil {
		return err
	}
	env.Nonce = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, env.Nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	env.Ciphertext = gcm.Seal(nil, env.Nonce, payload, env.header())

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal sealed file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return writeAtomic(s.path, data)
}

// Open decrypts the file. The caller owns the returned payload and should
// zero it when done.
func (s *SealedFile) Open(passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sealed file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse sealed file: %w", err)
	}
	switch {
	case env.Version != SealedVersion:
		return nil, fmt.Errorf("unsupported sealed file version %d", env.Version)
	case env.Iterations < Iterations:
		return nil, fmt.Errorf("sealed file asks for %d PBKDF2 iterations, at least %d required", env.Iterations, Iterations)
	case len(env.Salt) != SaltSize:
		return nil, fmt.Errorf("invalid salt length %d", len(env.Salt))
	}

	gcm, err := env.aead(passphrase)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(env.Nonce))
	}

	payload, err := gcm.Open(nil, env.Nonce, env.Ciphertext, env.header())
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return payload, nil
}

// Shred overwrites the file in place with random bytes, syncs it and
// removes it. A missing file is not an error.
func (s *SealedFile) Shred() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY, 0)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s for shredding: %w", s.path, err)
	}

	info, err := f.Stat()
	if err == nil {
		_, err = io.CopyN(f, rand.Reader, info.Size())
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to overwrite %s: %w", s.path, err)
	}

	return os.Remove(s.path)
}

// ShareSet is what a share file holds: encoded shares together with the
// field they were made over.
type ShareSet struct {
	Field     field.Spec `json:"field"`
	Shares    [][]byte   `json:"shares"`
	Threshold int        `json:"threshold"`
	Total     int        `json:"total"`
}

func (set *ShareSet) validate() error {
	if err := set.Field.Validate(); err != nil {
		return fmt.Errorf("stored field is invalid: %w", err)
	}
	if set.Threshold < 2 || set.Threshold > set.Total {
		return fmt.Errorf("stored threshold %d does not fit %d shares", set.Threshold, set.Total)
	}
	if len(set.Shares) < set.Threshold || len(set.Shares) > set.Total {
		return fmt.Errorf("share file holds %d shares, want between %d and %d", len(set.Shares), set.Threshold, set.Total)
	}
	return nil
}

// ShareFile is a SealedFile holding a ShareSet.
type ShareFile struct {
	*SealedFile
}

func NewShareFile(path string) *ShareFile {
	return &ShareFile{SealedFile: NewSealedFile(path)}
}

func (f *ShareFile) Save(set ShareSet, passphrase []byte, overwrite bool) error {
	if err := set.validate(); err != nil {
		return err
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal shares: %w", err)
	}
	defer secure.Zero(data)

	return f.Seal(data, passphrase, overwrite)
}

func (f *ShareFile) Load(passphrase []byte) (*ShareSet, error) {
	data, err := f.Open(passphrase)
	if err != nil {
		return nil, err
	}
	defer secure.Zero(data)

	var set ShareSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse shares: %w", err)
	}
	if err := set.validate(); err != nil {
		return nil, err
	}
	return &set, nil
}
