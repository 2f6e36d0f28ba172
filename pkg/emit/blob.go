package emit

import (
	"fmt"

	"github.com/goccy/go-json"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/Davincible/g2p/pkg/field"
)

// BlobVersion is the current table blob format.
const BlobVersion = 1

// Blob is the serialized form of a constructed field: the resolved spec,
// both tables and a digest that LoadBlob checks before trusting them.
type Blob struct {
	Version int             `json:"version"`
	Spec    field.Spec      `json:"spec"`
	Plan    field.ChunkPlan `json:"plan"`
	Mul     []uint32        `json:"mul"`
	Inv     []uint32        `json:"inv"`
	Digest  string          `json:"digest"`
}

// NewBlob captures f's tables.
func NewBlob(f *field.Field) *Blob {
	digest := f.Digest()
	return &Blob{
		Version: BlobVersion,
		Spec:    f.Spec(),
		Plan:    f.Plan(),
		Mul:     f.MulTable().Cells(),
		Inv:     f.InvTable().Values(),
		Digest:  fasthex.EncodeToString(digest[:]),
	}
}

// MarshalBlob serializes f as JSON.
func MarshalBlob(f *field.Field) ([]byte, error) {
	data, err := json.Marshal(NewBlob(f))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blob: %w", err)
	}
	return data, nil
}

// LoadBlob decodes a blob and returns the frozen field it describes. The
// spec is revalidated and the tables are checked against the digest.
func LoadBlob(data []byte) (*field.Field, error) {
	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("failed to parse blob: %w", err)
	}
	if blob.Version != BlobVersion {
		return nil, fmt.Errorf("unsupported blob version %d", blob.Version)
	}

	want, err := fasthex.DecodeString(blob.Digest)
	if err != nil {
		return nil, fmt.Errorf("invalid blob digest: %w", err)
	}

	f, err := field.FromTables(blob.Spec, blob.Mul, blob.Inv)
	if err != nil {
		return nil, fmt.Errorf("invalid blob tables: %w", err)
	}

	got := f.Digest()
	if string(got[:]) != string(want) {
		return nil, fmt.Errorf("blob digest mismatch: got %s, want %s", fasthex.EncodeToString(got[:]), blob.Digest)
	}
	return f, nil
}
