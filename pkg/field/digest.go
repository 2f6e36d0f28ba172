package field

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length of a table digest in bytes.
const DigestSize = blake2b.Size256

// Digest returns a BLAKE2b-256 fingerprint of the field definition and
// both tables. Two fields with equal digests compute identical results.
func (f *Field) Digest() [DigestSize]byte {
	return TableDigest(f.spec, f.mul.cells, f.inv.inv)
}

// TableDigest fingerprints a spec and raw tables the same way Digest does.
// The hash is unkeyed: it detects corruption, not deliberate edits.
func TableDigest(spec Spec, mulCells, inv []uint32) [DigestSize]byte {
	h, _ := blake2b.New256(nil)

	var buf [8]byte
	writeUint64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeCells := func(cells []uint32) {
		chunk := make([]byte, 0, 4096)
		for _, c := range cells {
			chunk = binary.LittleEndian.AppendUint32(chunk, c)
			if len(chunk) == cap(chunk) {
				h.Write(chunk)
				chunk = chunk[:0]
			}
		}
		h.Write(chunk)
	}

	writeUint64(uint64(spec.P))
	writeUint64(uint64(spec.Modulus))
	writeUint64(uint64(spec.Generator))
	writeCells(mulCells)
	writeCells(inv)

	var sum [DigestSize]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
