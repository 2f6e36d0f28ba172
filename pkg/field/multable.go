package field

import (
	"golang.org/x/sync/errgroup"

	"github.com/Davincible/g2p/pkg/poly"
)

// rowBatch is the number of table rows handed to one goroutine.
const rowBatch = 16

// MulTable holds the products of every pair of shifted byte chunks,
// reduced by the field modulus. Writing x = sum x_i*256^i and
// y = sum y_j*256^j, x*y is the xor of table[i][j][x_i][y_j] over all
// (i, j), because multiplication distributes over field addition.
//
// A MulTable is read-only after BuildMulTable returns.
type MulTable struct {
	parts int
	cells []uint32
}

// BuildMulTable computes the chunked multiplication table for spec.
// Rows are independent, so with workers > 1 they are filled concurrently.
func BuildMulTable(spec Spec, plan ChunkPlan, workers int) (*MulTable, error) {
	t := &MulTable{
		parts: plan.Parts,
		cells: make([]uint32, plan.Parts*plan.Parts*256*256),
	}

	size := spec.Size()
	rows := plan.Parts * plan.Parts * 256

	fillRow := func(row int) {
		left := row / (plan.Parts * 256)
		right := row / 256 % plan.Parts
		a := uint64(row%256) << (ChunkWidth * left)
		if a >= size {
			return
		}

		cells := t.cells[row*256 : (row+1)*256]
		for b := range cells {
			v := uint64(b) << (ChunkWidth * right)
			if v >= size {
				// Entries stay zero: valid elements never set these bits.
				continue
			}
			cells[b] = uint32(poly.Poly(a).MulMod(poly.Poly(v), spec.Modulus))
		}
	}

	if workers <= 1 {
		for row := 0; row < rows; row++ {
			fillRow(row)
		}
		return t, nil
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for start := 0; start < rows; start += rowBatch {
		start := start
		eg.Go(func() error {
			for row := start; row < start+rowBatch && row < rows; row++ {
				fillRow(row)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// Parts returns the number of byte chunks per operand.
func (t *MulTable) Parts() int {
	return t.parts
}

// Len returns the number of cells.
func (t *MulTable) Len() int {
	return len(t.cells)
}

// At returns the reduced product of a<<(8*left) and b<<(8*right).
func (t *MulTable) At(left, right int, a, b byte) uint32 {
	return t.cells[((left*t.parts+right)<<16)|int(a)<<8|int(b)]
}

// Mul multiplies two elements by xor-folding the chunk products. x and y
// must not set bits above the field width.
func (t *MulTable) Mul(x, y uint32) uint32 {
	var r uint32
	for i := 0; i < t.parts; i++ {
		xi := int(byte(x >> (ChunkWidth * i)))
		for j := 0; j < t.parts; j++ {
			yj := int(byte(y >> (ChunkWidth * j)))
			r ^= t.cells[(i*t.parts+j)<<16|xi<<8|yj]
		}
	}
	return r
}

// Cells returns a copy of the table laid out as
// [left][right][a][b], flattened.
func (t *MulTable) Cells() []uint32 {
	return append([]uint32(nil), t.cells...)
}
