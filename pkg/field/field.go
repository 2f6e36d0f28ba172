// Package field builds lookup tables for binary finite fields GF(2^p) and
// implements table-driven arithmetic on top of them.
//
// A Field is constructed once, by resolving a modulus and generator and
// building a chunked multiplication table plus an inversion table. After
// construction it is immutable and safe for concurrent use.
//
// Arithmetic is not constant time.
package field

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/Davincible/g2p/pkg/poly"
)

// Field is a constructed GF(2^p) with frozen lookup tables.
type Field struct {
	spec Spec
	plan ChunkPlan
	mask uint32
	mul  *MulTable
	inv  *InvTable
}

type options struct {
	workers     int
	memoryLimit uint64
	logger      *slog.Logger
}

// Option configures field construction.
type Option func(*options)

// WithWorkers sets how many goroutines fill the multiplication table. Zero
// or negative means one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMemoryLimit caps the combined table size in bytes; 0 disables the cap.
func WithMemoryLimit(limit uint64) Option {
	return func(o *options) {
		o.memoryLimit = limit
	}
}

// WithLogger sets the logger used during construction.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{
		workers:     1,
		memoryLimit: DefaultMemoryLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// New resolves GF(2^p) and builds its tables. A zero modulus selects the
// smallest irreducible polynomial of degree p.
func New(name string, p uint, modulus poly.Poly, opts ...Option) (*Field, error) {
	spec, err := Resolve(name, p, modulus)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	return Build(spec, opts...)
}

// Build constructs the tables for an already resolved spec.
func Build(spec Spec, opts ...Option) (*Field, error) {
	o := buildOptions(opts)

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := checkMemory(o.logger, spec, o.memoryLimit); err != nil {
		return nil, err
	}

	plan := PlanChunks(spec.Size())
	o.logger.Debug("Building field tables",
		"field", spec.Name,
		"p", spec.P,
		"modulus", uint64(spec.Modulus),
		"generator", uint64(spec.Generator),
		"parts", plan.Parts,
		"workers", o.workers,
	)

	mul, err := BuildMulTable(spec, plan, o.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to build multiplication table: %w", err)
	}

	return &Field{
		spec: spec,
		plan: plan,
		mask: spec.Mask(),
		mul:  mul,
		inv:  BuildInvTable(spec),
	}, nil
}

// FromTables rebuilds a Field from previously computed tables, checking
// their dimensions, that every entry is an element of the field and that
// every stored inverse really is one.
func FromTables(spec Spec, mulCells, inv []uint32) (*Field, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	plan := PlanChunks(spec.Size())
	if want := plan.Parts * plan.Parts * 256 * 256; len(mulCells) != want {
		return nil, fmt.Errorf("multiplication table has %d cells, want %d", len(mulCells), want)
	}
	if uint64(len(inv)) != spec.Size() {
		return nil, fmt.Errorf("inversion table has %d entries, want %d", len(inv), spec.Size())
	}

	mask := spec.Mask()
	for i, c := range mulCells {
		if c&^mask != 0 {
			return nil, fmt.Errorf("multiplication table cell %d holds %#x, outside %s", i, c, spec.Name)
		}
	}
	for a, v := range inv {
		if v&^mask != 0 {
			return nil, fmt.Errorf("inversion table entry %d holds %#x, outside %s", a, v, spec.Name)
		}
	}

	f := &Field{
		spec: spec,
		plan: plan,
		mask: mask,
		mul:  &MulTable{parts: plan.Parts, cells: append([]uint32(nil), mulCells...)},
		inv:  &InvTable{inv: append([]uint32(nil), inv...)},
	}

	for a := uint64(1); a < spec.Size(); a++ {
		if f.mul.Mul(uint32(a), f.inv.Inv(uint32(a))) != 1 {
			return nil, fmt.Errorf("inversion table entry %d is not an inverse", a)
		}
	}
	return f, nil
}

// Spec returns the resolved field definition.
func (f *Field) Spec() Spec {
	return f.spec
}

// Name returns the declared field name.
func (f *Field) Name() string {
	return f.spec.Name
}

// P returns the field degree.
func (f *Field) P() uint {
	return f.spec.P
}

// Plan returns the chunk plan of the multiplication table.
func (f *Field) Plan() ChunkPlan {
	return f.plan
}

// MulTable returns the read-only multiplication table.
func (f *Field) MulTable() *MulTable {
	return f.mul
}

// InvTable returns the read-only inversion table.
func (f *Field) InvTable() *InvTable {
	return f.inv
}

// Size returns the number of elements.
func (f *Field) Size() uint64 {
	return f.spec.Size()
}

// Modulus returns the reduction polynomial.
func (f *Field) Modulus() poly.Poly {
	return f.spec.Modulus
}

// Mask returns the bit mask of a valid element.
func (f *Field) Mask() uint32 {
	return f.mask
}

func (f *Field) String() string {
	return fmt.Sprintf("%s = GF(2^%d) mod %s", f.spec.Name, f.spec.P, f.spec.Modulus)
}
