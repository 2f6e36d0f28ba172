package field

import (
	"fmt"
	"sync"

	"github.com/floatdrop/lru"

	"github.com/Davincible/g2p/pkg/poly"
)

// DefaultRegistrySize is the number of built fields a Registry keeps.
const DefaultRegistrySize = 16

// Registry hands out frozen fields by name, building each at most once
// while it stays cached. A name is bound to its first resolved spec for the
// lifetime of the registry, even after the built field is evicted.
type Registry struct {
	mu       sync.Mutex
	declared map[string]Spec
	fields   *lru.LRU[string, *Field]
	opts     []Option
}

// NewRegistry returns a registry caching up to size fields, built with
// opts.
func NewRegistry(size int, opts ...Option) *Registry {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	return &Registry{
		declared: make(map[string]Spec),
		fields:   lru.New[string, *Field](size),
		opts:     opts,
	}
}

// Get returns the field declared as name. Redeclaring a name is fine as
// long as it resolves to the same degree and modulus; otherwise Get fails
// with ErrConflictingDeclaration.
func (r *Registry) Get(name string, p uint, modulus poly.Poly) (*Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.declared[name]
	if !ok {
		f, err := New(name, p, modulus, r.opts...)
		if err != nil {
			return nil, err
		}
		r.declared[name] = f.Spec()
		r.fields.Set(name, f)
		return f, nil
	}

	if err := checkRedeclaration(prev, p, modulus); err != nil {
		return nil, err
	}

	if f := r.fields.Get(name); f != nil {
		return *f, nil
	}

	f, err := Build(prev, r.opts...)
	if err != nil {
		return nil, err
	}
	r.fields.Set(name, f)
	return f, nil
}

func checkRedeclaration(prev Spec, p uint, modulus poly.Poly) error {
	conflict := fmt.Errorf("%w: %s is already declared as GF(2^%d) mod %#x", ErrConflictingDeclaration, prev.Name, prev.P, uint64(prev.Modulus))
	if p != prev.P {
		return conflict
	}
	if modulus == 0 {
		resolved, err := ResolveModulus(p, 0)
		if err != nil {
			return err
		}
		modulus = resolved
	}
	if modulus != prev.Modulus {
		return conflict
	}
	return nil
}

// Len returns the number of cached fields.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fields.Len()
}
