package field

import (
	"fmt"
	"log/slog"
)

const (
	// WarnDegree is the largest degree built without a size warning.
	WarnDegree = 17

	// DefaultMemoryLimit bounds the combined table size of a single field.
	DefaultMemoryLimit uint64 = 1 << 30

	cellBytes = 4
)

// EstimateTableBytes returns the memory taken by the multiplication and
// inversion tables of a degree-p field.
func EstimateTableBytes(p uint) uint64 {
	size := uint64(1) << p
	parts := uint64(CeilLog256(size))
	return parts*parts*256*256*cellBytes + size*cellBytes
}

// checkMemory rejects degrees whose tables exceed limit (0 disables the
// check) and warns about degrees above WarnDegree.
func checkMemory(logger *slog.Logger, spec Spec, limit uint64) error {
	need := EstimateTableBytes(spec.P)
	if limit > 0 && need > limit {
		return fmt.Errorf("%w: GF(2^%d) needs %d bytes, limit is %d", ErrTableTooLarge, spec.P, need, limit)
	}
	if spec.P > WarnDegree {
		logger.Warn("Building large field tables",
			"field", spec.Name,
			"p", spec.P,
			"bytes", need,
		)
	}
	return nil
}
