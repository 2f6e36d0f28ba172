// Package secure holds helpers for handling secret material.
package secure

import (
	"crypto/subtle"
	"runtime"
)

// Zero overwrites s with zero values. It works on byte slices and on
// slices of field elements alike.
func Zero[T ~uint8 | ~uint16 | ~uint32](s []T) {
	for i := range s {
		s[i] = 0
	}
	runtime.KeepAlive(s)
}

// ConstantTimeCompare reports whether x and y are equal, in time that
// depends only on their lengths.
func ConstantTimeCompare(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}
