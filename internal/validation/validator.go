package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/poly"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ConfigurationError reports a malformed field declaration. It is raised
// before any field math runs and is never worth retrying.
type ConfigurationError struct {
	Option string
	Msg    string
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return "invalid declaration: " + e.Msg
	}
	return fmt.Sprintf("invalid declaration: %s: %s", e.Option, e.Msg)
}

func configErr(option, format string, args ...any) error {
	return &ConfigurationError{Option: option, Msg: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is, or wraps, a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Declaration is a request for a field: a name, a degree and optionally an
// explicit modulus (zero when absent).
type Declaration struct {
	Name    string
	P       uint
	Modulus poly.Poly
}

// ParseUint parses an unsigned integer literal in Go syntax: decimal,
// 0b, 0o or 0x prefixed, with optional underscores.
func ParseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty integer literal")
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", s)
	}
	return v, nil
}

// ValidateName checks that a field name can be used as a Go identifier.
func ValidateName(name string) error {
	if name == "" {
		return configErr("name", "name cannot be empty")
	}
	if !identPattern.MatchString(name) {
		return configErr("name", "%q is not a valid identifier", name)
	}
	return nil
}

// ValidateDegree checks that p is a supported field degree.
func ValidateDegree(p uint64) error {
	if p == 0 || p > field.MaxDegree {
		return configErr("p", "must be between 1 and %d (got %d)", field.MaxDegree, p)
	}
	return nil
}

// NewDeclaration validates the parts of a declaration. modulus may be
// empty; otherwise it is an integer literal.
func NewDeclaration(name string, p uint64, modulus string) (Declaration, error) {
	if err := ValidateName(name); err != nil {
		return Declaration{}, err
	}
	if err := ValidateDegree(p); err != nil {
		return Declaration{}, err
	}

	decl := Declaration{Name: name, P: uint(p)}
	if strings.TrimSpace(modulus) != "" {
		m, err := ParseUint(modulus)
		if err != nil {
			return Declaration{}, configErr("modulus", "%v", err)
		}
		if m == 0 {
			return Declaration{}, configErr("modulus", "modulus cannot be zero")
		}
		decl.Modulus = poly.Poly(m)
	}
	return decl, nil
}

// ParseDeclaration parses a textual declaration of the form
//
//	Name, p[, modulus: m][,]
func ParseDeclaration(input string) (Declaration, error) {
	parts := strings.Split(SanitizeInput(input), ",")
	if n := len(parts); n > 1 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}

	if len(parts) < 2 {
		return Declaration{}, configErr("", "expected 'name, p[, modulus: m]'")
	}

	name := strings.TrimSpace(parts[0])
	pStr := strings.TrimSpace(parts[1])
	if pStr == "" {
		return Declaration{}, configErr("p", "missing field degree")
	}
	p, err := ParseUint(pStr)
	if err != nil {
		return Declaration{}, configErr("p", "%v", err)
	}

	var modulus string
	seen := false
	for _, opt := range parts[2:] {
		key, value, ok := strings.Cut(opt, ":")
		key = strings.TrimSpace(key)
		if !ok {
			return Declaration{}, configErr(key, "expected 'option: value'")
		}
		switch key {
		case "modulus":
			if seen {
				return Declaration{}, configErr("modulus", "double declaration of 'modulus'")
			}
			seen = true
			modulus = strings.TrimSpace(value)
			if modulus == "" {
				return Declaration{}, configErr("modulus", "missing value")
			}
		default:
			return Declaration{}, configErr(key, "unknown option, expected 'modulus'")
		}
	}

	return NewDeclaration(name, p, modulus)
}

// SanitizeInput trims the input and joins multi-line declarations.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, " ")
}

// ValidateSplitParams checks share counts for secret sharing over a field
// with the given number of nonzero elements.
func ValidateSplitParams(parts, threshold int, nonzero uint64) error {
	if parts < 2 || uint64(parts) > nonzero {
		return fmt.Errorf("parts must be between 2 and %d (got %d)", nonzero, parts)
	}

	if threshold < 2 || threshold > parts {
		return fmt.Errorf("threshold must be between 2 and %d (got %d)", parts, threshold)
	}

	return nil
}
