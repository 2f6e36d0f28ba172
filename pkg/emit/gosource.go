// Package emit turns a constructed field into artifacts: Go source for a
// standalone field type, or a JSON blob that can be loaded back without
// rebuilding the tables.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	fasthex "github.com/tmthrgd/go-hex"

	"github.com/Davincible/g2p/pkg/field"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// BackingType returns the smallest unsigned integer type holding an
// element of a degree-p field.
func BackingType(p uint) string {
	switch {
	case p <= 8:
		return "uint8"
	case p <= 16:
		return "uint16"
	default:
		return "uint32"
	}
}

type sourceData struct {
	Package   string
	Type      string
	Backing   string
	Field     string
	P         uint
	Size      uint64
	Mask      string
	Modulus   string
	Generator string
	Digest    string
	Parts     int
	MulTable  string
	InvTable  string
}

// GoSource renders a Go file declaring typeName as an element of f, with
// its tables embedded as package variables.
func GoSource(f *field.Field, pkg, typeName string) ([]byte, error) {
	if !identPattern.MatchString(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}
	if typeName == "" {
		typeName = f.Name()
	}
	if !identPattern.MatchString(typeName) {
		return nil, fmt.Errorf("invalid type name %q", typeName)
	}

	digest := f.Digest()
	spec := f.Spec()
	plan := f.Plan()

	data := sourceData{
		Package:   pkg,
		Type:      typeName,
		Backing:   BackingType(spec.P),
		Field:     f.String(),
		P:         spec.P,
		Size:      spec.Size(),
		Mask:      fmt.Sprintf("%#x", f.Mask()),
		Modulus:   fmt.Sprintf("%#x", uint64(spec.Modulus)),
		Generator: fmt.Sprintf("%#x", uint64(spec.Generator)),
		Digest:    fasthex.EncodeToString(digest[:]),
		Parts:     plan.Parts,
		MulTable:  mulLiteral(f.MulTable().Cells(), plan.Parts),
		InvTable:  listLiteral(f.InvTable().Values()),
	}

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render source: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format source: %w", err)
	}
	return src, nil
}

func mulLiteral(cells []uint32, parts int) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i := 0; i < parts; i++ {
		sb.WriteString("{\n")
		for j := 0; j < parts; j++ {
			sb.WriteString("{\n")
			for a := 0; a < 256; a++ {
				start := ((i*parts+j)*256 + a) * 256
				sb.WriteString(listLiteral(cells[start : start+256]))
				sb.WriteString(",\n")
			}
			sb.WriteString("},\n")
		}
		sb.WriteString("},\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func listLiteral(values []uint32) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, v := range values {
		if i%16 == 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
		sb.WriteString(", ")
	}
	sb.WriteString("\n}")
	return sb.String()
}

var sourceTemplate = template.Must(template.New("field").Parse(`// Code generated by g2p. DO NOT EDIT.
// {{.Field}}
// Table digest: {{.Digest}}

package {{.Package}}

import "fmt"

// {{.Type}} is an element of GF(2^{{.P}}). Arithmetic is not constant time.
type {{.Type}} {{.Backing}}

const (
	// {{.Type}}Size is the number of elements in the field.
	{{.Type}}Size = {{.Size}}
	// {{.Type}}Modulus is the reduction polynomial, one bit per coefficient.
	{{.Type}}Modulus = {{.Modulus}}
	// {{.Type}}Mask selects the bits of a valid element.
	{{.Type}}Mask {{.Type}} = {{.Mask}}

	{{.Type}}Zero      {{.Type}} = 0
	{{.Type}}One       {{.Type}} = 1
	{{.Type}}Generator {{.Type}} = {{.Generator}}
)

var mulTable{{.Type}} = [{{.Parts}}][{{.Parts}}][256][256]{{.Type}}{{.MulTable}}

var invTable{{.Type}} = [{{.Size}}]{{.Type}}{{.InvTable}}

// New{{.Type}} converts v to a field element, masking it to the field width.
func New{{.Type}}(v {{.Backing}}) {{.Type}} {
	return {{.Type}}(v) & {{.Type}}Mask
}

func (a {{.Type}}) Add(b {{.Type}}) {{.Type}} {
	return a ^ b
}

func (a {{.Type}}) Sub(b {{.Type}}) {{.Type}} {
	return a ^ b
}

func (a {{.Type}}) Neg() {{.Type}} {
	return a
}

func (a {{.Type}}) Mul(b {{.Type}}) {{.Type}} {
	a &= {{.Type}}Mask
	b &= {{.Type}}Mask
	var r {{.Type}}
	for i := 0; i < {{.Parts}}; i++ {
		for j := 0; j < {{.Parts}}; j++ {
			r ^= mulTable{{.Type}}[i][j][byte(a>>(8*i))][byte(b>>(8*j))]
		}
	}
	return r
}

// Div returns a / b. It panics if b is zero.
func (a {{.Type}}) Div(b {{.Type}}) {{.Type}} {
	b &= {{.Type}}Mask
	if b == 0 {
		panic("division by 0 in {{.Type}}")
	}
	return a.Mul(invTable{{.Type}}[b])
}

// Pow returns a^n. Pow(0) is {{.Type}}One for every a.
func (a {{.Type}}) Pow(n uint64) {{.Type}} {
	val := {{.Type}}One
	for bit := uint64(1) << 63; bit > 0; bit >>= 1 {
		val = val.Mul(val)
		if n&bit != 0 {
			val = val.Mul(a)
		}
	}
	return val
}

func (a {{.Type}}) String() string {
	return fmt.Sprintf("%d_{{.Type}}", {{.Backing}}(a))
}

// Sum{{.Type}} adds elems, starting from {{.Type}}Zero.
func Sum{{.Type}}(elems ...{{.Type}}) {{.Type}} {
	acc := {{.Type}}Zero
	for _, e := range elems {
		acc = acc.Add(e)
	}
	return acc
}

// Product{{.Type}} multiplies elems, starting from {{.Type}}One.
func Product{{.Type}}(elems ...{{.Type}}) {{.Type}} {
	acc := {{.Type}}One
	for _, e := range elems {
		acc = acc.Mul(e)
	}
	return acc
}
`))
