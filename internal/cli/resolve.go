package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Davincible/g2p/pkg/field"
)

type SpecResult struct {
	Name          string `json:"name"`
	P             uint   `json:"p"`
	Size          uint64 `json:"size"`
	Modulus       string `json:"modulus"`
	ModulusPoly   string `json:"modulus_poly"`
	Generator     string `json:"generator"`
	GeneratorPoly string `json:"generator_poly"`
	TableBytes    uint64 `json:"table_bytes"`
}

func newSpecResult(spec field.Spec) SpecResult {
	return SpecResult{
		Name:          spec.Name,
		P:             spec.P,
		Size:          spec.Size(),
		Modulus:       fmt.Sprintf("%#x", uint64(spec.Modulus)),
		ModulusPoly:   spec.Modulus.String(),
		Generator:     fmt.Sprintf("%#x", uint64(spec.Generator)),
		GeneratorPoly: spec.Generator.String(),
		TableBytes:    field.EstimateTableBytes(spec.P),
	}
}

func NewResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [field]",
		Short: "Resolve a field's modulus and generator without building tables",
		Long: `Resolve the modulus and generator of a field declaration. When no modulus
is given, the smallest irreducible polynomial of degree p is selected. The
generator is the smallest element whose powers enumerate every nonzero
element.

The field is an inline declaration or the name of a configured field.`,
		Example: `  # Search for a modulus of degree 10
  g2p resolve "GF1024, 10"

  # Check an explicit modulus
  g2p resolve "GF256, 8, modulus: 0x11D"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			decl, err := e.declaration(argOrEmpty(args))
			if err != nil {
				return err
			}

			spec, err := field.Resolve(decl.Name, decl.P, decl.Modulus)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", decl.Name, err)
			}

			result := newSpecResult(spec)
			if jsonMode(cmd) {
				return writeJSON(cmd, result)
			}

			printSpec(cmd, result)
			return nil
		},
	}

	return cmd
}

func printSpec(cmd *cobra.Command, r SpecResult) {
	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintf(out, "%s = GF(2^%d)\n", r.Name, r.P)
	fmt.Fprintf(out, "  Size:       %d\n", r.Size)
	fmt.Fprintf(out, "  Modulus:    %s (%s)\n", r.Modulus, r.ModulusPoly)
	fmt.Fprintf(out, "  Generator:  %s (%s)\n", r.Generator, r.GeneratorPoly)
	fmt.Fprintf(out, "  Tables:     %s\n", formatBytes(r.TableBytes))
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
