package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/sharing"
)

type ShareDetails struct {
	Index  int    `json:"index"`
	X      uint32 `json:"x,omitempty"`
	Length int    `json:"length,omitempty"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

type CheckResult struct {
	Field      string         `json:"field"`
	Shares     []ShareDetails `json:"shares"`
	Compatible bool           `json:"compatible"`
	Problems   []string       `json:"problems,omitempty"`
}

// NewCheckCommand creates a command to check share compatibility
func NewCheckCommand() *cobra.Command {
	var fieldArg string

	cmd := &cobra.Command{
		Use:   "check [share]...",
		Short: "Check if shares are compatible for recovery",
		Long: `Decode hex shares and check that they can be combined: every share must
decode in the field, carry a distinct nonzero x coordinate and hide a
secret of the same length.

The threshold is not recorded in a share, so check cannot tell whether
enough shares are present.`,
		Example: `  g2p check 8a21...03 77f0...01

  # Shares from a file, one per line
  g2p check < shares.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			f, err := e.field(fieldArg)
			if err != nil {
				return err
			}

			lines := args
			if len(lines) == 0 {
				lines, err = readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read shares: %w", err)
				}
			}

			var shares []string
			for _, line := range lines {
				if line = strings.TrimSpace(line); line != "" {
					shares = append(shares, line)
				}
			}

			result := checkShares(f, shares)
			if jsonMode(cmd) {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				printCheckResult(cmd, result)
			}

			if !result.Compatible {
				return fmt.Errorf("shares are not compatible")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fieldArg, "field", "f", "", "Field name or inline declaration (default from config)")

	return cmd
}

func checkShares(f *field.Field, shares []string) CheckResult {
	result := CheckResult{
		Field:  f.Name(),
		Shares: make([]ShareDetails, len(shares)),
	}

	seen := map[uint32]int{}
	length := -1
	for i, s := range shares {
		d := ShareDetails{Index: i + 1}

		share, err := decodeHexShare(f, s)
		if err != nil {
			d.Error = err.Error()
			result.Shares[i] = d
			result.Problems = append(result.Problems, fmt.Sprintf("share %d is invalid", i+1))
			continue
		}

		d.X = share.X.Uint32()
		d.Length = len(share.Y)
		d.Valid = true
		result.Shares[i] = d

		if share.X == 0 {
			result.Problems = append(result.Problems, fmt.Sprintf("share %d has x coordinate 0", i+1))
		}
		if prev, ok := seen[d.X]; ok {
			result.Problems = append(result.Problems, fmt.Sprintf("shares %d and %d have the same x coordinate", prev, i+1))
		}
		seen[d.X] = i + 1

		if length >= 0 && d.Length != length {
			result.Problems = append(result.Problems, fmt.Sprintf("share %d hides %d elements, earlier shares hide %d", i+1, d.Length, length))
		}
		if length < 0 {
			length = d.Length
		}
	}

	if len(shares) < 2 {
		result.Problems = append(result.Problems, "at least 2 shares are required")
	}
	result.Compatible = len(result.Problems) == 0
	return result
}

func decodeHexShare(f *field.Field, s string) (sharing.Share, error) {
	data, err := fasthex.DecodeString(s)
	if err != nil {
		return sharing.Share{}, fmt.Errorf("invalid hex: %w", err)
	}
	return sharing.DecodeShare(f, data)
}

func printCheckResult(cmd *cobra.Command, r CheckResult) {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan)

	cyan.Fprintf(out, "Analyzing %d shares over %s...\n\n", len(r.Shares), r.Field)

	for _, d := range r.Shares {
		if d.Valid {
			green.Fprintf(out, "Share %d: ✓ Valid\n", d.Index)
			fmt.Fprintf(out, "  x = %d, %d elements\n", d.X, d.Length)
		} else {
			red.Fprintf(out, "Share %d: ✗ Invalid - %s\n", d.Index, d.Error)
		}
	}

	fmt.Fprintln(out)
	if r.Compatible {
		green.Fprintln(out, "✓ Shares are compatible")
		return
	}
	for _, p := range r.Problems {
		red.Fprintf(out, "✗ %s\n", p)
	}
}
