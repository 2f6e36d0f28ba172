package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	fasthex "github.com/tmthrgd/go-hex"
)

type InfoResult struct {
	SpecResult
	Parts    int    `json:"parts"`
	MulCells int    `json:"mul_cells"`
	InvCells int    `json:"inv_cells"`
	Digest   string `json:"digest"`
}

func NewInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [field]",
		Short: "Build a field and describe its tables",
		Long: `Build the lookup tables of a field and print its parameters, table
dimensions and BLAKE2b-256 table digest. Two builds of the same field always
produce the same digest.`,
		Example: `  g2p info GF256
  g2p info "GF65536, 16" --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			f, err := e.field(argOrEmpty(args))
			if err != nil {
				return err
			}

			digest := f.Digest()
			result := InfoResult{
				SpecResult: newSpecResult(f.Spec()),
				Parts:      f.Plan().Parts,
				MulCells:   f.MulTable().Len(),
				InvCells:   f.InvTable().Len(),
				Digest:     fasthex.EncodeToString(digest[:]),
			}

			if jsonMode(cmd) {
				return writeJSON(cmd, result)
			}

			printSpec(cmd, result.SpecResult)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  Chunks:     %d x 8 bits\n", result.Parts)
			fmt.Fprintf(out, "  Mul table:  %d cells\n", result.MulCells)
			fmt.Fprintf(out, "  Inv table:  %d cells\n", result.InvCells)
			color.New(color.FgYellow).Fprintf(out, "  Digest:     %s\n", result.Digest)
			return nil
		},
	}

	return cmd
}
