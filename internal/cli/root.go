package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the g2p command tree. When level is not nil,
// --verbose lowers it to Debug.
func NewRootCommand(version string, level *slog.LevelVar) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "g2p",
		Short: "Table-driven arithmetic over binary finite fields GF(2^p)",
		Long: `g2p builds lookup tables for binary finite fields GF(2^p), 1 <= p <= 32,
and performs arithmetic with them.

A field is declared by a name, a degree p and optionally a modulus:

  GF256, 8
  GF256, 8, modulus: 0b1_0001_1011

Without a modulus the smallest irreducible polynomial of degree p is used.
Fields can also be declared once in the config file and referred to by name.

Features:
- Modulus and generator search with irreducibility checks
- Chunked multiplication and inversion tables
- Go source and JSON table generation with BLAKE2b fingerprints
- Shamir secret sharing over any declared field`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && level != nil {
				level.Set(slog.LevelDebug)
			}
			setupColor(cmd)
		},
	}

	rootCmd.AddCommand(
		NewResolveCommand(),
		NewInfoCommand(),
		NewCalcCommand(),
		NewVerifyCommand(),
		NewGenerateCommand(),
		NewSplitCommand(),
		NewCombineCommand(),
		NewCheckCommand(),
		NewFieldCommand(),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $G2P_CONFIG or ~/.config/g2p/config.json)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	return rootCmd
}
