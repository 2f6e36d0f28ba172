package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/secure"
	"github.com/Davincible/g2p/pkg/sharing"
	"github.com/Davincible/g2p/pkg/storage"
)

type SplitResult struct {
	Field     string   `json:"field"`
	Shares    []string `json:"shares,omitempty"`
	Threshold int      `json:"threshold"`
	Total     int      `json:"total"`
	Output    string   `json:"output,omitempty"`
}

func NewSplitCommand() *cobra.Command {
	var (
		fieldArg   string
		parts      int
		threshold  int
		useStdin   bool
		output     string
		passphrase string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into shares over a field of degree 8",
		Long: `Split a secret into shares using Shamir's Secret Sharing over a field of
degree 8, one field element per secret byte. Any threshold shares
reconstruct the secret; fewer reveal nothing about it.

Each share is printed in hex as its data bytes followed by its x coordinate.
Over the AES field (modulus 0x11B, the default GF256) shares are
interchangeable with HashiCorp Vault's shamir package.`,
		Example: `  # Split into 5 shares, any 3 of which recover the secret
  g2p split --parts 5 --threshold 3

  # Split data from stdin
  echo "secret data" | g2p split -n 3 -t 2 --stdin

  # Keep the shares in a passphrase protected file instead of printing them
  g2p split -n 3 -t 2 --output shares.enc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			f, err := e.field(fieldArg)
			if err != nil {
				return err
			}

			config := sharing.Config{Parts: parts, Threshold: threshold}
			if err := config.Validate(f); err != nil {
				return err
			}

			var file *storage.ShareFile
			if output != "" {
				file = storage.NewShareFile(output)
				if file.Exists() && !force {
					return fmt.Errorf("%w: %s (use --force to replace it)", storage.ErrSealedFileExists, output)
				}
			}

			secret, err := readSecret(cmd, useStdin)
			if err != nil {
				return fmt.Errorf("failed to read secret: %w", err)
			}
			if len(secret) == 0 {
				return fmt.Errorf("secret cannot be empty")
			}
			defer secure.Zero(secret)

			shares, err := sharing.SplitBytes(f, secret, config)
			if err != nil {
				return fmt.Errorf("failed to split secret: %w", err)
			}

			result := SplitResult{
				Field:     f.Name(),
				Threshold: threshold,
				Total:     parts,
			}

			if file != nil {
				if err := sealShares(cmd, f.Spec(), shares, config, file, passphrase, force); err != nil {
					return err
				}
				result.Output = output
				if jsonMode(cmd) {
					return writeJSON(cmd, result)
				}
				color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(),
					"✓ Sealed %d shares over %s to %s\n", parts, f.Name(), output)
				return nil
			}

			result.Shares = make([]string, len(shares))
			for i, share := range shares {
				result.Shares[i] = fasthex.EncodeToString(share)
			}

			if jsonMode(cmd) {
				return writeJSON(cmd, result)
			}

			printShares(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fieldArg, "field", "f", "", "Field name or inline declaration (default from config)")
	cmd.Flags().IntVarP(&parts, "parts", "n", 5, "Total number of shares to create")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 3, "Minimum shares needed to reconstruct")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "Read secret from stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the shares to an encrypted file instead of printing them")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase for --output (prompted when omitted)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing --output file")

	return cmd
}

func sealShares(cmd *cobra.Command, spec field.Spec, shares [][]byte, config sharing.Config, file *storage.ShareFile, flagPass string, overwrite bool) error {
	pass, err := readPassphrase(cmd, flagPass, true)
	if err != nil {
		return err
	}
	defer secure.Zero(pass)

	set := storage.ShareSet{
		Field:     spec,
		Shares:    shares,
		Threshold: config.Threshold,
		Total:     config.Parts,
	}
	if err := file.Save(set, pass, overwrite); err != nil {
		return fmt.Errorf("failed to save shares: %w", err)
	}
	return nil
}

func printShares(cmd *cobra.Command, r SplitResult) {
	out := cmd.OutOrStdout()
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)

	yellow.Fprintf(out, "=== SHARES (%s) ===\n", r.Field)
	green.Fprintf(out, "Created %d shares with threshold %d\n\n", r.Total, r.Threshold)

	for i, share := range r.Shares {
		fmt.Fprintf(out, "Share %d:\n  %s\n", i+1, share)
	}

	fmt.Fprintln(out)
	red.Fprintln(out, "⚠️  Store each share in a different secure location.")
}
