package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/secure"
	"github.com/Davincible/g2p/pkg/sharing"
	"github.com/Davincible/g2p/pkg/storage"
)

type CombineResult struct {
	Field   string `json:"field"`
	Shares  int    `json:"shares"`
	Hex     string `json:"hex"`
	Text    string `json:"text,omitempty"`
	Deleted string `json:"deleted,omitempty"`
}

func NewCombineCommand() *cobra.Command {
	var (
		fieldArg   string
		outputHex  bool
		outputText bool
		input      string
		passphrase string
		remove     bool
	)

	cmd := &cobra.Command{
		Use:   "combine [share]...",
		Short: "Combine shares to recover a secret",
		Long: `Combine hex encoded shares produced by split, or by HashiCorp Vault's
shamir package when the field is the AES field, to recover the secret.

Shares are taken from the arguments, or read from stdin one per line.
With fewer shares than the threshold the output is unrelated to the secret.`,
		Example: `  g2p combine 8a21...03 77f0...01 c1d2...05

  # Shares from a file, one per line
  g2p combine < shares.txt

  # Shares sealed by split --output, shredding the file once recovered
  g2p combine --input shares.enc --delete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			if input != "" {
				if cmd.Flags().Changed("field") || len(args) > 0 {
					return fmt.Errorf("--input cannot be combined with --field or share arguments")
				}
				file := storage.NewShareFile(input)
				f, shares, err := unsealShares(cmd, e, file, passphrase)
				if err != nil {
					return err
				}
				if !remove {
					file = nil
				}
				return combineAndPrint(cmd, f, shares, outputHex, outputText, file)
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

			var shares [][]byte
			for _, line := range lines {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				data, err := fasthex.DecodeString(line)
				if err != nil {
					return fmt.Errorf("invalid share %d: %w", len(shares)+1, err)
				}
				shares = append(shares, data)
			}

			if remove {
				return fmt.Errorf("--delete needs --input")
			}
			return combineAndPrint(cmd, f, shares, outputHex, outputText, nil)
		},
	}

	cmd.Flags().StringVarP(&fieldArg, "field", "f", "", "Field name or inline declaration (default from config)")
	cmd.Flags().BoolVar(&outputHex, "hex", false, "Print only the secret in hex")
	cmd.Flags().BoolVar(&outputText, "text", false, "Print only the secret as text")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read shares from a file written by split --output")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase for --input (prompted when omitted)")
	cmd.Flags().BoolVar(&remove, "delete", false, "Shred the --input file after a successful recovery")

	return cmd
}

// unsealShares loads a share file and rebuilds the field it was made over.
func unsealShares(cmd *cobra.Command, e *env, file *storage.ShareFile, flagPass string) (*field.Field, [][]byte, error) {
	pass, err := readPassphrase(cmd, flagPass, false)
	if err != nil {
		return nil, nil, err
	}
	defer secure.Zero(pass)

	set, err := file.Load(pass)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load shares: %w", err)
	}

	f, err := e.registry.Get(set.Field.Name, set.Field.P, set.Field.Modulus)
	if err != nil {
		return nil, nil, err
	}
	return f, set.Shares, nil
}

// combineAndPrint recovers the secret and reports it. When shred is not
// nil the share file is destroyed, but only after recovery succeeded.
func combineAndPrint(cmd *cobra.Command, f *field.Field, shares [][]byte, outputHex, outputText bool, shred *storage.ShareFile) error {
	secret, err := sharing.CombineBytes(f, shares)
	if err != nil {
		return err
	}
	defer secure.Zero(secret)

	result := CombineResult{
		Field:  f.Name(),
		Shares: len(shares),
		Hex:    fasthex.EncodeToString(secret),
	}
	if utf8.Valid(secret) {
		result.Text = string(secret)
	}

	if shred != nil {
		if err := shred.Shred(); err != nil {
			return err
		}
		result.Deleted = shred.Path()
		fmt.Fprintf(cmd.ErrOrStderr(), "Shredded %s\n", result.Deleted)
	}

	if jsonMode(cmd) {
		return writeJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	switch {
	case outputHex:
		fmt.Fprintln(out, result.Hex)
	case outputText:
		fmt.Fprintln(out, string(secret))
	default:
		color.New(color.FgGreen, color.Bold).Fprintf(out, "✓ Combined %d shares\n", result.Shares)
		fmt.Fprintf(out, "  Hex:  %s\n", result.Hex)
		if result.Text != "" {
			fmt.Fprintf(out, "  Text: %s\n", result.Text)
		}
	}
	return nil
}
