package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Davincible/g2p/internal/validation"
	"github.com/Davincible/g2p/pkg/config"
	"github.com/Davincible/g2p/pkg/field"
)

// NewFieldCommand manages the fields declared in the config file.
func NewFieldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Manage field declarations in the config file",
		Long: `Declare fields once in the config file and refer to them by name in every
other command.`,
		Example: `  # Declare a field, searching for its modulus
  g2p field add "GF1024, 10"

  # Declare the AES field explicitly
  g2p field add "Rijndael, 8, modulus: 0x11B"

  g2p field list
  g2p field remove GF1024`,
	}

	cmd.AddCommand(
		newFieldAddCommand(),
		newFieldListCommand(),
		newFieldRemoveCommand(),
	)

	return cmd
}

func newFieldAddCommand() *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "add <declaration>",
		Short: "Declare a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			decl, err := validation.ParseDeclaration(args[0])
			if err != nil {
				return err
			}

			entry := config.FieldEntry{Name: decl.Name, P: uint64(decl.P)}
			if decl.Modulus != 0 {
				entry.Modulus = fmt.Sprintf("%#x", uint64(decl.Modulus))
			}

			// Resolving up front rejects reducible moduli before they are
			// saved.
			if resolve {
				spec, err := field.Resolve(decl.Name, decl.P, decl.Modulus)
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", decl.Name, err)
				}
				entry.Modulus = fmt.Sprintf("%#x", uint64(spec.Modulus))
			}

			if err := e.cfg.AddField(entry); err != nil {
				return err
			}

			if jsonMode(cmd) {
				return writeJSON(cmd, entry)
			}
			color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "✓ Declared %s\n", entry.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolve", true, "Resolve the modulus now and store it")

	return cmd
}

func newFieldListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			entries := e.cfg.GetConfig().Fields
			if jsonMode(cmd) {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No fields declared.")
				return nil
			}

			cyan := color.New(color.FgCyan, color.Bold)
			for _, entry := range entries {
				cyan.Fprintf(out, "%s", entry.Name)
				if entry.Modulus == "" {
					fmt.Fprintf(out, "  GF(2^%d)\n", entry.P)
				} else {
					fmt.Fprintf(out, "  GF(2^%d) mod %s\n", entry.P, entry.Modulus)
				}
			}
			return nil
		},
	}
}

func newFieldRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a field declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			if err := e.cfg.RemoveField(args[0]); err != nil {
				return err
			}

			color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
			return nil
		},
	}
}
