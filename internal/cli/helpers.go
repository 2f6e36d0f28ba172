package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Davincible/g2p/internal/validation"
	"github.com/Davincible/g2p/pkg/config"
	"github.com/Davincible/g2p/pkg/field"
	"github.com/Davincible/g2p/pkg/secure"
)

// env is what most commands need: the loaded config and a registry that
// builds each field at most once per invocation.
type env struct {
	cfg      *config.ConfigManager
	registry *field.Registry
}

func newEnv(cmd *cobra.Command) (*env, error) {
	var (
		cm  *config.ConfigManager
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cm, err = config.NewConfigManagerAt(path)
	} else {
		cm, err = config.NewConfigManager()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cm.GetConfig().UI.UseColor {
		color.NoColor = true
	}

	return &env{
		cfg:      cm,
		registry: cm.NewRegistry(),
	}, nil
}

// declaration interprets a field argument. An argument containing a comma
// is an inline declaration such as "GF1024, 10"; anything else names a
// field from the config. An empty argument selects the configured default.
func (e *env) declaration(arg string) (validation.Declaration, error) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, ",") {
		return validation.ParseDeclaration(arg)
	}

	def := e.cfg.GetConfig().Defaults
	if arg == "" {
		return e.cfg.DefaultDeclaration()
	}

	decl, err := e.cfg.Declaration(arg)
	if err != nil && arg == def.Name {
		return e.cfg.DefaultDeclaration()
	}
	return decl, err
}

// field builds, or fetches from the registry, the field named by arg.
func (e *env) field(arg string) (*field.Field, error) {
	decl, err := e.declaration(arg)
	if err != nil {
		return nil, err
	}
	return e.registry.Get(decl.Name, decl.P, decl.Modulus)
}

// setupColor disables colors when asked to or when stdout is not a
// terminal.
func setupColor(cmd *cobra.Command) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

func jsonMode(cmd *cobra.Command) bool {
	outputJSON, _ := cmd.Flags().GetBool("json")
	return outputJSON
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// parseElement parses an integer literal and rejects values outside f.
func parseElement(f *field.Field, s string) (field.Element, error) {
	v, err := validation.ParseUint(s)
	if err != nil {
		return 0, err
	}
	if v > uint64(f.Mask()) {
		return 0, fmt.Errorf("%s is not an element of %s", s, f.Name())
	}
	return f.Elem(v), nil
}

// readSecret reads a secret from stdin, without echo when stdin is a
// terminal.
func readSecret(cmd *cobra.Command, useStdin bool) ([]byte, error) {
	in := cmd.InOrStdin()

	if useStdin {
		lines, err := readLines(in)
		if err != nil {
			return nil, err
		}
		return []byte(strings.Join(lines, "\n")), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Enter your secret: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		return secret, nil
	}

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	return []byte(strings.TrimSpace(input)), nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// readPassphrase returns flagValue when set, otherwise prompts on the
// terminal. Stdin may carry the secret or shares, so it is never read as a
// passphrase when it is not a terminal.
func readPassphrase(cmd *cobra.Command, flagValue string, confirm bool) ([]byte, error) {
	if flagValue != "" {
		return []byte(flagValue), nil
	}

	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, fmt.Errorf("no passphrase given: use --passphrase or run from a terminal")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Enter passphrase: ")
	pass, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if !confirm {
		return pass, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Confirm passphrase: ")
	again, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	defer secure.Zero(again)

	if !secure.ConstantTimeCompare(pass, again) {
		secure.Zero(pass)
		return nil, fmt.Errorf("passphrases do not match")
	}
	return pass, nil
}
