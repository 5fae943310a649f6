package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/symcore/internal/config"
)

// ConfigValidation is the payload of config validate.
type ConfigValidation struct {
	Path   string         `json:"path"`
	Valid  bool           `json:"valid"`
	Errors []string       `json:"errors,omitempty"`
	Config *config.Config `json:"config,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect engine configuration",
	}
	cmd.AddCommand(newConfigValidateCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a config file",
		Long: `Validate a YAML, CUE or JSON engine config file.

CUE and JSON files are unified with the built-in schema, so constraint
violations report the offending field. Every problem is listed, not only
the first.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - File could not be read`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(rootOpts, args[0], cmd)
		},
	}
}

func runConfigValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(path); err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, fmt.Sprintf("cannot read config: %v", err), nil)
	}

	cfg, err := config.Load(path)
	if err != nil {
		result := ConfigValidation{Path: path, Errors: splitErrors(err)}
		if f.Format == "json" {
			if err := f.encode(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: ErrCodeConfig, Message: "invalid config"},
			}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(f.Writer, "✗ %s\n", path)
			for _, e := range result.Errors {
				fmt.Fprintf(f.Writer, "  %s\n", e)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("invalid config: %s", path))
	}

	f.VerboseLog("loaded %s", path)
	return f.Success(ConfigValidation{Path: path, Valid: true, Config: &cfg}, fmt.Sprintf("✓ %s is valid", path))
}

// splitErrors flattens errors.Join trees into one message per problem.
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	if next := errors.Unwrap(err); next != nil {
		if _, ok := next.(interface{ Unwrap() []error }); ok {
			return splitErrors(next)
		}
	}
	return []string{err.Error()}
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Long: `Print the config the engine would run with: --config applied over the
defaults, as YAML (or JSON with --format json).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
			}
			if f.Format == "json" {
				return f.Success(cfg, "")
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = f.Writer.Write(data)
			return err
		},
	}
}
