package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/atmo/internal/wiring"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                     `json:"valid"`
	Name      string                   `json:"name,omitempty"`
	Abilities int                      `json:"abilities"`
	Triggers  int                      `json:"triggers"`
	Errors    []wiring.ValidationError `json:"errors,omitempty"`
	Warnings  []wiring.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <wiring-file>",
		Short: "Check a wiring file without running it",
		Long: `Decode a YAML or CUE wiring file and report every problem: missing or
duplicate ids, unknown ability kinds, bad parameters and dangling trigger
references. Trigger cycles are reported as warnings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	f, err := wiring.LoadUnchecked(path)
	if err != nil {
		_ = formatter.Error("E200", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load wiring", err)
	}

	result := ValidationResult{
		Name:      f.Name,
		Abilities: len(f.Abilities),
		Triggers:  len(f.Triggers),
		Errors:    wiring.Validate(f),
	}
	result.Valid = len(result.Errors) == 0
	if result.Valid {
		result.Warnings = wiring.AnalyzeCycles(f)
	}

	if formatter.JSON() {
		if err := formatter.Success(result, ""); err != nil {
			return err
		}
	} else {
		var b strings.Builder
		if result.Valid {
			fmt.Fprintf(&b, "valid: %s (%d abilities, %d triggers)", displayName(f.Name, path), result.Abilities, result.Triggers)
		} else {
			fmt.Fprintf(&b, "invalid: %s (%d errors)", displayName(f.Name, path), len(result.Errors))
		}
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "\n  %s", e.Error())
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "\n  warning: %s", w.Message)
		}
		if err := formatter.Success(result, b.String()); err != nil {
			return err
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func displayName(name, path string) string {
	if name != "" {
		return name
	}
	return path
}
