package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/atmo/internal/value"
	"github.com/roach88/atmo/internal/wiring"
)

// ConvertResult is the output of convert.
type ConvertResult struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Debug  string `json:"debug"`
	Status string `json:"status"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <text>",
		Short: "Convert a value between kinds",
		Long: `Build a value of --kind from text and convert it to --to with the runtime's
conversion rules. A conversion that is not fully supported prints the
constructed value and its status and exits 1.

Example:
  atmo convert --to int 42abc
  atmo convert --kind double --to char 300`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, from, to, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&from, "kind", "string", "kind of the input")
	cmd.Flags().StringVar(&to, "to", "", "target kind (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runConvert(opts *RootOptions, from, to, text string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	target, err := value.ParseKind(to)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --to", err)
	}
	src, err := (&wiring.Literal{Kind: from, Text: text}).Value()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid input", err)
	}
	defer src.Free()

	var dst value.Value
	defer dst.Free()
	convErr := value.CreateConverted(&dst, target, &src)
	status := value.StatusOf(convErr)

	result := ConvertResult{
		Kind:   dst.Kind().String(),
		Value:  display(&dst),
		Debug:  dst.String(),
		Status: status.String(),
	}
	text = result.Debug
	if status != value.StatusSuccess {
		text = fmt.Sprintf("%s [%s]", result.Debug, result.Status)
	}
	if err := formatter.Success(result, text); err != nil {
		return err
	}
	if convErr != nil {
		return WrapExitError(ExitFailure, "conversion incomplete", convErr)
	}
	return nil
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "compare <a> <op> <b>",
		Short: "Compare two values",
		Long: `Build two values of --kind and evaluate "a op b". op is one of
eq ne lt le gt ge (or == != < <= > >=). Prints true or false.

Example:
  atmo compare --kind int 5 gt 3
  atmo compare abc lt abd`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(rootOpts, kind, args, cmd)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "string", "kind of both operands")

	return cmd
}

func runCompare(opts *RootOptions, kind string, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	c, err := value.ParseComparison(args[1])
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid operator", err)
	}
	a, err := (&wiring.Literal{Kind: kind, Text: args[0]}).Value()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid left operand", err)
	}
	defer a.Free()
	b, err := (&wiring.Literal{Kind: kind, Text: args[2]}).Value()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid right operand", err)
	}
	defer b.Free()

	ok, err := value.Compare(&a, &b, c)
	if err != nil {
		_ = formatter.Error(value.StatusOf(err).String(), err.Error(), nil)
		return WrapExitError(ExitFailure, "compare failed", err)
	}
	return formatter.Success(map[string]bool{"result": ok}, fmt.Sprint(ok))
}

func display(v *value.Value) string {
	if v.IsVoid() {
		return ""
	}
	if s, err := v.AsString(); err == nil {
		return s
	}
	return v.String()
}
