package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atmo/internal/core"
)

const doubleWiring = `
name: doubler
abilities:
  - id: 1
    name: double
    kind: operate
    op: mul
    operand: 2
    triggers: [1]
  - id: 2
    name: show
    kind: print
triggers:
  - id: 1
    name: double.out
    targets: [2]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "atmo", cmd.Use)

	for _, name := range []string{"run", "validate", "trace", "convert", "compare"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestRootCommand_RejectsFormat(t *testing.T) {
	_, _, err := execute(NewRootCommand(), "--format", "xml", "compare", "1", "eq", "1")
	assert.ErrorContains(t, err, "invalid format")
}

func TestOutputFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, f.Success(map[string]int{"n": 1}, "ignored"))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	buf.Reset()
	require.NoError(t, f.Error("E001", "broken", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E001", resp.Error.Code)

	buf.Reset()
	text := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, text.Error("E002", "nope", nil))
	assert.Equal(t, "Error [E002]: nope\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}

func runOpts(format string) *RunOptions {
	return &RunOptions{
		RootOptions: &RootOptions{Format: format},
		Ticks:       1,
		Inject:      []string{"1=int:21"},
		RunIDs:      core.NewFixedGenerator("run-1"),
	}
}

func runDirect(t *testing.T, opts *RunOptions, path string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	err := runWiring(opts, path, cmd)
	return out.String(), errOut.String(), err
}

func TestRun_TicksWithInjection(t *testing.T) {
	path := writeFile(t, "doubler.yaml", doubleWiring)
	opts := runOpts("text")
	opts.Trace = true

	out, errOut, err := runDirect(t, opts, path)
	require.NoError(t, err)

	assert.Contains(t, errOut, "show: 42")
	assert.Contains(t, out, `ability double(1) depth=1 int:"21"`)
	assert.Contains(t, out, `ability show(2) depth=2 int:"42"`)
	assert.Contains(t, out, "run run-1: 1 ticks, 1 abilities, 0 callbacks, 0 failures")
}

func TestRun_JSONSummary(t *testing.T) {
	path := writeFile(t, "doubler.yaml", doubleWiring)
	opts := runOpts("json")
	opts.Ticks = 2

	out, _, err := runDirect(t, opts, path)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, RunSummary{RunID: "run-1", Ticks: 2, Abilities: 1}, resp.Data)
}

func TestRun_UnknownAbilityCountsFailure(t *testing.T) {
	path := writeFile(t, "doubler.yaml", doubleWiring)
	opts := runOpts("json")
	opts.Inject = []string{"99"}

	out, _, err := runDirect(t, opts, path)
	require.NoError(t, err)
	assert.Contains(t, out, `"failures":1`)
}

func TestRun_JournalThenTrace(t *testing.T) {
	path := writeFile(t, "doubler.yaml", doubleWiring)
	db := filepath.Join(t.TempDir(), "atmo.db")
	opts := runOpts("text")
	opts.Journal = db

	_, _, err := runDirect(t, opts, path)
	require.NoError(t, err)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--journal", db)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "events")

	out, _, err = execute(NewTraceCommand(&RootOptions{Format: "text"}), "--journal", db, "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "ability double(1)")
	assert.Contains(t, out, "tick_end abilities=1")

	out, _, err = execute(NewTraceCommand(&RootOptions{Format: "text"}), "--journal", db, "--jsonl", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, `{"event":"tick_start","seq":1,"step":1}`)

	out, _, err = execute(NewTraceCommand(&RootOptions{Format: "text"}), "--journal", db, "--event", "ability", "--id", "1", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "ability double(1)")
	assert.NotContains(t, out, "tick_start")

	_, _, err = execute(NewTraceCommand(&RootOptions{Format: "text"}), "--journal", db, "missing")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRun_BadInputs(t *testing.T) {
	path := writeFile(t, "doubler.yaml", doubleWiring)

	opts := runOpts("text")
	opts.Inject = []string{"x=int:1"}
	_, _, err := runDirect(t, opts, path)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	opts = runOpts("text")
	opts.Inject = []string{"1=int"}
	_, _, err = runDirect(t, opts, path)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = runDirect(t, runOpts("text"), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_RequiresWiringArg(t *testing.T) {
	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, "ok.yaml", doubleWiring)
		out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
		require.NoError(t, err)
		assert.Equal(t, "valid: doubler (2 abilities, 1 triggers)\n", out)
	})

	t.Run("cycle warning", func(t *testing.T) {
		path := writeFile(t, "loop.yaml", `
name: loop
abilities:
  - {id: 1, name: again, kind: passthrough, triggers: [1]}
triggers:
  - {id: 1, name: again.out, targets: [1]}
`)
		out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
		require.NoError(t, err)
		assert.Contains(t, out, "warning: trigger cycle: again(1) -> again(1)")
	})

	t.Run("invalid", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", `
name: bad
abilities:
  - {id: 1, name: a, kind: teleport}
`)
		out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "invalid: bad (1 errors)")
		assert.Contains(t, out, "[E204]")
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "ok.yaml", doubleWiring)
		out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
		require.NoError(t, err)
		assert.Contains(t, out, `"valid":true`)
	})

	t.Run("unreadable", func(t *testing.T) {
		_, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		code int
	}{
		{"string prefix to int", []string{"--to", "int", "42abc"}, "Int(42)\n", ExitSuccess},
		{"double to char wraps", []string{"--kind", "double", "--to", "char", "300"}, "Char('-')\n", ExitSuccess},
		{"unsupported", []string{"--to", "vector3f", "abc"}, "Vector3F(0, 0, 0) [MISSING_SUPPORT]\n", ExitFailure},
		{"bad target", []string{"--to", "quaternion", "1"}, "", ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(NewConvertCommand(&RootOptions{Format: "text"}), tt.args...)
			assert.Equal(t, tt.code, GetExitCode(err))
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestConvert_JSON(t *testing.T) {
	out, _, err := execute(NewConvertCommand(&RootOptions{Format: "json"}), "--kind", "float", "--to", "string", "2.5")
	require.NoError(t, err)

	var resp struct {
		Data ConvertResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ConvertResult{Kind: "string", Value: "2.50", Debug: `String("2.50")`, Status: "SUCCESS"}, resp.Data)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		code int
	}{
		{"int gt", []string{"--kind", "int", "5", "gt", "3"}, "true\n", ExitSuccess},
		{"float le symbol", []string{"--kind", "float", "1.5", "<=", "1.25"}, "false\n", ExitSuccess},
		{"string eq", []string{"abc", "==", "abc"}, "true\n", ExitSuccess},
		{"bad operator", []string{"1", "~", "2"}, "", ExitCommandError},
		{"not comparable", []string{"--kind", "vector3f", "1", "eq", "1"}, "Error [FAIL]", ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(NewCompareCommand(&RootOptions{Format: "text"}), tt.args...)
			assert.Equal(t, tt.code, GetExitCode(err))
			if tt.want != "" {
				assert.Contains(t, out, tt.want)
			}
		})
	}
}
