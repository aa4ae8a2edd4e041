package wiring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format is a wiring file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported wiring file extension %q", filepath.Ext(path))
	}
}

// Load reads, decodes and validates the wiring file at path.
func Load(path string) (*File, error) {
	f, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := check(f); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadUnchecked reads and decodes path without running Validate.
func LoadUnchecked(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wiring file: %w", err)
	}
	return Decode(data, format, path)
}

// Parse decodes and validates data. name is used in CUE error positions.
func Parse(data []byte, format Format, name string) (*File, error) {
	f, err := Decode(data, format, name)
	if err != nil {
		return nil, err
	}
	if err := check(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Decode decodes data without running Validate.
func Decode(data []byte, format Format, name string) (*File, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatCUE:
		return decodeCUE(data, name)
	default:
		return nil, fmt.Errorf("unsupported wiring format %q", format)
	}
}

func check(f *File) error {
	if errs := Validate(f); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i := range errs {
			joined[i] = errs[i]
		}
		return fmt.Errorf("invalid wiring: %w", errors.Join(joined...))
	}
	return nil
}

func decodeYAML(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty wiring file")
		}
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &f, nil
}

// decodeCUE evaluates the file and decodes the concrete result. CUE
// constraints in the file (e.g. `id: >0`) are checked by the evaluator.
func decodeCUE(data []byte, name string) (*File, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate CUE: %w", err)
	}
	var f File
	if err := v.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode CUE: %w", err)
	}
	return &f, nil
}
