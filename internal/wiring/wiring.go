// Package wiring describes an ability/trigger graph in a file and builds a
// dispatch.Registry from it.
//
// A wiring file lists abilities (each with a built-in kind and its
// parameters) and triggers (each with the abilities it fans out to).
// YAML and CUE are both accepted; they decode into the same File.
package wiring

import (
	"fmt"
	"time"

	"github.com/roach88/atmo/internal/value"
)

// Built-in ability kinds.
const (
	KindPassthrough = "passthrough"
	KindConstant    = "constant"
	KindConvert     = "convert"
	KindOperate     = "operate"
	KindCompare     = "compare"
	KindPrint       = "print"
	KindInterval    = "interval"
)

// File is a decoded wiring file.
type File struct {
	Name      string        `yaml:"name" json:"name"`
	Abilities []AbilitySpec `yaml:"abilities" json:"abilities"`
	Triggers  []TriggerSpec `yaml:"triggers,omitempty" json:"triggers,omitempty"`
}

// AbilitySpec declares one ability. Which parameter fields apply depends on
// Kind.
type AbilitySpec struct {
	ID       uint32   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Kind     string   `yaml:"kind" json:"kind"`
	Triggers []uint32 `yaml:"triggers,omitempty" json:"triggers,omitempty"`

	// constant, compare, interval
	Value *Literal `yaml:"value,omitempty" json:"value,omitempty"`

	// convert
	To string `yaml:"to,omitempty" json:"to,omitempty"`

	// operate
	Op      string  `yaml:"op,omitempty" json:"op,omitempty"`
	Operand float32 `yaml:"operand,omitempty" json:"operand,omitempty"`

	// compare
	Compare string `yaml:"compare,omitempty" json:"compare,omitempty"`
	OnTrue  uint32 `yaml:"on_true,omitempty" json:"on_true,omitempty"`
	OnFalse uint32 `yaml:"on_false,omitempty" json:"on_false,omitempty"`

	// interval
	Every string `yaml:"every,omitempty" json:"every,omitempty"`
	Count int    `yaml:"count,omitempty" json:"count,omitempty"`
}

// TriggerSpec declares one trigger and its targets.
type TriggerSpec struct {
	ID      uint32   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Targets []uint32 `yaml:"targets,omitempty" json:"targets,omitempty"`
}

// Literal is a Value written in a file. Scalars and strings use Text,
// vectors use X/Y/Z, lists use Items.
type Literal struct {
	Kind  string    `yaml:"kind" json:"kind"`
	Text  string    `yaml:"text,omitempty" json:"text,omitempty"`
	X     float64   `yaml:"x,omitempty" json:"x,omitempty"`
	Y     float64   `yaml:"y,omitempty" json:"y,omitempty"`
	Z     float64   `yaml:"z,omitempty" json:"z,omitempty"`
	Items []Literal `yaml:"items,omitempty" json:"items,omitempty"`
}

// Value builds the literal. Scalar text is converted from a String with
// the usual conversion rules, so "42" as int is Int(42). A nil literal is
// Void.
func (l *Literal) Value() (value.Value, error) {
	var v value.Value
	if l == nil {
		return v, nil
	}
	k, err := value.ParseKind(l.Kind)
	if err != nil {
		return v, err
	}

	switch k {
	case value.KindVoid:
		return v, nil
	case value.KindString:
		return v, value.CreateString(&v, l.Text)
	case value.KindBinary:
		return v, value.CreateBinary(&v, []byte(l.Text))
	case value.KindVector3F:
		return v, value.CreateVector3F(&v, value.Vector3F{X: float32(l.X), Y: float32(l.Y), Z: float32(l.Z)})
	case value.KindVector3D:
		return v, value.CreateVector3D(&v, value.Vector3D{X: l.X, Y: l.Y, Z: l.Z})
	case value.KindList:
		if err := value.CreateList(&v); err != nil {
			return v, err
		}
		for i := range l.Items {
			iv, err := l.Items[i].Value()
			if err != nil {
				v.Free()
				return value.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			if err := v.PushBack(iv); err != nil {
				v.Free()
				return value.Value{}, err
			}
		}
		return v, nil
	}

	var s value.Value
	defer s.Free()
	if err := value.CreateString(&s, l.Text); err != nil {
		return v, err
	}
	if err := value.CreateConverted(&v, k, &s); err != nil {
		v.Free()
		return value.Value{}, fmt.Errorf("%s literal %q: %w", k, l.Text, err)
	}
	return v, nil
}

func (a AbilitySpec) interval() (time.Duration, error) {
	d, err := time.ParseDuration(a.Every)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
