package wiring

import (
	"fmt"
	"strings"

	"github.com/roach88/atmo/internal/value"
)

// Validation error codes.
const (
	ErrMissingName      = "E201" // name is required
	ErrZeroID           = "E202" // ids start at 1
	ErrDuplicateID      = "E203" // id used twice
	ErrUnknownKind      = "E204" // not a built-in ability kind
	ErrMissingParameter = "E205" // kind parameter absent
	ErrInvalidParameter = "E206" // kind parameter malformed
	ErrUnknownTrigger   = "E207" // reference to an undeclared trigger
	ErrUnknownAbility   = "E208" // reference to an undeclared ability
	ErrNoAbilities      = "E209" // file declares nothing
)

// ValidationError is one problem found in a wiring file.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks f and returns every problem found.
func Validate(f *File) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if len(f.Abilities) == 0 {
		add(ErrNoAbilities, "abilities", "at least one ability is required")
	}

	abilities := make(map[uint32]bool, len(f.Abilities))
	for i, a := range f.Abilities {
		field := fmt.Sprintf("abilities[%d]", i)
		if a.ID == 0 {
			add(ErrZeroID, field+".id", "must be > 0")
		} else if abilities[a.ID] {
			add(ErrDuplicateID, field+".id", "ability %d declared twice", a.ID)
		}
		abilities[a.ID] = true
		if strings.TrimSpace(a.Name) == "" {
			add(ErrMissingName, field+".name", "name is required")
		}
	}

	triggers := make(map[uint32]bool, len(f.Triggers))
	for i, t := range f.Triggers {
		field := fmt.Sprintf("triggers[%d]", i)
		if t.ID == 0 {
			add(ErrZeroID, field+".id", "must be > 0")
		} else if triggers[t.ID] {
			add(ErrDuplicateID, field+".id", "trigger %d declared twice", t.ID)
		}
		triggers[t.ID] = true
		if strings.TrimSpace(t.Name) == "" {
			add(ErrMissingName, field+".name", "name is required")
		}
		for j, target := range t.Targets {
			if !abilities[target] {
				add(ErrUnknownAbility, fmt.Sprintf("%s.targets[%d]", field, j), "ability %d is not declared", target)
			}
		}
	}

	for i, a := range f.Abilities {
		field := fmt.Sprintf("abilities[%d]", i)
		for j, trig := range a.Triggers {
			if !triggers[trig] {
				add(ErrUnknownTrigger, fmt.Sprintf("%s.triggers[%d]", field, j), "trigger %d is not declared", trig)
			}
		}
		errs = append(errs, validateKind(field, a, triggers)...)
	}
	return errs
}

func validateKind(field string, a AbilitySpec, triggers map[uint32]bool) []ValidationError {
	var errs []ValidationError
	missing := func(param string) {
		errs = append(errs, ValidationError{Field: field + "." + param, Message: fmt.Sprintf("required for kind %s", a.Kind), Code: ErrMissingParameter})
	}
	invalid := func(param string, err error) {
		errs = append(errs, ValidationError{Field: field + "." + param, Message: err.Error(), Code: ErrInvalidParameter})
	}
	literal := func() {
		if a.Value == nil {
			missing("value")
			return
		}
		v, err := a.Value.Value()
		if err != nil {
			invalid("value", err)
		}
		v.Free()
	}

	switch a.Kind {
	case KindPassthrough, KindPrint:
	case KindConstant:
		literal()
	case KindConvert:
		if a.To == "" {
			missing("to")
		} else if _, err := value.ParseKind(a.To); err != nil {
			invalid("to", err)
		}
	case KindOperate:
		if a.Op == "" {
			missing("op")
		} else if _, err := value.ParseOperator(a.Op); err != nil {
			invalid("op", err)
		}
	case KindCompare:
		literal()
		if a.Compare == "" {
			missing("compare")
		} else if _, err := value.ParseComparison(a.Compare); err != nil {
			invalid("compare", err)
		}
		branch := func(param string, id uint32) {
			if id != 0 && !triggers[id] {
				errs = append(errs, ValidationError{Field: field + "." + param, Message: fmt.Sprintf("trigger %d is not declared", id), Code: ErrUnknownTrigger})
			}
		}
		branch("on_true", a.OnTrue)
		branch("on_false", a.OnFalse)
	case KindInterval:
		literal()
		if a.Every == "" {
			missing("every")
		} else if _, err := a.interval(); err != nil {
			invalid("every", err)
		}
		if a.Count < 0 {
			invalid("count", fmt.Errorf("must be >= 0"))
		}
	case "":
		missing("kind")
	default:
		errs = append(errs, ValidationError{Field: field + ".kind", Message: fmt.Sprintf("unknown kind %q", a.Kind), Code: ErrUnknownKind})
	}
	return errs
}
