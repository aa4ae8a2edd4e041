package wiring

import (
	"context"
	"fmt"

	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/dispatch"
	"github.com/roach88/atmo/internal/value"
)

func passthrough(_ context.Context, in, out *value.Value) error {
	return value.Copy(out, in)
}

func constant(lit value.Value) dispatch.AbilityFunc {
	return func(_ context.Context, _, out *value.Value) error {
		return value.Copy(out, &lit)
	}
}

func convert(to value.Kind) dispatch.AbilityFunc {
	return func(_ context.Context, in, out *value.Value) error {
		return value.CreateConverted(out, to, in)
	}
}

func operate(op value.Operator, operand float32) dispatch.AbilityFunc {
	return func(_ context.Context, in, out *value.Value) error {
		return value.Apply(out, op, operand, in)
	}
}

// compare outputs Bool(in <c> against) and additionally fires onTrue or
// onFalse with the unchanged input. against is converted to the input's
// kind first.
func compare(c value.Comparison, against value.Value, onTrue, onFalse uint32) dispatch.AbilityFunc {
	return func(ctx context.Context, in, out *value.Value) error {
		var rhs value.Value
		defer rhs.Free()
		if err := value.CreateConverted(&rhs, in.Kind(), &against); err != nil {
			return fmt.Errorf("compare: convert operand to %s: %w", in.Kind(), err)
		}
		ok, err := value.Compare(in, &rhs, c)
		if err != nil {
			return err
		}
		if err := value.CreateBool(out, ok); err != nil {
			return err
		}

		branch := onFalse
		if ok {
			branch = onTrue
		}
		if branch == 0 {
			return nil
		}
		return dispatch.Fire(ctx, branch, in)
	}
}

// printer writes "name: value" through the platform's debug output and
// passes its input on.
func printer(p core.Platform, name string) dispatch.AbilityFunc {
	return func(_ context.Context, in, out *value.Value) error {
		text, err := in.AsString()
		if err != nil {
			text = in.String()
		}
		p.DebugPrint("%s: %s\r\n", name, text)
		return value.Copy(out, in)
	}
}
