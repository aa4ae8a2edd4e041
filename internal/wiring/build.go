package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/dispatch"
	"github.com/roach88/atmo/internal/value"
)

// Build registers every ability and trigger of f in a new registry. f must
// already be valid. p receives print output.
func Build(f *File, p core.Platform, opts ...dispatch.Option) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry(opts...)
	for _, a := range f.Abilities {
		fn, err := abilityFunc(a, p)
		if err != nil {
			return nil, fmt.Errorf("ability %d (%s): %w", a.ID, a.Name, err)
		}
		if err := reg.RegisterAbility(dispatch.Ability{
			ID:       a.ID,
			Name:     a.Name,
			Func:     fn,
			Triggers: a.Triggers,
		}); err != nil {
			return nil, err
		}
	}
	for _, t := range f.Triggers {
		if err := reg.RegisterTrigger(dispatch.Trigger{ID: t.ID, Name: t.Name, Targets: t.Targets}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func abilityFunc(a AbilitySpec, p core.Platform) (dispatch.AbilityFunc, error) {
	switch a.Kind {
	case KindPassthrough, KindInterval:
		return passthrough, nil
	case KindConstant:
		lit, err := a.Value.Value()
		if err != nil {
			return nil, err
		}
		return constant(lit), nil
	case KindConvert:
		k, err := value.ParseKind(a.To)
		if err != nil {
			return nil, err
		}
		return convert(k), nil
	case KindOperate:
		op, err := value.ParseOperator(a.Op)
		if err != nil {
			return nil, err
		}
		return operate(op, a.Operand), nil
	case KindCompare:
		c, err := value.ParseComparison(a.Compare)
		if err != nil {
			return nil, err
		}
		lit, err := a.Value.Value()
		if err != nil {
			return nil, err
		}
		return compare(c, lit, a.OnTrue, a.OnFalse), nil
	case KindPrint:
		if p == nil {
			return nil, fmt.Errorf("print needs a platform")
		}
		return printer(p, a.Name), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", a.Kind)
	}
}

// Enqueuer accepts ability executions. core.Runtime satisfies it.
type Enqueuer interface {
	AddAbilityExecute(id uint32, v *value.Value) error
}

// Producers runs one goroutine per interval ability.
type Producers struct {
	wg sync.WaitGroup
}

// StartProducers enqueues every interval ability of f with its value on
// its period until ctx is done or its count is reached. A full queue is
// logged and the producer keeps going.
func StartProducers(ctx context.Context, f *File, q Enqueuer, logger *slog.Logger) (*Producers, error) {
	type producer struct {
		spec  AbilitySpec
		every time.Duration
		lit   value.Value
	}
	var list []producer
	release := func() {
		for i := range list {
			list[i].lit.Free()
		}
	}
	for _, a := range f.Abilities {
		if a.Kind != KindInterval {
			continue
		}
		every, err := a.interval()
		if err != nil {
			release()
			return nil, fmt.Errorf("ability %d (%s): every: %w", a.ID, a.Name, err)
		}
		lit, err := a.Value.Value()
		if err != nil {
			release()
			return nil, fmt.Errorf("ability %d (%s): %w", a.ID, a.Name, err)
		}
		list = append(list, producer{spec: a, every: every, lit: lit})
	}

	ps := &Producers{}
	for _, pr := range list {
		ps.wg.Add(1)
		go func(pr producer) {
			defer ps.wg.Done()
			defer pr.lit.Free()
			produce(ctx, pr.spec, &pr.lit, pr.every, q, logger)
		}(pr)
	}
	return ps, nil
}

func produce(ctx context.Context, a AbilitySpec, lit *value.Value, every time.Duration, q Enqueuer, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	sent := 0
	for a.Count == 0 || sent < a.Count {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := q.AddAbilityExecute(a.ID, lit); err != nil {
			logger.Warn("interval enqueue failed", "ability", a.Name, "ability_id", a.ID, "error", err)
			continue
		}
		sent++
	}
	logger.Debug("interval finished", "ability", a.Name, "ability_id", a.ID, "count", sent)
}

// Wait blocks until every producer has stopped.
func (p *Producers) Wait() {
	p.wg.Wait()
}
