package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atmo/internal/value"
)

func quietRegistry(opts ...Option) *Registry {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewRegistry(opts...)
}

func passthrough(ctx context.Context, in, out *value.Value) error {
	return value.Copy(out, in)
}

type recorder struct {
	calls []string
}

func (r *recorder) ability(name string) AbilityFunc {
	return func(ctx context.Context, in, out *value.Value) error {
		r.calls = append(r.calls, name)
		return value.Copy(out, in)
	}
}

func TestRegistry_AbilityFiresTriggers(t *testing.T) {
	rec := &recorder{}
	r := quietRegistry()

	require.NoError(t, r.RegisterAbility(Ability{ID: 1, Name: "source", Func: rec.ability("source"), Triggers: []uint32{10}}))
	require.NoError(t, r.RegisterAbility(Ability{ID: 2, Name: "left", Func: rec.ability("left")}))
	require.NoError(t, r.RegisterAbility(Ability{ID: 3, Name: "right", Func: rec.ability("right")}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 10, Name: "source.out", Targets: []uint32{2}}))
	require.NoError(t, r.Wire(10, 3))

	v := value.NewInt(5)
	require.NoError(t, r.DispatchAbility(context.Background(), 1, &v))

	assert.Equal(t, []string{"source", "left", "right"}, rec.calls)
}

func TestRegistry_OutputFlowsToTargets(t *testing.T) {
	r := quietRegistry()
	double := func(ctx context.Context, in, out *value.Value) error {
		return value.Apply(out, value.Mul, 2, in)
	}
	var seen int32
	sink := func(ctx context.Context, in, out *value.Value) error {
		var err error
		seen, err = in.AsInt()
		return err
	}

	require.NoError(t, r.RegisterAbility(Ability{ID: 1, Name: "double", Func: double, Triggers: []uint32{1}}))
	require.NoError(t, r.RegisterAbility(Ability{ID: 2, Name: "sink", Func: sink}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 1, Name: "doubled", Targets: []uint32{2}}))

	v := value.NewInt(21)
	require.NoError(t, r.DispatchAbility(context.Background(), 1, &v))
	assert.Equal(t, int32(42), seen)
}

func TestRegistry_UnknownIDs(t *testing.T) {
	r := quietRegistry()

	err := r.DispatchAbility(context.Background(), 99, nil)
	assert.True(t, IsUnknownAbility(err))

	err = r.DispatchTrigger(context.Background(), 99, nil)
	assert.True(t, IsUnknownTrigger(err))

	assert.ErrorContains(t, r.Wire(99, 1), "UNKNOWN_TRIGGER")
}

func TestRegistry_Duplicates(t *testing.T) {
	r := quietRegistry()
	require.NoError(t, r.RegisterAbility(Ability{ID: 1, Name: "a", Func: passthrough}))

	err := r.RegisterAbility(Ability{ID: 1, Name: "b", Func: passthrough})
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeDuplicate, de.Code)

	require.NoError(t, r.RegisterTrigger(Trigger{ID: 1, Name: "t"}))
	assert.Error(t, r.RegisterTrigger(Trigger{ID: 1, Name: "t2"}))

	assert.Error(t, r.RegisterAbility(Ability{ID: 2, Name: "nil"}))
}

func TestRegistry_HandlerErrorSkipsTriggers(t *testing.T) {
	rec := &recorder{}
	r := quietRegistry()
	boom := errors.New("sensor offline")

	require.NoError(t, r.RegisterAbility(Ability{
		ID: 1, Name: "read",
		Func:     func(ctx context.Context, in, out *value.Value) error { return boom },
		Triggers: []uint32{1},
	}))
	require.NoError(t, r.RegisterAbility(Ability{ID: 2, Name: "sink", Func: rec.ability("sink")}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 1, Name: "read.out", Targets: []uint32{2}}))

	err := r.DispatchAbility(context.Background(), 1, nil)
	assert.True(t, IsHandlerError(err))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.calls)
}

func TestRegistry_FanOutContinuesAfterFailure(t *testing.T) {
	rec := &recorder{}
	r := quietRegistry()

	require.NoError(t, r.RegisterAbility(Ability{ID: 1, Name: "bad", Func: func(context.Context, *value.Value, *value.Value) error {
		return errors.New("bad")
	}}))
	require.NoError(t, r.RegisterAbility(Ability{ID: 2, Name: "good", Func: rec.ability("good")}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 1, Name: "t", Targets: []uint32{1, 2}}))

	err := r.DispatchTrigger(context.Background(), 1, nil)
	assert.Error(t, err)
	assert.Equal(t, []string{"good"}, rec.calls)
}

func TestRegistry_CycleStopsAtDepthLimit(t *testing.T) {
	calls := 0
	r := quietRegistry(WithMaxDepth(5))
	require.NoError(t, r.RegisterAbility(Ability{
		ID: 1, Name: "loop",
		Func: func(ctx context.Context, in, out *value.Value) error {
			calls++
			return value.Copy(out, in)
		},
		Triggers: []uint32{1},
	}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 1, Name: "loop.out", Targets: []uint32{1}}))

	err := r.DispatchAbility(context.Background(), 1, nil)
	require.True(t, IsDepthError(err))
	assert.Equal(t, 5, calls)

	var de *DepthError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 6, de.Depth)
	assert.Equal(t, 5, de.Limit)
}

func TestRegistry_ZeroDepthDisablesGuard(t *testing.T) {
	calls := 0
	r := quietRegistry(WithMaxDepth(0))
	require.NoError(t, r.RegisterAbility(Ability{
		ID: 1, Name: "countdown",
		Func: func(ctx context.Context, in, out *value.Value) error {
			calls++
			if calls < 200 {
				return Fire(ctx, 1, in)
			}
			return nil
		},
	}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 1, Name: "again", Targets: []uint32{1}}))

	require.NoError(t, r.DispatchAbility(context.Background(), 1, nil))
	assert.Equal(t, 200, calls)
}

func TestDepth_TracksNesting(t *testing.T) {
	var depths []int
	r := quietRegistry()
	probe := func(ctx context.Context, in, out *value.Value) error {
		depths = append(depths, Depth(ctx))
		return nil
	}
	require.NoError(t, r.RegisterAbility(Ability{ID: 1, Name: "outer", Func: probe, Triggers: []uint32{1}}))
	require.NoError(t, r.RegisterAbility(Ability{ID: 2, Name: "inner", Func: probe}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 1, Name: "t", Targets: []uint32{2}}))

	assert.Equal(t, 0, Depth(context.Background()))
	require.NoError(t, r.DispatchAbility(context.Background(), 1, nil))
	assert.Equal(t, []int{1, 2}, depths)
}

func TestFire_OutsideAbility(t *testing.T) {
	assert.Error(t, Fire(context.Background(), 1, nil))
}

type countingObserver struct {
	abilities []uint32
	triggers  []uint32
	failures  int
}

func (o *countingObserver) AbilityDispatched(_ context.Context, id uint32, _ string, _ int, _ *value.Value, err error) {
	o.abilities = append(o.abilities, id)
	if err != nil {
		o.failures++
	}
}

func (o *countingObserver) TriggerFired(_ context.Context, id uint32, _ string, _ int, _ *value.Value, _ int) {
	o.triggers = append(o.triggers, id)
}

func TestRegistry_Observer(t *testing.T) {
	obs := &countingObserver{}
	r := quietRegistry(WithObserver(obs))
	require.NoError(t, r.RegisterAbility(Ability{ID: 1, Name: "a", Func: passthrough, Triggers: []uint32{7}}))
	require.NoError(t, r.RegisterTrigger(Trigger{ID: 7, Name: "t", Targets: []uint32{42}}))

	err := r.DispatchAbility(context.Background(), 1, nil)
	assert.True(t, IsUnknownAbility(err))
	assert.Equal(t, []uint32{1, 42}, obs.abilities)
	assert.Equal(t, []uint32{7}, obs.triggers)
	assert.Equal(t, 1, obs.failures)
}

func TestRegistry_AbilityIDsSorted(t *testing.T) {
	r := quietRegistry()
	for _, id := range []uint32{3, 1, 2} {
		require.NoError(t, r.RegisterAbility(Ability{ID: id, Name: "x", Func: passthrough}))
	}
	assert.Equal(t, []uint32{1, 2, 3}, r.AbilityIDs())
}
