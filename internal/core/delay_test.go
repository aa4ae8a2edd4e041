package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atmo/internal/value"
)

func TestDelayNonBlocking_ChunksAndTicks(t *testing.T) {
	r, p := newRuntime(t, DispatcherFunc(noDispatch))
	ticks := 0
	require.NoError(t, r.AddTickCallback(func(context.Context, *value.Value) { ticks++ }))

	require.NoError(t, r.DelayNonBlocking(context.Background(), 450*time.Millisecond))

	assert.Equal(t, []uint32{200, 200, 50}, p.Delays())
	assert.Equal(t, 2, ticks, "one tick per full chunk")
}

func TestDelayNonBlocking_ShortDelayTicksOnce(t *testing.T) {
	r, p := newRuntime(t, DispatcherFunc(noDispatch))
	ticks := 0
	require.NoError(t, r.AddTickCallback(func(context.Context, *value.Value) { ticks++ }))

	require.NoError(t, r.DelayNonBlocking(context.Background(), 30*time.Millisecond))

	assert.Equal(t, []uint32{30}, p.Delays())
	assert.Equal(t, 1, ticks)
}

func TestDelayNonBlocking_DrainsQueuedWork(t *testing.T) {
	var ran []uint32
	d := DispatcherFunc(func(_ context.Context, id uint32, _ *value.Value) error {
		ran = append(ran, id)
		return nil
	})
	r, p := newRuntime(t, d)
	p.OnDelay = func(uint32) {
		_ = r.AddAbilityExecute(uint32(len(p.Delays())), nil)
	}

	require.NoError(t, r.DelayNonBlocking(context.Background(), 400*time.Millisecond))
	assert.Equal(t, []uint32{1, 2}, ran)
}

func TestDelayNonBlocking_Cancelled(t *testing.T) {
	r, p := newRuntime(t, DispatcherFunc(noDispatch))
	ctx, cancel := context.WithCancel(context.Background())
	p.OnDelay = func(uint32) { cancel() }

	err := r.DelayNonBlocking(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, p.Delays(), 1)
}
