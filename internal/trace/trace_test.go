package trace

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/dispatch"
	"github.com/roach88/atmo/internal/testutil"
	"github.com/roach88/atmo/internal/value"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// doubleChain wires ability 1 (x*2) to ability 2 through trigger 1.
func doubleChain(t *testing.T, rec *Recorder) *core.Runtime {
	t.Helper()
	reg := dispatch.NewRegistry(dispatch.WithLogger(quiet()), dispatch.WithObserver(rec))
	double := func(ctx context.Context, in, out *value.Value) error {
		return value.Apply(out, value.Mul, 2, in)
	}
	sink := func(ctx context.Context, in, out *value.Value) error { return nil }

	require.NoError(t, reg.RegisterAbility(dispatch.Ability{ID: 1, Name: "double", Func: double, Triggers: []uint32{1}}))
	require.NoError(t, reg.RegisterAbility(dispatch.Ability{ID: 2, Name: "sink", Func: sink}))
	require.NoError(t, reg.RegisterTrigger(dispatch.Trigger{ID: 1, Name: "double.out", Targets: []uint32{2}}))

	rt, err := core.New(testutil.NewFakePlatform(), reg,
		core.WithLogger(quiet()),
		core.WithObserver(rec),
		core.WithRunIDGenerator(testutil.NewStaticRunID("trace")),
	)
	require.NoError(t, err)
	return rt
}

func TestRecorder_GoldenDoubleChain(t *testing.T) {
	rec := NewRecorder(WithSequencer(testutil.NewDeterministicClock()))
	rt := doubleChain(t, rec)

	v := value.NewInt(21)
	require.NoError(t, rt.AddAbilityExecute(1, &v))
	rt.Tick(context.Background())

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, rec.Events()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "double_chain", buf.Bytes())
}

func TestRecorder_DeterministicAcrossRuns(t *testing.T) {
	run := func() []byte {
		rec := NewRecorder(WithSequencer(testutil.NewDeterministicClock()))
		rt := doubleChain(t, rec)
		for i := int32(1); i <= 3; i++ {
			v := value.NewInt(i)
			require.NoError(t, rt.AddAbilityExecute(1, &v))
		}
		rt.Tick(context.Background())
		var buf bytes.Buffer
		require.NoError(t, WriteJSONL(&buf, rec.Events()))
		return buf.Bytes()
	}
	assert.Equal(t, run(), run())
}

func TestRecorder_RejectedCarriesTickSeq(t *testing.T) {
	rec := NewRecorder()
	rt, err := core.New(testutil.NewFakePlatform(), core.DispatcherFunc(func(context.Context, uint32, *value.Value) error { return nil }),
		core.WithLogger(quiet()),
		core.WithObserver(rec),
		core.WithAbilityCapacity(1),
		core.WithRunIDGenerator(testutil.NewStaticRunID("trace")),
	)
	require.NoError(t, err)

	rt.Tick(context.Background())
	require.NoError(t, rt.AddAbilityExecute(7, nil))
	require.Error(t, rt.AddAbilityExecute(7, nil))

	events := rec.Events()
	last := events[len(events)-1]
	assert.Equal(t, EventRejected, last.Type)
	assert.Equal(t, "ability", last.Queue)
	assert.Equal(t, int64(1), last.Seq)
	assert.NotEmpty(t, last.Error)
}

type failingSink struct{ n int }

func (s *failingSink) Append(Event) error {
	s.n++
	return errors.New("disk full")
}

func TestRecorder_SinkFailureDoesNotStopRecording(t *testing.T) {
	sink := &failingSink{}
	rec := NewRecorder(WithSink(sink), WithLogger(quiet()))

	rec.TickStarted(1)
	rec.TickFinished(core.TickStats{Seq: 1})

	assert.Equal(t, 2, sink.n)
	assert.Len(t, rec.Events(), 2)
}

func TestRecorder_WithoutBuffer(t *testing.T) {
	var got []Event
	rec := NewRecorder(WithoutBuffer(), WithSink(sinkFunc(func(e Event) error {
		got = append(got, e)
		return nil
	})))

	rec.TickStarted(4)
	assert.Empty(t, rec.Events())
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].Seq)
}

type sinkFunc func(Event) error

func (f sinkFunc) Append(e Event) error { return f(e) }

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "tick start has only envelope",
			event: Event{Step: 3, Seq: 2, Type: EventTickStart},
			want:  `{"event":"tick_start","seq":2,"step":3}`,
		},
		{
			name:  "html characters are not escaped",
			event: Event{Step: 1, Seq: 1, Type: EventCallback, ValueKind: "string", Value: "<a&b>"},
			want:  `{"event":"callback","seq":1,"step":1,"value":"<a&b>","value_kind":"string"}`,
		},
		{
			name:  "strings are NFC normalized",
			event: Event{Step: 1, Seq: 1, Type: EventCallback, ValueKind: "string", Value: "é"},
			want:  `{"event":"callback","seq":1,"step":1,"value":"é","value_kind":"string"}`,
		},
		{
			name:  "void keeps an empty value",
			event: Event{Step: 1, Seq: 1, Type: EventExecute, ID: 9, ValueKind: "void"},
			want:  `{"event":"execute","id":9,"seq":1,"step":1,"value":"","value_kind":"void"}`,
		},
		{
			name:  "rejection",
			event: Event{Step: 5, Seq: 1, Type: EventRejected, Queue: "callback", Error: "full"},
			want:  `{"error":"full","event":"rejected","queue":"callback","seq":1,"step":5}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEventString(t *testing.T) {
	e := Event{Step: 2, Seq: 1, Type: EventTrigger, ID: 4, Name: "btn.press", Depth: 1, Targets: 2, ValueKind: "bool", Value: "true"}
	assert.Equal(t, `#2 tick=1 trigger btn.press(4) depth=1 targets=2 bool:"true"`, e.String())

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []Event{e}))
	assert.Equal(t, e.String()+"\n", buf.String())
}
