// Package trace records what a runtime did, tick by tick.
//
// A Recorder plugs into both core.Runtime and dispatch.Registry as an
// observer and produces an ordered list of Events. Events serialize to
// canonical JSON lines (sorted keys, NFC strings, no HTML escaping) so two
// runs of the same wiring produce byte-identical traces.
package trace

import (
	"fmt"
	"strings"

	"github.com/roach88/atmo/internal/value"
)

// EventType names a trace entry.
type EventType string

const (
	EventTickStart EventType = "tick_start"
	EventTickEnd   EventType = "tick_end"
	EventAbility   EventType = "ability"
	EventTrigger   EventType = "trigger"
	EventExecute   EventType = "execute"
	EventCallback  EventType = "callback"
	EventRejected  EventType = "rejected"
)

// Event is one trace entry. Fields that do not apply to Type are zero.
type Event struct {
	Step int64     `json:"step"`
	Seq  int64     `json:"seq"`
	Type EventType `json:"event"`

	ID      uint32 `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Depth   int    `json:"depth,omitempty"`
	Targets int    `json:"targets,omitempty"`
	Queue   string `json:"queue,omitempty"`

	ValueKind string `json:"value_kind,omitempty"`
	Value     string `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`

	// tick_end counters
	Abilities int `json:"abilities,omitempty"`
	Callbacks int `json:"callbacks,omitempty"`
	Failures  int `json:"failures,omitempty"`
}

// describe renders v as (kind, text) for a trace entry.
func describe(v *value.Value) (string, string) {
	if v.IsVoid() {
		return value.KindVoid.String(), ""
	}
	if v.Kind() == value.KindList {
		return v.Kind().String(), v.String()
	}
	text, err := v.AsString()
	if err != nil {
		return v.Kind().String(), v.String()
	}
	return v.Kind().String(), text
}

// String renders e as a single human-readable line.
func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d tick=%d %s", e.Step, e.Seq, e.Type)
	switch e.Type {
	case EventAbility, EventTrigger:
		fmt.Fprintf(&b, " %s(%d) depth=%d", e.Name, e.ID, e.Depth)
		if e.Type == EventTrigger {
			fmt.Fprintf(&b, " targets=%d", e.Targets)
		}
	case EventExecute:
		fmt.Fprintf(&b, " ability=%d", e.ID)
	case EventRejected:
		fmt.Fprintf(&b, " queue=%s", e.Queue)
	case EventTickEnd:
		fmt.Fprintf(&b, " abilities=%d callbacks=%d failures=%d", e.Abilities, e.Callbacks, e.Failures)
	}
	if e.ValueKind != "" {
		fmt.Fprintf(&b, " %s:%q", e.ValueKind, e.Value)
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%q", e.Error)
	}
	return b.String()
}
