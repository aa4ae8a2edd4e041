// Package metrics exports runtime and dispatch activity as Prometheus
// collectors.
package metrics

import (
	"context"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/value"
)

const namespace = "atmo"

func newCounterVec(subsystem, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func newGaugeVec(subsystem, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func newHistogramVec(subsystem, name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

// Metrics implements core.Observer and dispatch.Observer.
type Metrics struct {
	core.NopObserver

	mu         sync.Mutex
	registerer prometheus.Registerer
	registered bool

	ticksTotal     *prometheus.CounterVec
	tickAbilities  *prometheus.HistogramVec
	executedTotal  *prometheus.CounterVec
	callbacksTotal *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	queueDepth     *prometheus.GaugeVec

	dispatchedTotal *prometheus.CounterVec
	dispatchDepth   *prometheus.HistogramVec
	triggersTotal   *prometheus.CounterVec
}

// New creates the collectors. A nil registerer means
// prometheus.DefaultRegisterer. Call Register before use.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		registerer:     registerer,
		ticksTotal:     newCounterVec("runtime", "ticks_total", "Scheduler ticks run", []string{"idle"}),
		tickAbilities:  newHistogramVec("runtime", "tick_abilities", "Abilities executed per tick", []float64{0, 1, 2, 5, 10, 20, 50}, nil),
		executedTotal:  newCounterVec("runtime", "abilities_executed_total", "Queued abilities executed by the scheduler", []string{"result"}),
		callbacksTotal: newCounterVec("runtime", "callbacks_executed_total", "Queued callbacks executed by the scheduler", nil),
		rejectedTotal:  newCounterVec("runtime", "rejected_total", "Enqueue attempts rejected because the queue was full", []string{"queue"}),
		queueDepth:     newGaugeVec("runtime", "queue_depth", "Queue depth after the most recent enqueue", []string{"queue"}),

		dispatchedTotal: newCounterVec("dispatch", "abilities_total", "Ability dispatches, including trigger fan-out", []string{"ability", "result"}),
		dispatchDepth:   newHistogramVec("dispatch", "depth", "Nesting depth of ability dispatches", []float64{1, 2, 4, 8, 16, 32, 64}, nil),
		triggersTotal:   newCounterVec("dispatch", "triggers_total", "Triggers fired", []string{"trigger"}),
	}
}

// Register registers the collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.ticksTotal,
		m.tickAbilities,
		m.executedTotal,
		m.callbacksTotal,
		m.rejectedTotal,
		m.queueDepth,
		m.dispatchedTotal,
		m.dispatchDepth,
		m.triggersTotal,
	}
	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func label(id uint32, name string) string {
	if name != "" {
		return name
	}
	return strconv.FormatUint(uint64(id), 10)
}

// TickFinished implements core.Observer. Both work queues are empty once
// a tick returns, so their depth gauges reset.
func (m *Metrics) TickFinished(s core.TickStats) {
	m.ticksTotal.WithLabelValues(strconv.FormatBool(s.Idle())).Inc()
	m.tickAbilities.WithLabelValues().Observe(float64(s.Abilities))
	m.queueDepth.WithLabelValues(string(core.QueueAbility)).Set(0)
	m.queueDepth.WithLabelValues(string(core.QueueCallback)).Set(0)
}

// AbilityExecuted implements core.Observer.
func (m *Metrics) AbilityExecuted(_ int64, _ uint32, _ *value.Value, err error) {
	m.executedTotal.WithLabelValues(result(err)).Inc()
}

// CallbackExecuted implements core.Observer.
func (m *Metrics) CallbackExecuted(int64, *value.Value) {
	m.callbacksTotal.WithLabelValues().Inc()
}

// Enqueued implements core.Observer.
func (m *Metrics) Enqueued(q core.Queue, depth int) {
	m.queueDepth.WithLabelValues(string(q)).Set(float64(depth))
}

// Rejected implements core.Observer.
func (m *Metrics) Rejected(q core.Queue, _ error) {
	m.rejectedTotal.WithLabelValues(string(q)).Inc()
}

// AbilityDispatched implements dispatch.Observer.
func (m *Metrics) AbilityDispatched(_ context.Context, id uint32, name string, depth int, _ *value.Value, err error) {
	m.dispatchedTotal.WithLabelValues(label(id, name), result(err)).Inc()
	m.dispatchDepth.WithLabelValues().Observe(float64(depth))
}

// TriggerFired implements dispatch.Observer.
func (m *Metrics) TriggerFired(_ context.Context, id uint32, name string, _ int, _ *value.Value, _ int) {
	m.triggersTotal.WithLabelValues(label(id, name)).Inc()
}
