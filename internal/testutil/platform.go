package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// FakePlatform is an in-memory core.Platform. Delays return immediately
// and are summed; debug output is captured line by line.
type FakePlatform struct {
	// InitErr, VariantErr and PostInitErr are returned by the matching hooks.
	InitErr     error
	VariantErr  error
	PostInitErr error

	// OnDelay, if set, runs inside DelayMilliseconds.
	OnDelay func(ms uint32)

	mu         sync.Mutex
	queueLock  sync.Mutex
	calls      []string
	lines      []string
	delays     []uint32
	tickEvents atomic.Int64
	locks      atomic.Int64
}

// NewFakePlatform returns a FakePlatform with no injected failures.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{}
}

func (p *FakePlatform) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *FakePlatform) Init(ctx context.Context) error {
	p.record("init")
	return p.InitErr
}

func (p *FakePlatform) VariantSetup(ctx context.Context) error {
	p.record("variant")
	return p.VariantErr
}

func (p *FakePlatform) PostInit(ctx context.Context) error {
	p.record("post-init")
	return p.PostInitErr
}

func (p *FakePlatform) Lock() {
	p.queueLock.Lock()
	p.locks.Add(1)
}

func (p *FakePlatform) Unlock() {
	p.queueLock.Unlock()
}

func (p *FakePlatform) DelayMilliseconds(ms uint32) {
	p.mu.Lock()
	p.delays = append(p.delays, ms)
	p.mu.Unlock()
	if p.OnDelay != nil {
		p.OnDelay(ms)
	}
}

func (p *FakePlatform) DebugPrint(format string, args ...any) {
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\r\n")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
}

func (p *FakePlatform) SendTickEvent() {
	p.tickEvents.Add(1)
}

// Calls returns the lifecycle hooks invoked so far, in order.
func (p *FakePlatform) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Lines returns captured DebugPrint output without line endings.
func (p *FakePlatform) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

// Delays returns every DelayMilliseconds argument.
func (p *FakePlatform) Delays() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint32(nil), p.delays...)
}

// TickEvents counts SendTickEvent calls.
func (p *FakePlatform) TickEvents() int64 {
	return p.tickEvents.Load()
}

// Locks counts Lock calls.
func (p *FakePlatform) Locks() int64 {
	return p.locks.Load()
}
