package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Platform is the board support layer the runtime runs on.
type Platform interface {
	// Init, VariantSetup and PostInit bracket application setup in Runtime.Init.
	Init(ctx context.Context) error
	VariantSetup(ctx context.Context) error
	PostInit(ctx context.Context) error

	// Lock and Unlock guard the runtime queues. They must be usable from
	// any producer context and need not be re-entrant.
	Lock()
	Unlock()

	// DelayMilliseconds blocks the caller.
	DelayMilliseconds(ms uint32)

	// DebugPrint writes a diagnostic line.
	DebugPrint(format string, args ...any)

	// SendTickEvent wakes an idle consumer. Called after every successful
	// enqueue when async tick is enabled.
	SendTickEvent()
}

// HostPlatform runs the runtime on a regular OS process: a mutex for the
// queue lock, time.Sleep for delays and slog for debug output.
type HostPlatform struct {
	mu     sync.Mutex
	logger *slog.Logger
}

// NewHostPlatform returns a HostPlatform logging to logger (slog.Default
// when nil).
func NewHostPlatform(logger *slog.Logger) *HostPlatform {
	if logger == nil {
		logger = slog.Default()
	}
	return &HostPlatform{logger: logger}
}

func (p *HostPlatform) Init(ctx context.Context) error {
	p.logger.Debug("platform init", "platform", "host")
	return nil
}

func (p *HostPlatform) VariantSetup(ctx context.Context) error {
	return nil
}

func (p *HostPlatform) PostInit(ctx context.Context) error {
	p.logger.Debug("platform post-init", "platform", "host")
	return nil
}

func (p *HostPlatform) Lock()   { p.mu.Lock() }
func (p *HostPlatform) Unlock() { p.mu.Unlock() }

func (p *HostPlatform) DelayMilliseconds(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (p *HostPlatform) DebugPrint(format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\r\n")
	p.logger.Info(msg, "source", "debug")
}

// SendTickEvent is a no-op: the Runtime's own wake channel already
// rouses Run in-process.
func (p *HostPlatform) SendTickEvent() {}
