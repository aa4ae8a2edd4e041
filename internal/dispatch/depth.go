package dispatch

import "context"

// DefaultMaxDepth bounds nested synchronous dispatch.
const DefaultMaxDepth = 64

type depthKey struct{}

type chain struct {
	reg   *Registry
	depth int
}

// Depth returns how many abilities are currently nested on ctx's call
// chain. It is 0 outside any ability.
func Depth(ctx context.Context) int {
	if c, ok := ctx.Value(depthKey{}).(chain); ok {
		return c.depth
	}
	return 0
}

func enter(ctx context.Context, reg *Registry, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, chain{reg: reg, depth: depth})
}

func registryFrom(ctx context.Context) *Registry {
	if c, ok := ctx.Value(depthKey{}).(chain); ok {
		return c.reg
	}
	return nil
}
