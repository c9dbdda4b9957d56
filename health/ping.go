package health

import (
	"context"
	"fmt"
)

// Pinger is a component that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a component unhealthy when its Ping fails.
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker named name over p.
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// Name returns the name of this checker.
func (c *PingChecker) Name() string {
	return c.name
}

// Check pings the component.
func (c *PingChecker) Check(ctx context.Context) Result {
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy(fmt.Sprintf("%s unreachable", c.name), fmt.Errorf("%w: %w", ErrCheckFailed, err))
	}
	return Healthy(fmt.Sprintf("%s reachable", c.name))
}
