// Package health runs the readiness checks shared by the HTTP /healthz
// endpoint and the gRPC health service.
package health

import (
	"context"
	"sort"
	"time"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

type Check struct {
	Name string
	Fn   CheckFunc
}

// Checker runs a fixed set of named checks with a shared timeout.
type Checker struct {
	checks  []Check
	timeout time.Duration
}

func NewChecker(timeout time.Duration, checks ...Check) *Checker {
	return &Checker{checks: checks, timeout: timeout}
}

// Run executes every check and returns per-check status ("ok" or
// "down: <err>") and whether all of them passed.
func (c *Checker) Run(ctx context.Context) (map[string]string, bool) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	results := make(map[string]string, len(c.checks))
	ok := true
	for _, ch := range c.checks {
		if err := ch.Fn(ctx); err != nil {
			results[ch.Name] = "down: " + err.Error()
			ok = false
			continue
		}
		results[ch.Name] = "ok"
	}
	return results, ok
}

// Names lists the configured checks in sorted order.
func (c *Checker) Names() []string {
	names := make([]string, 0, len(c.checks))
	for _, ch := range c.checks {
		names = append(names, ch.Name)
	}
	sort.Strings(names)
	return names
}
