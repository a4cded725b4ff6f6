package server

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthFunc adapts a function to HealthChecker.
type HealthFunc func(ctx context.Context) bool

func (f HealthFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

type OkHealthChecker struct{}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// Checks is a set of named dependencies that must all be healthy.
type Checks map[string]HealthChecker

// Healthy runs every check concurrently. Nil checkers are skipped.
func (c Checks) Healthy(ctx context.Context) bool {
	for _, ok := range c.Report(ctx) {
		if !ok {
			return false
		}
	}
	return true
}

// Report returns the result of each named check.
func (c Checks) Report(ctx context.Context) map[string]bool {
	names := make([]string, 0, len(c))
	for name, hc := range c {
		if hc != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	results := make([]bool, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c[name].Healthy(ctx)
		}()
	}
	wg.Wait()

	out := make(map[string]bool, len(names))
	for i, name := range names {
		out[name] = results[i]
		if !results[i] {
			slog.Warn("Health check failed", "check", name)
		}
	}
	return out
}
