// Package health aggregates readiness checks for the HTTP /healthz probe and the gRPC health service.
package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status values reported by Report.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

const checkTimeout = 2 * time.Second

// Checker reports whether a dependency is ready.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Report is the outcome of running every registered check.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// OK reports whether every check passed.
func (r Report) OK() bool { return r.Status == StatusOK }

// Registry holds named checks. The zero value is ready to use.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]Checker
}

// Add registers c under name, replacing any previous check with that name. Nil checkers are ignored.
func (r *Registry) Add(name string, c Checker) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.checks == nil {
		r.checks = make(map[string]Checker)
	}
	r.checks[name] = c
}

// Run executes all checks concurrently, each bounded by a short timeout.
// An empty registry is healthy.
func (r *Registry) Run(ctx context.Context) Report {
	r.mu.RLock()
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	checks := make(map[string]Checker, len(r.checks))
	for k, v := range r.checks {
		checks[k] = v
	}
	r.mu.RUnlock()
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			if err := c.Check(checkCtx); err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = StatusOK
		}(i, checks[name])
	}
	wg.Wait()

	report := Report{Status: StatusOK, Checks: make(map[string]string, len(names))}
	for i, name := range names {
		report.Checks[name] = results[i]
		if results[i] != StatusOK {
			report.Status = StatusUnavailable
		}
	}
	return report
}
