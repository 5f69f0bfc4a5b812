package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// HealthState describes a provider's standing inside the Router.
type HealthState int

const (
	// Healthy providers are tried in preference order.
	Healthy HealthState = iota
	// Degraded providers have failed recently but stay in rotation.
	Degraded
	// Unavailable providers are skipped until their cooldown elapses.
	Unavailable
)

func (s HealthState) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// RouterConfig configures failover behavior.
type RouterConfig struct {
	// UnavailableAfter is the number of consecutive failures before a
	// provider is sidelined. Default: 3.
	UnavailableAfter int

	// Cooldown is how long an unavailable provider sits out before it
	// receives a single probe request. Default: 1m.
	Cooldown time.Duration

	// AttemptTimeout bounds one provider's attempt, including its
	// internal retries. Default: 30s.
	AttemptTimeout time.Duration
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		UnavailableAfter: 3,
		Cooldown:         1 * time.Minute,
		AttemptTimeout:   30 * time.Second,
	}
}

// ProviderHealth is a point-in-time snapshot of one provider's state.
type ProviderHealth struct {
	Provider            string
	State               HealthState
	ConsecutiveFailures int
	LastFailure         time.Time
}

// ProviderFailure records one provider's failure during an Invoke.
type ProviderFailure struct {
	Provider string
	Err      error
}

func (f ProviderFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Provider, f.Err)
}

func (f ProviderFailure) Unwrap() error { return f.Err }

// AllProvidersExhaustedError is returned when every candidate provider
// failed or was sidelined. Failures holds one entry per attempted
// provider in the order they were tried.
type AllProvidersExhaustedError struct {
	Failures []ProviderFailure
}

func (e *AllProvidersExhaustedError) Error() string {
	if len(e.Failures) == 0 {
		return "all LLM providers exhausted"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return "all LLM providers exhausted: " + strings.Join(parts, "; ")
}

// Unwrap returns the last failure's cause.
func (e *AllProvidersExhaustedError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}

// Router fails over between providers in preference order, tracking each
// provider's health. A provider moves to Degraded on its first failure and
// to Unavailable after UnavailableAfter consecutive failures; unavailable
// providers are skipped until Cooldown elapses, then admitted for exactly
// one probe. Any success restores Healthy.
type Router struct {
	cfg     RouterConfig
	entries []*routerEntry
	now     func() time.Time
}

type routerEntry struct {
	name string
	p    Provider

	mu                  sync.Mutex
	state               HealthState
	consecutiveFailures int
	lastFailure         time.Time
	probing             bool
}

// NewRouter creates an empty Router. Add providers in preference order.
func NewRouter(cfg RouterConfig) *Router {
	def := DefaultRouterConfig()
	if cfg.UnavailableAfter <= 0 {
		cfg.UnavailableAfter = def.UnavailableAfter
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}
	return &Router{cfg: cfg, now: time.Now}
}

// Add registers a provider at the end of the preference order.
func (r *Router) Add(name string, p Provider) {
	r.entries = append(r.entries, &routerEntry{name: name, p: p})
}

// Invoke tries each admitted provider in order until one succeeds.
// The caller's context cancellation aborts immediately; a single
// provider timing out does not. When every candidate fails, the
// returned error is an *AllProvidersExhaustedError carrying each
// provider's failure.
func (r *Router) Invoke(ctx context.Context, req Request) (*Response, error) {
	var failures []ProviderFailure

	for _, e := range r.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.admit(r.cfg, r.now()) {
			continue
		}

		resp, err := r.attempt(ctx, e, req)
		if err == nil {
			e.succeed()
			return resp, nil
		}

		// The caller's own deadline or cancellation is not the
		// provider's fault.
		if ctxErr := ctx.Err(); ctxErr != nil {
			e.release()
			return nil, ctxErr
		}

		// A rejected request is the caller's fault, not the provider's:
		// record the failure but leave the provider's health alone.
		var invReq *ErrInvalidRequest
		if errors.As(err, &invReq) {
			e.release()
		} else {
			e.fail(r.cfg, r.now())
		}

		failures = append(failures, ProviderFailure{Provider: e.name, Err: err})
	}

	return nil, &AllProvidersExhaustedError{Failures: failures}
}

func (r *Router) attempt(ctx context.Context, e *routerEntry, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
	defer cancel()
	return e.p.Generate(ctx, req)
}

// Health returns a snapshot of every provider's state in preference
// order. It never mutates router state.
func (r *Router) Health() []ProviderHealth {
	out := make([]ProviderHealth, 0, len(r.entries))
	for _, e := range r.entries {
		e.mu.Lock()
		out = append(out, ProviderHealth{
			Provider:            e.name,
			State:               e.state,
			ConsecutiveFailures: e.consecutiveFailures,
			LastFailure:         e.lastFailure,
		})
		e.mu.Unlock()
	}
	return out
}

// admit reports whether the entry may serve a request right now. An
// unavailable entry past its cooldown is admitted as a probe; the probing
// flag keeps concurrent Invokes from piling onto a sidelined provider.
func (e *routerEntry) admit(cfg RouterConfig, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Unavailable {
		return true
	}
	if e.probing || now.Sub(e.lastFailure) < cfg.Cooldown {
		return false
	}
	e.probing = true
	return true
}

func (e *routerEntry) succeed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Healthy
	e.consecutiveFailures = 0
	e.probing = false
}

func (e *routerEntry) fail(cfg RouterConfig, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consecutiveFailures++
	e.lastFailure = now
	e.probing = false
	if e.consecutiveFailures >= cfg.UnavailableAfter {
		e.state = Unavailable
	} else {
		e.state = Degraded
	}
}

// release clears the probing flag without recording an outcome, for
// attempts aborted by the caller's context.
func (e *routerEntry) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.probing = false
}
