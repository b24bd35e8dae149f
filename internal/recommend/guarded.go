package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// GuardConfig configures the breaker and limiter around a Source.
type GuardConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a trial call.
	OpenTimeout time.Duration
	// RequestsPerMinute bounds the sustained call rate; zero disables limiting.
	RequestsPerMinute int
	// Burst is how many calls may go out back to back before the rate applies.
	// A curation run fetches every category back to back, so this should be at
	// least the number of categories.
	Burst int
}

// DefaultGuardConfig returns the defaults used by the CLI.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		FailureThreshold:  3,
		OpenTimeout:       30 * time.Second,
		RequestsPerMinute: 30,
		Burst:             3,
	}
}

// Guarded wraps a Source with a circuit breaker and a rate limiter.
type Guarded struct {
	next    Source
	cb      *gobreaker.CircuitBreaker[Batch]
	limiter *rate.Limiter
}

// NewGuarded wraps next.
func NewGuarded(next Source, cfg GuardConfig, logger *log.Logger) *Guarded {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}

	settings := gobreaker.Settings{
		Name:        "recommendation-source",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A cancelled caller says nothing about the source's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}

	g := &Guarded{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[Batch](settings),
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), max(cfg.Burst, 1))
	}
	return g
}

// GetCandidates implements Source.
func (g *Guarded) GetCandidates(ctx context.Context, category models.Category, limit int) (Batch, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return Batch{}, ctx.Err()
			}
			return Batch{}, fmt.Errorf("%w: rate limit: %v", ErrUnavailable, err)
		}
	}

	batch, err := g.cb.Execute(func() (Batch, error) {
		return g.next.GetCandidates(ctx, category, limit)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Batch{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return batch, err
}

// Name reports the wrapped source's name.
func (g *Guarded) Name() string {
	return SourceName(g.next)
}

// State reports the breaker state for status output.
func (g *Guarded) State() string {
	return g.cb.State().String()
}
