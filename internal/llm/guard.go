package llm

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/SVPraveen1/health-ai-sub000/internal/errors"
)

// Completer is the narrow completion surface the rest of the server
// depends on.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
	CompleteStream(ctx context.Context, systemPrompt, userMessage string, onChunk func(string)) error
}

// Guard wraps a Completer with a per-minute rate limit and a circuit
// breaker. A tripped breaker fails fast with ErrCompletionUnavailable
// instead of stacking requests on a dead upstream; callers degrade to
// their non-assistant behavior.
type Guard struct {
	inner   Completer
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
}

// NewGuard builds a Guard allowing rpm requests per minute. rpm <= 0
// means unlimited.
func NewGuard(inner Completer, rpm int) *Guard {
	g := &Guard{inner: inner}

	if rpm > 0 {
		rps := float64(rpm) / 60.0
		burst := rpm / 10
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name: "completion",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return g
}

func (g *Guard) allow() error {
	if g.limiter != nil && !g.limiter.Allow() {
		return apperrors.ErrRateLimited
	}
	return nil
}

func mapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.ErrCompletionUnavailable
	}
	return err
}

func (g *Guard) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if err := g.allow(); err != nil {
		return "", err
	}

	result, err := g.breaker.Execute(func() (string, error) {
		return g.inner.Complete(ctx, systemPrompt, userMessage)
	})
	if err != nil {
		return "", mapBreakerErr(err)
	}
	return result, nil
}

func (g *Guard) CompleteStream(ctx context.Context, systemPrompt, userMessage string, onChunk func(string)) error {
	if err := g.allow(); err != nil {
		return err
	}

	_, err := g.breaker.Execute(func() (string, error) {
		return "", g.inner.CompleteStream(ctx, systemPrompt, userMessage, onChunk)
	})
	return mapBreakerErr(err)
}
