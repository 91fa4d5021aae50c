// Package ai wraps the text generation provider used for match scoring and
// recommendation copy. Every call is bounded by a timeout and a rate limit,
// and callers are expected to degrade to deterministic output on failure.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/logging"
	"golang.org/x/time/rate"
)

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("text generation disabled")

const (
	DefaultTimeout = 10 * time.Second
	DefaultRate    = 2.0
	DefaultBurst   = 4
)

// Options bound provider usage.
type Options struct {
	Timeout time.Duration
	// RatePerSecond <= 0 disables rate limiting.
	RatePerSecond float64
	Burst         int
}

// Guard decorates a TextGenerator with a per-call timeout, a rate limit and
// call metrics. A Guard over a nil generator reports ErrDisabled.
type Guard struct {
	gen     TextGenerator
	timeout time.Duration
	limiter *rate.Limiter
	log     logging.Logger
}

func NewGuard(gen TextGenerator, opts Options, log logging.Logger) *Guard {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if log == nil {
		log = logging.Nop()
	}

	g := &Guard{gen: gen, timeout: opts.Timeout, log: log.With("module", "ai")}
	if opts.RatePerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst)
	}
	return g
}

// Enabled reports whether a provider is configured.
func (g *Guard) Enabled() bool {
	return g != nil && g.gen != nil
}

// GenerateText calls the provider. Failures are wrapped as common.ErrDependency.
func (g *Guard) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !g.Enabled() {
		callsTotal.WithLabelValues(outcomeDisabled).Inc()
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			callsTotal.WithLabelValues(outcomeThrottled).Inc()
			return "", common.Dependency("text generation", fmt.Errorf("rate limiter: %w", err))
		}
	}

	start := time.Now()
	text, err := g.gen.GenerateText(ctx, prompt)
	callDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		callsTotal.WithLabelValues(outcomeTimeout).Inc()
		return "", common.Dependency("text generation", err)
	case err != nil:
		callsTotal.WithLabelValues(outcomeError).Inc()
		return "", common.Dependency("text generation", err)
	}

	callsTotal.WithLabelValues(outcomeOK).Inc()
	return strings.TrimSpace(text), nil
}

// TextOr returns generated text, or fallback when the provider is disabled,
// fails, times out or returns nothing.
func (g *Guard) TextOr(ctx context.Context, prompt, fallback string) string {
	text, err := g.GenerateText(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrDisabled) {
			g.log.Warn(ctx, "text generation failed, using fallback", "error", err)
		}
		return fallback
	}
	if text == "" {
		return fallback
	}
	return text
}
