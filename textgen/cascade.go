// Package textgen produces text completions through an ordered fallback
// cascade of generation providers: local Ollama first (free, optionally
// unavailable), then Groq, then Gemini as the last resort.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrAllProvidersFailed means every configured provider exhausted its
// retries or was skipped.
var ErrAllProvidersFailed = errors.New("all text generation providers failed")

// Options controls a single generation request.
type Options struct {
	Temperature float64
	JSONMode    bool
}

// Provider is one text-generation backend in the cascade.
type Provider interface {
	Name() string
	// Available reports whether the provider can be used at all: its
	// credential is present and, for local providers, its endpoint
	// answers a probe. The cascade caches the result per process.
	Available(ctx context.Context) bool
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Cascade tries providers in priority order with per-provider retry and
// exponential backoff. The availability probe result for each provider is
// cached for the lifetime of the Cascade and never re-checked, trading
// staleness for latency on every generation call.
type Cascade struct {
	providers []Provider
	vision    *OllamaProvider
	retries   int
	log       *zap.Logger

	mu        sync.Mutex
	available map[string]bool

	sleep func(context.Context, time.Duration) error
	rnd   *rand.Rand
}

// NewCascade builds a cascade over the given providers, in order. The
// optional vision provider serves image-grounded generation. retries is
// the per-provider retry budget; zero or negative falls back to the
// package default.
func NewCascade(providers []Provider, vision *OllamaProvider, retries int, log *zap.Logger) *Cascade {
	if retries <= 0 {
		retries = defaultRetries
	}
	return &Cascade{
		providers: providers,
		vision:    vision,
		retries:   retries,
		log:       log,
		available: make(map[string]bool),
		sleep:     sleepCtx,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate produces a completion, falling through the provider chain.
// It fails only when every provider has been skipped or exhausted.
func (c *Cascade) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var lastErr error

	for _, p := range c.providers {
		if !c.isAvailable(ctx, p) {
			c.log.Debug("provider skipped", zap.String("provider", p.Name()))
			continue
		}

		out, err := c.generateWithRetry(ctx, p, prompt, opts)
		if err == nil {
			return out, nil
		}
		lastErr = err
		c.log.Warn("provider exhausted, advancing cascade",
			zap.String("provider", p.Name()), zap.Error(err))
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: last error: %v", ErrAllProvidersFailed, lastErr)
	}
	return "", ErrAllProvidersFailed
}

// DescribeImage runs an image-grounded generation pass on the local vision
// provider. There is no fallback chain for vision; hosted providers in this
// cascade are text-only.
func (c *Cascade) DescribeImage(ctx context.Context, imageBase64, prompt string) (string, error) {
	if c.vision == nil || !c.isAvailable(ctx, c.vision) {
		return "", fmt.Errorf("%w: no vision provider reachable", ErrAllProvidersFailed)
	}
	return c.vision.GenerateWithImage(ctx, prompt, imageBase64)
}

func (c *Cascade) isAvailable(ctx context.Context, p Provider) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok, probed := c.available[p.Name()]; probed {
		return ok
	}
	ok := p.Available(ctx)
	c.available[p.Name()] = ok
	return ok
}

// generateWithRetry makes the initial call plus up to c.retries retries
// against a single provider. Unretryable errors short-circuit so the
// cascade can advance immediately.
func (c *Cascade) generateWithRetry(ctx context.Context, p Provider, prompt string, opts Options) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		out, err := p.Generate(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == c.retries || !IsRetryable(err) {
			break
		}

		delay := backoffDelay(attempt, c.rnd)
		c.log.Warn("provider call failed, retrying",
			zap.String("provider", p.Name()),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
