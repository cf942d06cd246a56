package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"docextract/internal/metrics"
	"docextract/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackClient tries providers in order, skipping those whose circuit is
// open after a rate limit. It implements port.ChatClient.
type FallbackClient struct {
	clients  []port.ChatClient
	circuits []*circuitState
	names    []string
	log      *zap.Logger
	now      func() time.Time
}

// NewFallbackClient creates a FallbackClient from an ordered list of clients and their names.
func NewFallbackClient(clients []port.ChatClient, names []string, log *zap.Logger) *FallbackClient {
	circuits := make([]*circuitState, len(clients))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FallbackClient{
		clients:  clients,
		circuits: circuits,
		names:    names,
		log:      log,
		now:      time.Now,
	}
}

func (f *FallbackClient) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, c := range f.clients {
		name := f.names[i]
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Debug("llm.FallbackClient: skipping provider",
				zap.String("provider", name), zap.Time("circuit_open_until", resetAt))
			metrics.LLMRequests.WithLabelValues(name, metrics.OutcomeSkipped).Inc()
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		start := time.Now()
		out, err := c.Complete(ctx, req)
		metrics.LLMRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.LLMRequests.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
			resp := *out
			if resp.Provider == "" {
				resp.Provider = name
			}
			return &resp, nil
		}

		f.log.Warn("llm.FallbackClient: provider failed", zap.String("provider", name), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			metrics.LLMRequests.WithLabelValues(name, metrics.OutcomeRateLimited).Inc()
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			metrics.LLMRequests.WithLabelValues(name, metrics.OutcomeError).Inc()
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	if len(f.clients) == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
