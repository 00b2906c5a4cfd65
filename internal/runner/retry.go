package runner

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/giantswarm/rag-compare/internal/llm"
)

// maxBackoff caps the delay between generation retries.
const maxBackoff = 10 * time.Second

// generateWithRetry issues a chat completion, retrying only retryable
// failures (rate limits, transient server faults) up to the configured
// bound. Authentication and validation failures surface immediately.
func (r *Runner) generateWithRetry(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := r.gen.ChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= r.cfg.MaxRetries || !llm.IsRetryableGeneration(err) {
			return nil, lastErr
		}

		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(backoffDelay(r.cfg.RetryBaseDelay, attempt+1, r.cfg.RetryJitter)):
		}
	}
}

// backoffDelay computes the exponential delay before retry number attempt
// (1-based). With jitter enabled the delay is drawn uniformly from
// (0, delay], spreading concurrent retries apart.
func backoffDelay(base time.Duration, attempt int, jitter bool) time.Duration {
	if base <= 0 {
		base = time.Millisecond
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			delay = maxBackoff
			break
		}
	}

	if jitter {
		delay = time.Duration(rand.Int64N(int64(delay))) + 1
	}
	return delay
}
