package trisync

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/pipz"
)

// Option modifies the request pipeline for reliability features.
type Option func(pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest]

// WithRetry adds retry logic to the pipeline.
// Failed requests are retried up to maxAttempts times.
func WithRetry(maxAttempts int) Option {
	return func(pipeline pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest] {
		return pipz.NewRetry("retry", pipeline, maxAttempts)
	}
}

// WithBackoff adds retry logic with exponential backoff to the pipeline.
// The delay starts at baseDelay and doubles after each failure.
func WithBackoff(maxAttempts int, baseDelay time.Duration) Option {
	return func(pipeline pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest] {
		return pipz.NewBackoff("backoff", pipeline, maxAttempts, baseDelay)
	}
}

// WithTimeout adds timeout protection to the pipeline. Note that for
// CLI-backed adapters this only stops waiting for the result; the
// underlying process is not guaranteed to stop.
func WithTimeout(duration time.Duration) Option {
	return func(pipeline pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest] {
		return pipz.NewTimeout("timeout", pipeline, duration)
	}
}

// WithCircuitBreaker adds circuit breaker protection to the pipeline.
// After 'failures' consecutive failures, the circuit opens for 'recovery'.
func WithCircuitBreaker(failures int, recovery time.Duration) Option {
	return func(pipeline pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest] {
		return pipz.NewCircuitBreaker("circuit-breaker", pipeline, failures, recovery)
	}
}

// WithRateLimit adds rate limiting to the pipeline.
// rps = requests per second, burst = burst capacity.
func WithRateLimit(rps float64, burst int) Option {
	return func(pipeline pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest] {
		rateLimiter := pipz.NewRateLimiter[*SyncRequest]("rate-limit", rps, burst)
		return pipz.NewSequence("rate-limited", rateLimiter, pipeline)
	}
}

// WithErrorHandler adds error handling to the pipeline.
// The handler receives error context and can log or alert as needed.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*SyncRequest]]) Option {
	return func(pipeline pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest] {
		return pipz.NewHandle("error-handler", pipeline, handler)
	}
}

// WithDebug prints the rendered prompt and the raw response.
func WithDebug() Option {
	return func(pipeline pipz.Chainable[*SyncRequest]) pipz.Chainable[*SyncRequest] {
		return pipz.Apply("debug", func(ctx context.Context, req *SyncRequest) (*SyncRequest, error) {
			fmt.Println("\n=== DEBUG: Prompt ===")
			fmt.Println(req.Prompt)
			fmt.Println("=====================")

			processed, err := pipeline.Process(ctx, req)
			if err != nil {
				fmt.Printf("\n=== DEBUG: Error ===\n%v\n==================\n\n", err)
				return processed, err
			}

			fmt.Println("\n=== DEBUG: Raw Response ===")
			fmt.Println(processed.Response)
			fmt.Println("===========================")

			return processed, nil
		})
	}
}
