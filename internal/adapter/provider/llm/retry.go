package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy controls how a Completer is called.
type Policy struct {
	// Timeout bounds each attempt; 0 disables the bound.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a failure; 0 means one attempt.
	MaxRetries int
	// Backoff is the base delay of the exponential backoff.
	Backoff time.Duration
	// MaxTokens is applied to requests that do not set their own limit.
	MaxTokens int
}

type resilient struct {
	next   Completer
	policy Policy
	log    *slog.Logger
}

// WithRetry wraps next with the given policy. Cancellation of the caller's
// context is never retried.
func WithRetry(next Completer, policy Policy, logger *slog.Logger) Completer {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.Backoff <= 0 {
		policy.Backoff = 500 * time.Millisecond
	}
	return &resilient{
		next:   next,
		policy: policy,
		log:    logger.With("adapter", "llm"),
	}
}

func (r *resilient) Complete(ctx context.Context, req Request) (string, error) {
	if req.MaxTokens == 0 {
		req.MaxTokens = r.policy.MaxTokens
	}

	var (
		out     string
		attempt int
	)
	b := retry.WithMaxRetries(uint64(r.policy.MaxRetries), retry.NewExponential(r.policy.Backoff))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		var err error
		out, err = r.attempt(ctx, req)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return err
		}
		if attempt <= r.policy.MaxRetries {
			r.log.WarnContext(ctx, "llm retry", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (r *resilient) attempt(ctx context.Context, req Request) (string, error) {
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}
	return r.next.Complete(ctx, req)
}
