package llm

import (
	"errors"
	"math/rand"
	"strings"
	"time"
)

// ErrBudgetExceeded marks a request refused because the daily token budget
// is spent. Never retried; callers degrade instead.
var ErrBudgetExceeded = errors.New("daily token budget exceeded")

type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxWait        time.Duration
	JitterFraction float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		BaseDelay:      time.Second,
		MaxWait:        30 * time.Second,
		JitterFraction: 0.25,
	}
}

// Delay returns the backoff before retrying the given zero-based attempt:
// base * 2^attempt capped at MaxWait, plus uniform jitter up to
// JitterFraction of MaxWait.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay << uint(attempt)
	if delay > p.MaxWait || delay <= 0 {
		delay = p.MaxWait
	}
	if p.JitterFraction > 0 {
		delay += time.Duration(rand.Float64() * p.JitterFraction * float64(p.MaxWait))
	}
	return delay
}

var retryableSignatures = []string{
	"429",
	"rate limit",
	"ratelimit",
	"rate-limit",
	"quota",
	"resource exhausted",
	"resource_exhausted",
	"too many requests",
}

// IsRetryable classifies a model failure. Only rate-limit-class errors are
// retried; anything else propagates immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, signature := range retryableSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}
	return false
}
