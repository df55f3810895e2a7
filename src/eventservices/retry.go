package eventservices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     uint64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 4 * time.Second,
		MaxInterval:     10 * time.Second,
		MaxAttempts:     3,
	}
}

// HTTPStatusError is returned for a non 2xx upstream response. 4xx
// responses other than 429 are not retried.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected http status %s", e.Status)
}

func (e *HTTPStatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Retry calls fn with exponential backoff until it succeeds, returns a
// permanent error, the attempts are used up or ctx is done. MaxAttempts
// counts the first call.
func Retry[T any](ctx context.Context, policy RetryPolicy, name string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval
	b.MaxElapsedTime = 0

	var retries uint64
	if policy.MaxAttempts > 1 {
		retries = policy.MaxAttempts - 1
	}

	operation := func() (T, error) {
		result, err := fn()
		if err != nil {
			var statusErr *HTTPStatusError
			if errors.As(err, &statusErr) && !statusErr.Temporary() {
				return result, backoff.Permanent(err)
			}
		}

		return result, err
	}

	notify := func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"operation": name,
			"wait":      wait,
		}).Warnf("retrying after error: %v", err)
	}

	return backoff.RetryNotifyWithData(operation, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx), notify)
}
