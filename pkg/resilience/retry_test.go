package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	}, func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustion(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryPolicy{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	}, func() error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, attempts, "首次尝试加两次重试")
}

func TestRetryNonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	err := RetryWithFixedDelay(context.Background(), 5, time.Millisecond,
		func(err error) bool { return errors.Is(err, errTransient) },
		func() error {
			attempts++
			return errPermanent
		})

	assert.ErrorIs(t, err, errPermanent)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 1, attempts)
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Retry(ctx, RetryPolicy{
		MaxRetries:   10,
		InitialDelay: 10 * time.Millisecond,
	}, func() error {
		attempts++
		cancel()
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetryOnRetryCallback(t *testing.T) {
	var delays []time.Duration
	_ = Retry(context.Background(), RetryPolicy{
		MaxRetries:        2,
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 2.0,
		OnRetry: func(_ int, _ error, delay time.Duration) {
			delays = append(delays, delay)
		},
	}, func() error {
		return errTransient
	})

	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
}
