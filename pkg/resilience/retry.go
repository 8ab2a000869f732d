package resilience

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	// ErrMaxRetriesExceeded 超过最大重试次数
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// RetryPolicy 重试策略
type RetryPolicy struct {
	// MaxRetries 最大重试次数（不含首次尝试）
	MaxRetries int
	// InitialDelay 初始延迟
	InitialDelay time.Duration
	// MaxDelay 最大延迟
	MaxDelay time.Duration
	// BackoffMultiplier 退避乘数（1.0为固定间隔）
	BackoffMultiplier float64
	// RetryableErrors 可重试的错误判断函数，nil表示全部可重试
	RetryableErrors func(error) bool
	// OnRetry 重试回调
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry 执行带重试的函数
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		// 第一次尝试不延迟
		if attempt > 0 {
			delay := policy.calculateDelay(attempt)

			if policy.OnRetry != nil {
				policy.OnRetry(attempt, lastErr, delay)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		// 不可重试的错误立即返回
		if policy.RetryableErrors != nil && !policy.RetryableErrors(err) {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return errors.Join(ErrMaxRetriesExceeded, lastErr)
}

// calculateDelay 计算延迟时间
func (p *RetryPolicy) calculateDelay(attempt int) time.Duration {
	multiplier := p.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 1.0
	}

	delay := float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	return time.Duration(delay)
}

// RetryWithFixedDelay 固定间隔重试
func RetryWithFixedDelay(ctx context.Context, maxRetries int, delay time.Duration, retryable func(error) bool, fn func() error) error {
	policy := RetryPolicy{
		MaxRetries:        maxRetries,
		InitialDelay:      delay,
		MaxDelay:          delay,
		BackoffMultiplier: 1.0,
		RetryableErrors:   retryable,
	}
	return Retry(ctx, policy, fn)
}
