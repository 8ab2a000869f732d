package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleFirstCallImmediate(t *testing.T) {
	throttle := NewThrottle(100 * time.Millisecond)

	start := time.Now()
	err := throttle.Wait(context.Background())

	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestThrottleSpacesCalls(t *testing.T) {
	interval := 50 * time.Millisecond
	throttle := NewThrottle(interval)

	start := time.Now()
	for i := 0; i < 3; i++ {
		assert.NoError(t, throttle.Wait(context.Background()))
	}
	elapsed := time.Since(start)

	// 首次立即放行，后两次各等一个间隔
	assert.GreaterOrEqual(t, elapsed, 2*interval)
}

// 并发调用各自预订时间槽，总耗时不塌缩
func TestThrottleConcurrentReservations(t *testing.T) {
	interval := 30 * time.Millisecond
	throttle := NewThrottle(interval)

	const callers = 4
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, throttle.Wait(context.Background()))
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), time.Duration(callers-1)*interval)
}

func TestThrottleContextCancel(t *testing.T) {
	throttle := NewThrottle(time.Hour)

	// 占掉第一个槽
	assert.NoError(t, throttle.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := throttle.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThrottleDefaultInterval(t *testing.T) {
	throttle := NewThrottle(0)
	assert.Equal(t, 2*time.Second, throttle.interval)
}
