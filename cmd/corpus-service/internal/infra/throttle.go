package infra

import (
	"context"
	"sync"
	"time"
)

// Throttle 出站调用节流门
//
// 远端语料/生成服务按项目维度限额，因此进程内所有出站调用共用一个
// 容量为1的令牌桶：距上次调用不足最小间隔时阻塞等待。并发调用方
// 在锁内预订各自的时间槽，保证不会有两个调用同时放行。
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewThrottle 创建节流门
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Throttle{interval: interval}
}

// Wait 阻塞直到本次调用可以发出
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()

	var wait time.Duration
	if now.Before(t.next) {
		wait = t.next.Sub(now)
		t.next = t.next.Add(t.interval)
	} else {
		t.next = now.Add(t.interval)
	}
	t.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
