package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

/*
會有突刺問題
*/
type FixedWindow struct {
	LimiterConfig
	count     atomic.Int32
	startedAt time.Time
	mu        sync.RWMutex
	now       clock
}

func NewFixedWindow(config LimiterConfig) *FixedWindow {
	return newFixedWindow(config, time.Now)
}

func newFixedWindow(config LimiterConfig, now clock) *FixedWindow {
	return &FixedWindow{
		LimiterConfig: config.withDefaults(),
		startedAt:     now(),
		now:           now,
	}
}

func (w *FixedWindow) Allow() bool {
	current := w.now()
	w.mu.RLock()
	needReset := current.Sub(w.startedAt) >= w.Window
	w.mu.RUnlock()

	if needReset {
		w.mu.Lock()
		if current.Sub(w.startedAt) >= w.Window {
			w.count.Store(0)
			w.startedAt = current
		}
		w.mu.Unlock()
	}

	for {
		count := w.count.Load()
		if count+1 > int32(w.Capacity) {
			return false
		}
		if w.count.CompareAndSwap(count, count+1) {
			return true
		}
	}
}
