package ratelimit

import (
	"sync"
	"time"
)

/*
使用鎖實現，高QPS請採用其他窗口策略
*/
type SlideWindow struct {
	LimiterConfig
	window []time.Time
	mu     sync.Mutex
	now    clock
}

func NewSlideWindow(config LimiterConfig) *SlideWindow {
	return newSlideWindow(config, time.Now)
}

func newSlideWindow(config LimiterConfig, now clock) *SlideWindow {
	return &SlideWindow{
		LimiterConfig: config.withDefaults(),
		window:        make([]time.Time, 0),
		now:           now,
	}
}

func (w *SlideWindow) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	validStart := len(w.window)
	for i, t := range w.window {
		if now.Sub(t) < w.Window {
			validStart = i
			break
		}
	}

	w.window = w.window[validStart:]
	if len(w.window) >= w.Capacity {
		return false
	}
	w.window = append(w.window, now)
	return true
}
