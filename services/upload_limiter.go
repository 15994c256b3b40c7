package services

import (
	"sync"
	"time"
)

// UploadLimiter enforces a per-device fixed window on photo uploads. It is an
// explicit, passed-in object with a scoped lifetime: constructed at startup,
// handed to the upload handler, stopped on shutdown.
type UploadLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	capacity int
	entries  map[string]*uploadWindow
	stop     chan struct{}
	stopOnce sync.Once
}

type uploadWindow struct {
	start    time.Time
	count    int
	lastSeen time.Time
}

func NewUploadLimiter(window time.Duration, capacity int) *UploadLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if capacity <= 0 {
		capacity = 30
	}
	l := &UploadLimiter{
		window:   window,
		capacity: capacity,
		entries:  make(map[string]*uploadWindow),
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the device may upload now, counting the attempt.
func (l *UploadLimiter) Allow(deviceID string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[deviceID]
	if !ok || now.Sub(w.start) >= l.window {
		l.entries[deviceID] = &uploadWindow{start: now, count: 1, lastSeen: now}
		return true
	}

	w.lastSeen = now
	if w.count >= l.capacity {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many uploads the device has left in the current
// window, for a rate-limit response header.
func (l *UploadLimiter) Remaining(deviceID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[deviceID]
	if !ok || time.Since(w.start) >= l.window {
		return l.capacity
	}
	remaining := l.capacity - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *UploadLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *UploadLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *UploadLimiter) cleanup() {
	cutoff := time.Now().Add(-10 * l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, w := range l.entries {
		if w.lastSeen.Before(cutoff) {
			delete(l.entries, id)
		}
	}
}
