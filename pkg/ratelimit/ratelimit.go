// Package ratelimit, inspection API için key bazlı (IP veya token subject) rate limiting.
//
// Fixed window: her key için pencere başlangıcı ve sayaç tutulur. Pencere
// dolunca sayaç sıfırlanır. Süresi dolmuş bucket'lar arka planda temizlenir.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (leaf dependency);
// middleware ve ws handler aynı limiter'ı import cycle olmadan kullanır.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket, bir key için istek sayacı ve pencere başlangıcı.
type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter, key bazlı rate limiter.
//
//	limiter := ratelimit.New(120, time.Minute)
//	defer limiter.Close()
//	if !limiter.Allow(ip) { return 429 }
type Limiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	limit       int
	window      time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New, limiter oluşturur ve temizleme goroutine'ini başlatır.
// limit <= 0 ise Allow her zaman true döner.
func New(limit int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets:     make(map[string]*bucket),
		limit:       limit,
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	if limit > 0 && window > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow, key için bir istek sayar; limit aşıldıysa false döner.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= l.window {
		l.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	b.count++
	return b.count <= l.limit
}

// RetryAfter, key'in penceresinin sıfırlanmasına kalan süre (Retry-After header'ı için).
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		return 0
	}

	remaining := l.window - l.now().Sub(b.windowStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Close, temizleme goroutine'ini durdurur.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.stopCleanup)
	})
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup, penceresi dolmuş bucket'ları siler.
func (l *Limiter) cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, key)
		}
	}
}

// ExtractIP, request'ten client IP'sini çıkarır.
// Öncelik: X-Forwarded-For (ilk IP), X-Real-IP, RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
