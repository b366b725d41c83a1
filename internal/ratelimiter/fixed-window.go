package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type Limiter interface {
	// Allow reports whether key may proceed and, if not, how long to wait.
	Allow(key string) (bool, time.Duration)
}

type window struct {
	start time.Time
	count int
}

type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window // key: client IP
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewFixedWindowLimiter(limit int, w time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     time.Now,
	}
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	win, ok := rl.clients[key]
	if !ok || now.Sub(win.start) >= rl.window {
		rl.clients[key] = &window{start: now, count: 1}
		rl.sweep(now)
		return true, 0
	}

	if win.count < rl.limit {
		win.count++
		return true, 0
	}

	return false, win.start.Add(rl.window).Sub(now)
}

// sweep drops expired windows so idle clients do not accumulate.
// Called with the lock held.
func (rl *FixedWindowRateLimiter) sweep(now time.Time) {
	if len(rl.clients) < 1024 {
		return
	}
	for k, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, k)
		}
	}
}
