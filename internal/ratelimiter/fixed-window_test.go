package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindow(t *testing.T) {
	rl := NewFixedWindowLimiter(2, time.Minute)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("1.2.3.4"); !ok {
			t.Fatalf("request %d rejected", i+1)
		}
	}

	now = base.Add(20 * time.Second)
	ok, retry := rl.Allow("1.2.3.4")
	if ok {
		t.Fatal("third request in window allowed")
	}
	if retry != 40*time.Second {
		t.Fatalf("retry after = %s, want 40s", retry)
	}

	if ok, _ := rl.Allow("5.6.7.8"); !ok {
		t.Fatal("other client was limited")
	}

	now = base.Add(time.Minute)
	if ok, _ := rl.Allow("1.2.3.4"); !ok {
		t.Fatal("request in new window rejected")
	}
}
