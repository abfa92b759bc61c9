package game

import (
	"testing"
	"time"
)

func TestRateLimiterDisabledAlwaysAllows(t *testing.T) {
	rl := NewRateLimiter(false, 1, time.Second)
	sid := NewEntityID()
	now := time.Unix(0, 0)

	for i := 0; i < 10; i++ {
		if !rl.Allow(sid, "command", now) {
			t.Fatal("disabled limiter must never reject")
		}
	}
}

func TestRateLimiterEnforcesLimitWithinWindow(t *testing.T) {
	rl := NewRateLimiter(true, 2, time.Second)
	sid := NewEntityID()
	now := time.Unix(0, 0)

	if !rl.Allow(sid, "command", now) {
		t.Fatal("first attempt should be allowed")
	}
	if !rl.Allow(sid, "command", now) {
		t.Fatal("second attempt should be allowed")
	}
	if rl.Allow(sid, "command", now) {
		t.Fatal("third attempt within the window should be rejected")
	}
}

func TestRateLimiterWindowSlidesOutStaleAttempts(t *testing.T) {
	rl := NewRateLimiter(true, 1, time.Second)
	sid := NewEntityID()
	now := time.Unix(0, 0)

	if !rl.Allow(sid, "command", now) {
		t.Fatal("first attempt should be allowed")
	}
	if rl.Allow(sid, "command", now.Add(500*time.Millisecond)) {
		t.Fatal("second attempt still within the window should be rejected")
	}
	if !rl.Allow(sid, "command", now.Add(2*time.Second)) {
		t.Fatal("attempt after the window elapses should be allowed")
	}
}

func TestRateLimiterBucketsAreIndependentPerOperation(t *testing.T) {
	rl := NewRateLimiter(true, 1, time.Second)
	sid := NewEntityID()
	now := time.Unix(0, 0)

	if !rl.Allow(sid, "command", now) {
		t.Fatal("first command attempt should be allowed")
	}
	if !rl.Allow(sid, "auth", now) {
		t.Fatal("a different operation should have its own budget")
	}
}

func TestRateLimiterBucketsAreIndependentPerSession(t *testing.T) {
	rl := NewRateLimiter(true, 1, time.Second)
	a, b := NewEntityID(), NewEntityID()
	now := time.Unix(0, 0)

	if !rl.Allow(a, "command", now) {
		t.Fatal("session a's first attempt should be allowed")
	}
	if !rl.Allow(b, "command", now) {
		t.Fatal("session b should have its own budget")
	}
}

func TestRateLimiterForgetClearsHistory(t *testing.T) {
	rl := NewRateLimiter(true, 1, time.Second)
	sid := NewEntityID()
	now := time.Unix(0, 0)

	rl.Allow(sid, "command", now)
	rl.Forget(sid)

	if !rl.Allow(sid, "command", now) {
		t.Fatal("forgetting a session should reset its budget")
	}
}

func TestRateLimiterNilReceiverIsSafe(t *testing.T) {
	var rl *RateLimiter
	if !rl.Allow(NewEntityID(), "command", time.Now()) {
		t.Fatal("a nil limiter should behave as disabled")
	}
	rl.Forget(NewEntityID())
}
