package game

import "time"

// RateLimiter is a per-session, per-operation sliding-window limiter,
// generalized from the teacher's single fixed Player.allowCommand window
// (player.go) into independent named buckets so auth attempts, chat, and
// NPC planning each get their own budget (§4.E rate limiting).
type RateLimiter struct {
	enabled bool
	limit   int
	window  time.Duration
	history map[EntityID]map[string][]time.Time
}

// NewRateLimiter builds a limiter allowing limit operations per window per
// (session, operation) pair. enabled=false makes Allow always succeed,
// matching RATE_ENABLE defaulting off (§6.5).
func NewRateLimiter(enabled bool, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		enabled: enabled,
		limit:   limit,
		window:  window,
		history: map[EntityID]map[string][]time.Time{},
	}
}

// Allow reports whether sessionID may perform operation now, recording the
// attempt if so.
func (rl *RateLimiter) Allow(sessionID EntityID, operation string, now time.Time) bool {
	if rl == nil || !rl.enabled {
		return true
	}
	perOp, ok := rl.history[sessionID]
	if !ok {
		perOp = map[string][]time.Time{}
		rl.history[sessionID] = perOp
	}
	cutoff := now.Add(-rl.window)
	kept := perOp[operation][:0]
	for _, t := range perOp[operation] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= rl.limit {
		perOp[operation] = kept
		return false
	}
	perOp[operation] = append(kept, now)
	return true
}

// Forget drops all bucket state for a disconnected session (§5 cancellation:
// rate-limit counters are cleaned on world reload / session teardown).
func (rl *RateLimiter) Forget(sessionID EntityID) {
	if rl == nil {
		return
	}
	delete(rl.history, sessionID)
}
