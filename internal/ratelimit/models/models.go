package models

import "time"

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// NewResult derives the remaining budget and retry hint from a window that
// currently holds count attempts, the oldest of which was made at oldest.
func NewResult(allowed bool, count, limit int, oldest, now time.Time, window time.Duration) *RateLimitResult {
	resetAt := now.Add(window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(window)
	}
	res := &RateLimitResult{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
	}
	if !allowed {
		wait := resetAt.Sub(now)
		res.RetryAfter = max(int((wait+time.Second-1)/time.Second), 1)
	}
	return res
}
