package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewResult(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	t.Run("allowed result has no retry hint", func(t *testing.T) {
		res := NewResult(true, 3, 10, now.Add(-10*time.Second), now, time.Minute)
		assert.True(t, res.Allowed)
		assert.Equal(t, 7, res.Remaining)
		assert.Equal(t, now.Add(50*time.Second), res.ResetAt)
		assert.Zero(t, res.RetryAfter)
	})

	t.Run("denied result rounds the wait up to whole seconds", func(t *testing.T) {
		res := NewResult(false, 10, 10, now.Add(-59500*time.Millisecond), now, time.Minute)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, 1, res.RetryAfter)
	})

	t.Run("empty window resets a full window from now", func(t *testing.T) {
		res := NewResult(false, 0, 0, time.Time{}, now, time.Minute)
		assert.Equal(t, now.Add(time.Minute), res.ResetAt)
		assert.Equal(t, 60, res.RetryAfter)
	})
}
