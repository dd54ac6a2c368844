package revocation

import (
	"fmt"
	"time"

	"registrar/pkg/platform/sentinel"
)

// Clock returns the current time. Stores default to time.Now.
type Clock func() time.Time

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
