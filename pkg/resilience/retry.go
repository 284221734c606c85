package resilience

import (
	"math/rand"
	"time"
)

// jitter applies full jitter to a backoff delay to prevent retry storms from
// synchronising across callers.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d))) + d/2
}
