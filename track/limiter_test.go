package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksAtMax(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)
	defer rl.stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("1.2.3.4"), "request %d should pass", i+1)
	}
	assert.False(t, rl.allow("1.2.3.4"), "request over the limit must be blocked")
}

func TestRateLimiterIsPerKey(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()

	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"), "another key has its own budget")
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := newRateLimiter(1, 50*time.Millisecond)
	defer rl.stop()

	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))

	time.Sleep(80 * time.Millisecond)
	assert.True(t, rl.allow("1.2.3.4"), "expired hits must not count")
}
