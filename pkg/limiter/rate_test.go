package limiter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TheBoringRats/ratcrowler/pkg/limiter"
)

func TestResolveDelay_UnknownHostWaitsNothing(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(time.Second)

	assert.Equal(t, time.Duration(0), r.ResolveDelay("never-seen.test"))
}

func TestResolveDelay_AfterFetchEnforcesBaseDelay(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(time.Hour)
	r.SetRandomSeed(1)

	r.MarkLastFetchAsNow("a.test")

	d := r.ResolveDelay("a.test")
	assert.Greater(t, d, 59*time.Minute)
	assert.LessOrEqual(t, d, time.Hour)
}

func TestResolveDelay_JitterStaysWithinBound(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(time.Hour)
	r.SetJitter(time.Minute)
	r.SetRandomSeed(1)

	r.MarkLastFetchAsNow("a.test")

	for i := 0; i < 100; i++ {
		d := r.ResolveDelay("a.test")
		assert.LessOrEqual(t, d, time.Hour+time.Minute)
		assert.Greater(t, d, 59*time.Minute)
	}
}

func TestResolveDelay_ElapsedTimeSubtracted(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(50 * time.Millisecond)
	r.SetRandomSeed(1)

	r.MarkLastFetchAsNow("a.test")
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, time.Duration(0), r.ResolveDelay("a.test"))
}

func TestResolveDelay_HostsAreIndependent(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(time.Hour)
	r.SetRandomSeed(1)

	r.MarkLastFetchAsNow("a.test")

	assert.Greater(t, r.ResolveDelay("a.test"), time.Duration(0))
	assert.Equal(t, time.Duration(0), r.ResolveDelay("b.test"))
}
