package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/internal/schedule"
)

// fixedClock returns a clock pinned to the given instant.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func shippedConfig(t *testing.T) config.Config {
	t.Helper()
	// backlink at 6,12,18,0; crawling everywhere else
	crawling := make([]int, 0, 20)
	for h := 0; h < 24; h++ {
		switch h {
		case 0, 6, 12, 18:
			continue
		}
		crawling = append(crawling, h)
	}
	cfg, err := config.WithDefault().
		WithBacklinkHours([]int{6, 12, 18, 0}).
		WithCrawlingHours(crawling).
		Build()
	require.NoError(t, err)
	return cfg
}

func TestCurrentMode_ByHour(t *testing.T) {
	cfg := shippedConfig(t)

	tests := []struct {
		hour int
		want schedule.Mode
	}{
		{6, schedule.ModeBacklinkProcessing},
		{0, schedule.ModeBacklinkProcessing},
		{7, schedule.ModeCrawling},
		{23, schedule.ModeCrawling},
	}
	for _, tt := range tests {
		at := time.Date(2025, 3, 10, tt.hour, 30, 0, 0, time.UTC)
		s := schedule.NewScheduler(cfg, fixedClock(at))
		assert.Equal(t, tt.want, s.CurrentMode(), "hour %d", tt.hour)
	}
}

func TestCurrentMode_IdleWhenHourInNeitherSet(t *testing.T) {
	cfg, err := config.WithDefault().
		WithBacklinkHours([]int{6}).
		WithCrawlingHours([]int{12}).
		Build()
	require.NoError(t, err)

	s := schedule.NewScheduler(cfg, fixedClock(time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, schedule.ModeIdle, s.CurrentMode())
}

func TestCurrentMode_PureInClockAndConfig(t *testing.T) {
	cfg := shippedConfig(t)
	at := time.Date(2025, 3, 10, 12, 45, 11, 0, time.UTC)

	a := schedule.NewScheduler(cfg, fixedClock(at))
	b := schedule.NewScheduler(cfg, fixedClock(at))

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.CurrentMode(), b.CurrentMode())
		assert.Equal(t, a.NextModeSwitch(), b.NextModeSwitch())
	}
}

func TestNextModeSwitch_AtHalfPastSix(t *testing.T) {
	cfg := shippedConfig(t)

	// 06:30 is inside a backlink window; the next differing hour is 07:00.
	s := schedule.NewScheduler(cfg, fixedClock(time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC), s.NextModeSwitch())
}

func TestNextModeSwitch_CrossesMidnight(t *testing.T) {
	cfg := shippedConfig(t)

	// 23:10 is crawling; midnight flips to backlink processing.
	s := schedule.NewScheduler(cfg, fixedClock(time.Date(2025, 3, 10, 23, 10, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), s.NextModeSwitch())
}

func TestNextModeSwitch_ConstantScheduleFallsBackOneDay(t *testing.T) {
	var all []int
	for h := 0; h < 24; h++ {
		all = append(all, h)
	}
	cfg, err := config.WithDefault().
		WithBacklinkHours(nil).
		WithCrawlingHours(all).
		Build()
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	s := schedule.NewScheduler(cfg, fixedClock(now))
	assert.Equal(t, now.Truncate(time.Hour).Add(24*time.Hour), s.NextModeSwitch())
}

func TestTimeUntilSwitch(t *testing.T) {
	cfg := shippedConfig(t)
	s := schedule.NewScheduler(cfg, fixedClock(time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)))
	assert.Equal(t, 30*time.Minute, s.TimeUntilSwitch())
}
