package schedule

/*
Responsibilities

- Map the current hour-of-day onto a mode
- Compute the next wall-clock instant at which the mode changes

CurrentMode is a pure function of (clock, config): equal inputs give equal
outputs. Transitions are observed by whoever polls — a missed tick delays
the transition but can never corrupt state, because there is no state.
*/

import (
	"time"

	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

type Scheduler struct {
	backlinkHours map[int]struct{}
	crawlingHours map[int]struct{}
	clock         timeutil.Clock
}

func NewScheduler(cfg config.Config, clock timeutil.Clock) *Scheduler {
	if clock == nil {
		clock = timeutil.UTCClock
	}
	return &Scheduler{
		backlinkHours: hourSet(cfg.BacklinkHours()),
		crawlingHours: hourSet(cfg.CrawlingHours()),
		clock:         clock,
	}
}

func hourSet(hours []int) map[int]struct{} {
	set := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		set[h] = struct{}{}
	}
	return set
}

// CurrentMode returns the mode the clock's hour falls into.
func (s *Scheduler) CurrentMode() Mode {
	return s.modeAt(s.clock())
}

func (s *Scheduler) modeAt(t time.Time) Mode {
	hour := t.Hour()
	if _, ok := s.backlinkHours[hour]; ok {
		return ModeBacklinkProcessing
	}
	if _, ok := s.crawlingHours[hour]; ok {
		return ModeCrawling
	}
	return ModeIdle
}

// NextModeSwitch returns the earliest instant at or after now whose hour
// resolves to a different mode. With a schedule that never changes mode,
// it falls back to one day out.
func (s *Scheduler) NextModeSwitch() time.Time {
	now := s.clock()
	current := s.modeAt(now)

	boundary := now.Truncate(time.Hour)
	for i := 1; i <= 24; i++ {
		candidate := boundary.Add(time.Duration(i) * time.Hour)
		if s.modeAt(candidate) != current {
			return candidate
		}
	}
	return boundary.Add(24 * time.Hour)
}

// TimeUntilSwitch is the remaining budget of the current mode; engines get
// this as their deadline.
func (s *Scheduler) TimeUntilSwitch() time.Duration {
	return s.NextModeSwitch().Sub(s.clock())
}
