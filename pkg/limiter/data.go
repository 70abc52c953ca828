package limiter

import "time"

// timing-related data used to track when a host may be fetched again
type hostTiming struct {
	lastFetchAt time.Time
}

func (h *hostTiming) LastFetchAt() time.Time {
	return h.lastFetchAt
}
