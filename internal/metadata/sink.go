package metadata

import (
	"time"
)

/*
Metadata Collected
- Fetch timestamps, HTTP status codes, durations
- Mode switches
- Session lifecycles with final counts
- Classified errors

Metadata emission is observational only and MUST NOT influence
scheduling, retries, or crawl termination.
*/

// MetadataSink receives observational events from every pipeline stage.
type MetadataSink interface {
	RecordFetch(
		fetchURL string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		crawlDepth int,
	)

	RecordError(
		at time.Time,
		component string,
		callerMethod string,
		cause ErrorCause,
		message string,
		attrs []Attribute,
	)

	RecordModeSwitch(from string, to string, at time.Time)

	RecordSessionStart(sessionID string, seedCount int)

	RecordSessionEnd(sessionID string, pages int, errors int, duration time.Duration)
}
