package metadata

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Recorder is the zerolog-backed MetadataSink used in production. One
// recorder serves the whole process; it is safe for concurrent use because
// zerolog loggers are.
type Recorder struct {
	logger zerolog.Logger
}

func NewRecorder(component string, w io.Writer) Recorder {
	logger := zerolog.New(w).With().
		Timestamp().
		Str("component", component).
		Logger()
	return Recorder{logger: logger}
}

func (r *Recorder) RecordFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	crawlDepth int,
) {
	r.logger.Debug().
		Str("url", fetchURL).
		Int("status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("depth", crawlDepth).
		Msg("fetch")
}

func (r *Recorder) RecordError(
	at time.Time,
	component string,
	callerMethod string,
	cause ErrorCause,
	message string,
	attrs []Attribute,
) {
	evt := r.logger.Warn().
		Time("at", at).
		Str("in", component).
		Str("method", callerMethod).
		Str("cause", cause.String())
	for _, a := range attrs {
		evt = evt.Str(string(a.Key()), a.Value())
	}
	evt.Msg(message)
}

func (r *Recorder) RecordModeSwitch(from string, to string, at time.Time) {
	r.logger.Info().
		Str("from", from).
		Str("to", to).
		Time("at", at).
		Msg("mode switch")
}

func (r *Recorder) RecordSessionStart(sessionID string, seedCount int) {
	r.logger.Info().
		Str("session", sessionID).
		Int("seeds", seedCount).
		Msg("session start")
}

func (r *Recorder) RecordSessionEnd(sessionID string, pages int, errors int, duration time.Duration) {
	r.logger.Info().
		Str("session", sessionID).
		Int("pages", pages).
		Int("errors", errors).
		Dur("duration", duration).
		Msg("session end")
}

// NopSink discards every event. Test helper.
type NopSink struct{}

func (NopSink) RecordFetch(string, int, time.Duration, string, int)                     {}
func (NopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
func (NopSink) RecordModeSwitch(string, string, time.Time)                             {}
func (NopSink) RecordSessionStart(string, int)                                         {}
func (NopSink) RecordSessionEnd(string, int, int, time.Duration)                       {}
