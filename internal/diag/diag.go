// Package diag reports engine-internal conditions that are not errors in the
// Go sense (nothing returns an error) but that a caller running the engine
// in production will want surfaced, foremost among them the analysis thread
// falling behind the audio thread.
package diag

import "log"

// Sink receives diagnostic events emitted by the engine. Implementations
// must be safe to call from either the audio thread or the analysis thread.
type Sink interface {
	// TimingError is reported when a new analysis block is ready before the
	// previous one has been consumed: the analysis thread is not keeping up
	// with the audio thread, and the older, unconsumed block is overwritten
	// by the new one to maintain the real-time deadline.
	TimingError()
}

// StdLogSink is a Sink backed by the standard library logger, matching the
// "timing error" diagnostic printf of the original engine.
type StdLogSink struct {
	*log.Logger
}

// NewStdLogSink wraps logger (or log.Default() if nil) as a Sink.
func NewStdLogSink(logger *log.Logger) *StdLogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &StdLogSink{Logger: logger}
}

func (s *StdLogSink) TimingError() {
	s.Logger.Println("timing error")
}

// NopSink discards all diagnostics. It is the zero-value-friendly default
// for callers that don't care to observe timing behavior.
type NopSink struct{}

func (NopSink) TimingError() {}
