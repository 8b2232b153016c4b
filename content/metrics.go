package content

import (
	"time"

	"github.com/rs/zerolog"
)

// Metrics receives timing and size observations from the database. The
// pipeline only measures; aggregation and emission belong to the
// implementation behind this interface.
//
// Implementations must be safe for concurrent use; observations are reported
// from the database's owner goroutine.
type Metrics interface {
	// ObserveCommitSize records the number of operations in a submitted mutation.
	ObserveCommitSize(operations int)

	// ObserveCommitDuration records submission-to-completion wall time of a
	// successful commit.
	ObserveCommitDuration(elapsed time.Duration)

	// ObserveLoadDuration records the wall time of a LoadContent or
	// LoadContentByPrefix call.
	ObserveLoadDuration(elapsed time.Duration)

	// ObserveLoadKeysDuration records the wall time of a LoadAllKeys call.
	ObserveLoadKeysDuration(elapsed time.Duration)

	// ObserveKeyCount records the number of keys returned by a successful
	// LoadAllKeys call.
	ObserveKeyCount(keys int)
}

// NopMetrics discards every observation. It is the default.
type NopMetrics struct{}

func (NopMetrics) ObserveCommitSize(int)                 {}
func (NopMetrics) ObserveCommitDuration(time.Duration)   {}
func (NopMetrics) ObserveLoadDuration(time.Duration)     {}
func (NopMetrics) ObserveLoadKeysDuration(time.Duration) {}
func (NopMetrics) ObserveKeyCount(int)                   {}

// LogMetrics writes every observation as a debug-level structured log line.
type LogMetrics struct {
	logger zerolog.Logger
}

// NewLogMetrics returns a LogMetrics writing to the given logger.
func NewLogMetrics(logger zerolog.Logger) *LogMetrics {
	return &LogMetrics{logger: logger}
}

func (m *LogMetrics) ObserveCommitSize(operations int) {
	m.logger.Debug().Int("operations", operations).Msg("commit submitted")
}

func (m *LogMetrics) ObserveCommitDuration(elapsed time.Duration) {
	m.logger.Debug().Dur("elapsed", elapsed).Msg("commit completed")
}

func (m *LogMetrics) ObserveLoadDuration(elapsed time.Duration) {
	m.logger.Debug().Dur("elapsed", elapsed).Msg("content loaded")
}

func (m *LogMetrics) ObserveLoadKeysDuration(elapsed time.Duration) {
	m.logger.Debug().Dur("elapsed", elapsed).Msg("keys loaded")
}

func (m *LogMetrics) ObserveKeyCount(keys int) {
	m.logger.Debug().Int("keys", keys).Msg("key count observed")
}
