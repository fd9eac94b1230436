package engine

import "github.com/sirupsen/logrus"

// LoopOption is a functional option applied to a frame loop during construction.
type LoopOption func(*frameLoop)

// WithLogger sets the log entry the loop and its stats tracker write through.
//
// Parameters:
//   - log: the logrus entry (defaults to the standard logger)
//
// Returns:
//   - LoopOption: a function that applies the logger option to a frame loop
func WithLogger(log *logrus.Entry) LoopOption {
	return func(l *frameLoop) {
		l.log = log
	}
}

// WithStats replaces the loop's stats tracker, mainly so tests can silence it.
//
// Parameters:
//   - stats: the stats tracker
//
// Returns:
//   - LoopOption: a function that applies the stats option to a frame loop
func WithStats(stats *Stats) LoopOption {
	return func(l *frameLoop) {
		l.stats = stats
	}
}
