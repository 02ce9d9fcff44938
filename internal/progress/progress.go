// Package progress posts human-readable run updates, mirroring the timeline
// entries an operator watches during a batch run. Updates are advisory: a
// failed post never fails the run.
package progress

import (
	"context"

	"github.com/jonesrussell/review-triage/internal/logger"
)

// Notifier posts a progress message for the current run.
type Notifier interface {
	Post(ctx context.Context, message string) error
}

// LogNotifier writes progress messages to the service log.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Post logs the message at info level. It never fails.
func (n *LogNotifier) Post(_ context.Context, message string) error {
	n.log.Info("progress", logger.String("message", message))
	return nil
}
