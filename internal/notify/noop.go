package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded alerts. It is used
// when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards alerts with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Send logs and discards an alert.
func (n *NoOpNotifier) Send(_ context.Context, alert Alert) error {
	n.log.Debug("notification discarded (no backend configured)",
		"title", alert.Title,
		"provider", alert.Provider,
		"severity", alert.Severity,
	)
	return nil
}
