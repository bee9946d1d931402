package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers a user-facing notification. Delivery is fire-and-forget:
// implementations return an error for the caller to log, but callers must not
// retry or abort an evaluation pass because one dispatch failed.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// LogNotifier writes notifications to the structured log. It is the default
// sink and the test stand-in for a platform notification service.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, title, body string) error {
	n.logger.Info("notification", "title", title, "body", body)
	return nil
}
