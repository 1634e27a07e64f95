// Package push holds outbound push-notification senders.
package push

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the log instead of a push provider.
// It is the default sender for environments without provider credentials;
// every send succeeds, so no token is ever pruned through it.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs instead of pushing.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

// Send logs the notification payload.
func (n *LogNotifier) Send(ctx context.Context, deviceToken, title, body string) error {
	n.logger.InfoContext(ctx, "push notification",
		"device_token", deviceToken,
		"title", title,
		"body", body)
	return nil
}
