package notify

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the logger instead of delivering them. It is
// the default when no provider is configured in development.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		slog.String("channel", string(msg.Channel)),
		slog.String("to", msg.To),
		slog.String("event", msg.Event),
		slog.String("subject", msg.Subject),
		slog.String("license", msg.LicenseMask),
	)
	return nil
}
