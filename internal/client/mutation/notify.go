package mutation

import (
	"context"
	"log/slog"
)

// Notifier surfaces mutation outcomes to the user.
type Notifier interface {
	Success(ctx context.Context, message string)
	Failure(ctx context.Context, message string, err error)
}

// LogNotifier writes outcomes to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Success(ctx context.Context, message string) {
	n.Logger.InfoContext(ctx, message)
}

func (n LogNotifier) Failure(ctx context.Context, message string, err error) {
	n.Logger.ErrorContext(ctx, message, "error", err)
}
