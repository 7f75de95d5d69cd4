package checkout

import (
	"context"
	"log/slog"
)

// NoticeKind is the tone of a user-facing message
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notifier shows a toast or banner to the shopper
type Notifier interface {
	Notify(ctx context.Context, kind NoticeKind, title, message string)
}

// LogNotifier writes notices to a logger, for headless runs
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs the notice
func (n LogNotifier) Notify(ctx context.Context, kind NoticeKind, title, message string) {
	level := slog.LevelInfo
	switch kind {
	case NoticeWarning:
		level = slog.LevelWarn
	case NoticeError:
		level = slog.LevelError
	}
	n.Logger.Log(ctx, level, title, "notice", kind, "detail", message)
}

// NopNotifier discards notices
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(context.Context, NoticeKind, string, string) {}
