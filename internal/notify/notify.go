// Package notify delivers user-facing cart notifications (the toasts of the
// storefront) to a log, to Kafka, or to both.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Level is the severity shown to the shopper.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single message for the shopper.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	ProductID int       `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds a notification with a fresh id and the current time.
func New(level Level, message string, productID int) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		ProductID: productID,
		Timestamp: time.Now().UTC(),
	}
}

// Notifier is fire-and-forget: delivery problems are the notifier's to log.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications through slog.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "cart notification",
		slog.String("notification_id", n.ID),
		slog.String("level", string(n.Level)),
		slog.String("message", n.Message),
		slog.Int("product_id", n.ProductID),
	)
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}
