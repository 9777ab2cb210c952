package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes messages to the logger instead of a push service.
// Used when push_mode is "log" (local development, staging without FCM keys).
type LogTransport struct {
	Log *zap.Logger
}

var _ Transport = LogTransport{}

func (t LogTransport) Deliver(_ context.Context, msg Message) error {
	t.Log.Info("push (log transport)",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data))
	return nil
}
