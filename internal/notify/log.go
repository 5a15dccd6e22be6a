package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

// LogSender writes notifications to the log; used when no broker is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n domain.Notification) error {
	zap.L().Info("notification",
		zap.String("notification_id", n.ID),
		zap.Int64("user_id", n.UserID),
		zap.String("category", string(n.Category)),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.Int64("related_entity_id", n.RelatedEntityID),
		zap.String("action_url", n.ActionURL),
	)
	return nil
}
