package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/eshop-service/internal/config"
	"github.com/spec-kit/eshop-service/internal/events"
)

// NotificationEvents lists the event types NotificationService reacts to.
var NotificationEvents = []events.EventType{
	events.EventUserRegistered,
	events.EventOrderPlaced,
	events.EventOrderStatusChanged,
}

// NotificationService turns domain events into customer notifications.
// Delivery is stubbed out as debug logs.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle routes event to its notification channels. Unknown types are ignored.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventUserRegistered:
		n.logger.Info("UserRegistered", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
		n.sendEmail(ctx, event)
	case events.EventOrderPlaced:
		n.logger.Info("OrderPlaced", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
		n.sendEmail(ctx, event)
		n.sendWebhook(ctx, event)
	case events.EventOrderStatusChanged:
		n.logger.Info("OrderStatusChanged", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
		n.sendEmail(ctx, event)
	}
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("actor_id", event.ActorID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("actor_id", event.ActorID),
		zap.String("event_type", string(event.Type)))
}
