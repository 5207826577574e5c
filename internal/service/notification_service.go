package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/events"
)

// NotificationService logs lifecycle notifications for moderation
// events. It is the single events subscriber today; a webhook or SMS
// sender would register alongside it.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventListingValidated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventListingRejected, n.handleEvent)
	n.dispatcher.Subscribe(events.EventListingDeleted, n.handleEvent)
	n.dispatcher.Subscribe(events.EventUserDeleted, n.handleEvent)
	n.dispatcher.Subscribe(events.EventPaymentApproved, n.handleEvent)
	n.dispatcher.Subscribe(events.EventPaymentRejected, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("moderation event",
		zap.String("type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	return nil
}
