package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-reservation-service/internal/events"
)

// NotificationService handles emitting notifications for booking events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCustomerRegistered, n.handleCustomerRegistered)
	n.dispatcher.Subscribe(events.EventReservationCreated, n.handleReservationCreated)
	n.dispatcher.Subscribe(events.EventReservationRejected, n.handleReservationRejected)
}

func (n *NotificationService) handleCustomerRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("CustomerRegistered", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleReservationCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ReservationCreated", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleReservationRejected(ctx context.Context, event events.Event) error {
	n.logger.Warn("ReservationRejected", zap.Any("payload", event.Payload))
	return nil
}
