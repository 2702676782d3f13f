package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/config"
	"github.com/spec-kit/warranty-service/internal/events"
)

// NotificationService turns domain events into outbound notifications.
// Delivery is log-based for now; the handlers are the seam where an
// email or webhook sender plugs in.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{cfg: cfg, logger: logger}
}

// RegisterHandlers subscribes the notification handlers on the
// dispatcher. Call once at startup.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
	dispatcher.Subscribe(events.EventPaymentProcessed, s.onPaymentProcessed)
	dispatcher.Subscribe(events.EventWarrantyExpiring, s.onWarrantyExpiring)
}

func (s *NotificationService) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket created",
		zap.String("ticket_id", payload.TicketID),
		zap.String("ticket_number", payload.TicketNumber),
		zap.Bool("warranty_covered", payload.WarrantyCovered),
		zap.String("from", s.cfg.EmailFrom))
	return nil
}

func (s *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket assigned",
		zap.String("ticket_id", payload.TicketID),
		zap.String("technician_id", payload.TechnicianID))
	return nil
}

func (s *NotificationService) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket status changed",
		zap.String("ticket_id", payload.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}

func (s *NotificationService) onPaymentProcessed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PaymentProcessedPayload)
	if !ok {
		return nil
	}
	fields := []zap.Field{zap.String("ticket_id", payload.TicketID)}
	if payload.Amount != nil {
		fields = append(fields, zap.Float64("amount", *payload.Amount))
	}
	s.logger.Info("notify: payment processed", fields...)
	return nil
}

func (s *NotificationService) onWarrantyExpiring(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.WarrantyExpiringPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: warranty expiring",
		zap.String("product_id", payload.ProductID),
		zap.String("owner_id", payload.OwnerID),
		zap.Time("expires_at", payload.ExpiresAt),
		zap.String("threshold", payload.Threshold))
	return nil
}
