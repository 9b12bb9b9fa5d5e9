package service

import (
	"context"
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/infra/observability"
	"github.com/3dstuff/store-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var contactTracer = otel.Tracer("service/contact")

// ContactService delivers contact-form messages through the configured
// relay: the commerce backend, or the mail-relay fallback.
type ContactService struct {
	relay   port.ContactRelay
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewContact creates the contact service.
func NewContact(relay port.ContactRelay, metrics *observability.Metrics, logger *zap.Logger) *ContactService {
	return &ContactService{relay: relay, metrics: metrics, logger: logger}
}

// Send validates and delivers one contact message.
func (s *ContactService) Send(ctx context.Context, msg *domain.ContactMessage) error {
	ctx, span := contactTracer.Start(ctx, "ContactService.Send")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("contact_send", time.Since(start)) }()

	if err := msg.Validate(); err != nil {
		return err
	}

	if err := s.relay.SendContact(ctx, msg); err != nil {
		s.metrics.IncrExternalError("contact")
		s.logger.Error("contact message delivery failed",
			zap.String("email", msg.Email),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("contact message delivered", zap.String("email", msg.Email))
	return nil
}
