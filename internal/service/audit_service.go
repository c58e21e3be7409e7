package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/events"
	"github.com/spec-kit/market-portal/internal/observability"
)

// AuditService writes an audit trail of portal events to the log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionLoggedIn, a.handle)
	a.dispatcher.Subscribe(events.EventSessionInvalidated, a.handleInvalidated)
	a.dispatcher.Subscribe(events.EventOrderPlaced, a.handle)
	a.dispatcher.Subscribe(events.EventTransferCompleted, a.handle)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.metrics.RecordEvent(string(event.Type))
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("session", event.SessionID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleInvalidated(_ context.Context, event events.Event) error {
	a.metrics.RecordEvent(string(event.Type))
	a.logger.Warn(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("session", event.SessionID),
		zap.Any("payload", event.Payload))
	return nil
}
