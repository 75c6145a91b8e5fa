package publisher

import (
	"context"

	"github.com/nexusmart/storefront/internal/domain"
	"go.uber.org/zap"
)

// LogPublisher records orders in the log. Used when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishOrderPlaced(_ context.Context, event domain.OrderPlaced) error {
	p.logger.Info("order placed",
		zap.String("event_type", EventTypeOrderPlaced),
		zap.String("order_id", event.OrderID),
		zap.String("session_id", event.SessionID),
		zap.Int("items", len(event.Items)),
		zap.String("total", event.Summary.Total.StringFixed(2)),
		zap.String("currency", event.Currency))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
