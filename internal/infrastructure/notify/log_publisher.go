package notify

import (
	"context"

	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/pkg/logger"
)

// LogPublisher registra las alertas en el log estructurado. Siempre activo.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Name() string { return "log" }

func (p *LogPublisher) Publish(_ context.Context, alert entity.ExpirationAlert) error {
	p.log.Info().
		Str("alert_id", alert.ID).
		Str("kind", string(alert.Kind)).
		Int64("product_code", alert.ProductCode).
		Int64("batch_id", alert.BatchID).
		Str("expiration_date", alert.ExpirationDate).
		Msg(alert.Message)
	return nil
}
