package inventory

import (
	"context"
	"time"

	"github.com/reflex/inventario-api/internal/domain/entity"
)

// ExpirationReader consultas de solo lectura que usa el monitor de vencimientos.
type ExpirationReader interface {
	FindExpiredAsOf(ctx context.Context, date time.Time) ([]*entity.Batch, error)
	FindExpiringBetween(ctx context.Context, start, end time.Time) ([]*entity.Batch, error)
}

// Notifier entrega alertas sin bloquear. Devuelve false si la alerta se descartó
// (cola llena o notificador cerrado).
type Notifier interface {
	Notify(alert entity.ExpirationAlert) bool
}
