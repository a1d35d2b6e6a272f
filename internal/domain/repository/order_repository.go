package repository

import (
	"context"
	"time"

	"github.com/reflex/inventario-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia de órdenes (cabecera + líneas en una sola escritura).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByNumber(ctx context.Context, number int64) (*entity.Order, error)
	// GetForUpdate bloquea la orden hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, number int64) (*entity.Order, error)
	ListByKind(ctx context.Context, kind entity.OrderKind, limit, offset int) ([]*entity.Order, error)
	// Update reemplaza cabecera y líneas de una orden pendiente.
	Update(ctx context.Context, order *entity.Order) error
	// MarkApproved pasa la orden a aprobada; domain.ErrAlreadyApproved si ya lo estaba.
	MarkApproved(ctx context.Context, number int64, approvedAt time.Time) error
	Delete(ctx context.Context, number int64) error
}
