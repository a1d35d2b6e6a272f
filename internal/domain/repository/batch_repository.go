package repository

import (
	"context"
	"time"

	"github.com/reflex/inventario-api/internal/domain/entity"
)

// BatchRepository puerto del almacén de lotes. Las implementaciones aceptan pool o tx,
// de modo que ApplyDeductions participe en la transacción de aprobación.
type BatchRepository interface {
	// FindAllocatable lotes del producto con stock > 0 ordenados por vencimiento y luego por ID.
	// minQuantity es solo una pista: se puede cortar cuando el stock acumulado la cubre.
	FindAllocatable(ctx context.Context, productCode int64, minQuantity int) ([]*entity.Batch, error)
	// ApplyDeductions aplica todos los descuentos o ninguno. Devuelve domain.ErrConcurrentModification
	// si algún lote ya no tiene el stock esperado.
	ApplyDeductions(ctx context.Context, deductions []entity.Deduction) error
	FindExpiredAsOf(ctx context.Context, date time.Time) ([]*entity.Batch, error)
	FindExpiringBetween(ctx context.Context, start, end time.Time) ([]*entity.Batch, error)

	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id int64) (*entity.Batch, error)
	List(ctx context.Context, productCode int64, limit, offset int) ([]*entity.Batch, error)
	UpdateStock(ctx context.Context, id int64, stock int) error
	Delete(ctx context.Context, id int64) error
}
