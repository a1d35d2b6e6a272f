package orders

import (
	"context"

	"github.com/reflex/inventario-api/internal/domain/repository"
)

// TxRunner ejecuta la aprobación dentro de una transacción, pasando repositorios atados a ella.
// Orden y lotes se escriben juntos: o se confirma todo o nada.
type TxRunner interface {
	RunApproval(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error) error
}
