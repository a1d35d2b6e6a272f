package repository

import (
	"context"

	"github.com/reflex/inventario-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de productos usado por el núcleo (DIP).
type ProductRepository interface {
	GetByCode(ctx context.Context, code int64) (*entity.Product, error)
	ListByCodes(ctx context.Context, codes []int64) ([]*entity.Product, error)
}
