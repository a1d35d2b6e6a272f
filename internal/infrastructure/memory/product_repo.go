package memory

import (
	"context"

	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct {
	sess *session
}

// GetByCode devuelve (nil, nil) si el producto no existe.
func (r *ProductRepo) GetByCode(ctx context.Context, code int64) (*entity.Product, error) {
	var out *entity.Product
	r.sess.read(func(st *state) {
		if p, ok := st.products[code]; ok {
			cp := *p
			out = &cp
		}
	})
	return out, nil
}

// ListByCodes devuelve los productos existentes entre codes, sin repetir.
func (r *ProductRepo) ListByCodes(ctx context.Context, codes []int64) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(codes))
	seen := make(map[int64]bool, len(codes))
	r.sess.read(func(st *state) {
		for _, c := range codes {
			if seen[c] {
				continue
			}
			seen[c] = true
			if p, ok := st.products[c]; ok {
				cp := *p
				out = append(out, &cp)
			}
		}
	})
	return out, nil
}
