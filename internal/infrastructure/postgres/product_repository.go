package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto y asigna su código. El catálogo se administra fuera de esta API;
// se usa para cargas iniciales.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING code`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code int64) (*entity.Product, error) {
	query := `
		SELECT code, name, description, price, created_at, updated_at
		FROM products WHERE code = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, code).Scan(
		&p.Code, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListByCodes productos existentes entre codes.
func (r *ProductRepo) ListByCodes(ctx context.Context, codes []int64) ([]*entity.Product, error) {
	if len(codes) == 0 {
		return []*entity.Product{}, nil
	}
	query := `
		SELECT code, name, description, price, created_at, updated_at
		FROM products WHERE code = ANY($1) ORDER BY code`
	rows, err := r.q.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0, len(codes))
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.Code, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list products scan: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
