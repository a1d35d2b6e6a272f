package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `b.id, b.product_code, p.name, b.stock, b.batch_number, b.expiration_date, b.created_at, b.updated_at`

// FindAllocatable lotes con stock en orden FEFO. El acumulado previo (ventana) corta la lista
// en cuanto los lotes anteriores ya cubren minQuantity.
func (r *BatchRepo) FindAllocatable(ctx context.Context, productCode int64, minQuantity int) ([]*entity.Batch, error) {
	query := `
		SELECT id, product_code, name, stock, batch_number, expiration_date, created_at, updated_at
		FROM (
			SELECT ` + batchColumns + `,
				COALESCE(SUM(b.stock) OVER (
					ORDER BY b.expiration_date, b.id
					ROWS BETWEEN UNBOUNDED PRECEDING AND 1 PRECEDING
				), 0) AS stock_before
			FROM product_batches b
			JOIN products p ON p.code = b.product_code
			WHERE b.product_code = $1 AND b.stock > 0
		) fefo
		WHERE $2::bigint <= 0 OR stock_before < $2::bigint
		ORDER BY expiration_date, id`
	return r.list(ctx, "find allocatable", query, productCode, minQuantity)
}

// ApplyDeductions descuenta con check-and-set: cada UPDATE exige el stock observado al planificar.
// Si alguna fila no coincide se revierte todo y se devuelve domain.ErrConcurrentModification.
func (r *BatchRepo) ApplyDeductions(ctx context.Context, deductions []entity.Deduction) error {
	if len(deductions) == 0 {
		return nil
	}
	query := `
		UPDATE product_batches
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock = $3`
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		for _, d := range deductions {
			if d.Quantity <= 0 || d.Quantity > d.ExpectedStock {
				return domain.ErrInvalidInput
			}
			tag, err := tx.Exec(ctx, query, d.BatchID, d.Quantity, d.ExpectedStock)
			if err != nil {
				return fmt.Errorf("apply deduction batch %d: %w", d.BatchID, err)
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrConcurrentModification
			}
		}
		return nil
	})
}

// FindExpiredAsOf lotes con vencimiento <= date, con o sin stock.
func (r *BatchRepo) FindExpiredAsOf(ctx context.Context, date time.Time) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM product_batches b
		JOIN products p ON p.code = b.product_code
		WHERE b.expiration_date <= $1::date
		ORDER BY b.expiration_date, b.id`
	return r.list(ctx, "find expired", query, entity.DateOf(date))
}

// FindExpiringBetween lotes con start <= vencimiento <= end.
func (r *BatchRepo) FindExpiringBetween(ctx context.Context, start, end time.Time) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM product_batches b
		JOIN products p ON p.code = b.product_code
		WHERE b.expiration_date BETWEEN $1::date AND $2::date
		ORDER BY b.expiration_date, b.id`
	return r.list(ctx, "find expiring", query, entity.DateOf(start), entity.DateOf(end))
}

// Create persiste un lote recibido y asigna su ID.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	query := `
		INSERT INTO product_batches (product_code, stock, batch_number, expiration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		batch.ProductCode, batch.Stock, batch.BatchNumber, entity.DateOf(batch.ExpirationDate),
		batch.CreatedAt, batch.UpdatedAt,
	).Scan(&batch.ID)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(ctx context.Context, id int64) (*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM product_batches b
		JOIN products p ON p.code = b.product_code
		WHERE b.id = $1`
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// List lotes en orden FEFO; productCode 0 lista todos, limit 0 sin límite.
func (r *BatchRepo) List(ctx context.Context, productCode int64, limit, offset int) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM product_batches b
		JOIN products p ON p.code = b.product_code
		WHERE ($1::bigint = 0 OR b.product_code = $1::bigint)
		ORDER BY b.expiration_date, b.id
		LIMIT NULLIF($2::int, 0) OFFSET $3`
	return r.list(ctx, "list batches", query, productCode, limit, offset)
}

// UpdateStock corrección manual del stock de un lote.
func (r *BatchRepo) UpdateStock(ctx context.Context, id int64, stock int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE product_batches SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update batch stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un lote sin stock.
func (r *BatchRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM product_batches WHERE id = $1 AND stock = 0`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *BatchRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := []*entity.Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.ProductCode, &b.ProductName, &b.Stock, &b.BatchNumber,
		&b.ExpirationDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.ExpirationDate = entity.DateOf(b.ExpirationDate)
	return &b, nil
}
