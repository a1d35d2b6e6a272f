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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
// Cabecera y líneas se escriben siempre en la misma (sub)transacción.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `number, kind, date, tax_rate, approved, approved_at,
	COALESCE(user_email, ''), COALESCE(provider_id, 0), created_at, updated_at`

// Create persiste cabecera y líneas y asigna el número de orden.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (kind, date, tax_rate, approved, approved_at, user_email, provider_id, created_at, updated_at)
		VALUES ($1, $2::date, $3, false, NULL, NULLIF($4, ''), NULLIF($5::bigint, 0), $6, $7)
		RETURNING number`
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			string(order.Kind), entity.DateOf(order.Date), order.TaxRate,
			order.UserEmail, order.ProviderID, order.CreatedAt, order.UpdatedAt,
		).Scan(&order.Number)
		if err != nil {
			return err
		}
		return insertLines(ctx, tx, order.Number, order.Lines)
	})
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByNumber obtiene una orden con sus líneas.
func (r *OrderRepo) GetByNumber(ctx context.Context, number int64) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
}

// GetForUpdate obtiene la orden y bloquea su fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, number int64) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1 FOR UPDATE`, number)
}

// ListByKind lista órdenes de un tipo por número ascendente; limit 0 sin límite.
func (r *OrderRepo) ListByKind(ctx context.Context, kind entity.OrderKind, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders WHERE kind = $1
		ORDER BY number
		LIMIT NULLIF($2::int, 0) OFFSET $3`
	rows, err := r.q.Query(ctx, query, string(kind), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list := []*entity.Order{}
	byNumber := map[int64]*entity.Order{}
	numbers := []int64{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("list orders scan: %w", err)
		}
		list = append(list, o)
		byNumber[o.Number] = o
		numbers = append(numbers, o.Number)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(numbers) == 0 {
		return list, nil
	}

	lineRows, err := r.q.Query(ctx, `
		SELECT order_number, product_code, quantity
		FROM order_lines WHERE order_number = ANY($1)
		ORDER BY order_number, position`, numbers)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var number int64
		var l entity.OrderLine
		if err := lineRows.Scan(&number, &l.ProductCode, &l.Quantity); err != nil {
			return nil, fmt.Errorf("list order lines scan: %w", err)
		}
		if o := byNumber[number]; o != nil {
			o.Lines = append(o.Lines, l)
		}
	}
	return list, lineRows.Err()
}

// Update reemplaza cabecera y líneas de una orden pendiente.
func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET date = $2::date, tax_rate = $3, user_email = NULLIF($4, ''),
			provider_id = NULLIF($5::bigint, 0), updated_at = $6
		WHERE number = $1 AND approved = false`
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			order.Number, entity.DateOf(order.Date), order.TaxRate,
			order.UserEmail, order.ProviderID, order.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return r.missingOrApproved(ctx, tx, order.Number, domain.ErrOrderApproved)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_number = $1`, order.Number); err != nil {
			return err
		}
		return insertLines(ctx, tx, order.Number, order.Lines)
	})
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// MarkApproved pasa la orden a aprobada solo si aún estaba pendiente.
func (r *OrderRepo) MarkApproved(ctx context.Context, number int64, approvedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE orders SET approved = true, approved_at = $2, updated_at = $2
		WHERE number = $1 AND approved = false`, number, approvedAt)
	if err != nil {
		return fmt.Errorf("approve order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrApproved(ctx, r.q, number, domain.ErrAlreadyApproved)
	}
	return nil
}

// Delete elimina una orden pendiente (las líneas caen en cascada).
func (r *OrderRepo) Delete(ctx context.Context, number int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE number = $1 AND approved = false`, number)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrApproved(ctx, r.q, number, domain.ErrOrderApproved)
	}
	return nil
}

func (r *OrderRepo) get(ctx context.Context, query string, number int64) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_code, quantity FROM order_lines
		WHERE order_number = $1 ORDER BY position`, number)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ProductCode, &l.Quantity); err != nil {
			return nil, fmt.Errorf("get order lines scan: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

// missingOrApproved distingue por qué un UPDATE/DELETE condicionado no tocó filas.
func (r *OrderRepo) missingOrApproved(ctx context.Context, q Querier, number int64, approvedErr error) error {
	var approved bool
	err := q.QueryRow(ctx, `SELECT approved FROM orders WHERE number = $1`, number).Scan(&approved)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if approved {
		return approvedErr
	}
	return domain.ErrConflict
}

func insertLines(ctx context.Context, tx pgx.Tx, number int64, lines []entity.OrderLine) error {
	for i, l := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_lines (order_number, position, product_code, quantity)
			VALUES ($1, $2, $3, $4)`, number, i+1, l.ProductCode, l.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o    entity.Order
		kind string
	)
	err := row.Scan(&o.Number, &kind, &o.Date, &o.TaxRate, &o.Approved, &o.ApprovedAt,
		&o.UserEmail, &o.ProviderID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Kind = entity.OrderKind(kind)
	o.Date = entity.DateOf(o.Date)
	return &o, nil
}
