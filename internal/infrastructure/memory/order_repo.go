package memory

import (
	"context"
	"sort"
	"time"

	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación en memoria de repository.OrderRepository.
type OrderRepo struct {
	sess *session
}

func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	return r.sess.write(func(st *state) error {
		order.Number = st.nextOrderNumber
		st.nextOrderNumber++
		st.orders[order.Number] = copyOrder(order)
		return nil
	})
}

// GetByNumber devuelve (nil, nil) si la orden no existe.
func (r *OrderRepo) GetByNumber(ctx context.Context, number int64) (*entity.Order, error) {
	var out *entity.Order
	r.sess.read(func(st *state) {
		if o, ok := st.orders[number]; ok {
			out = copyOrder(o)
		}
	})
	return out, nil
}

// GetForUpdate en memoria no bloquea: MarkApproved revalida el estado al confirmar.
func (r *OrderRepo) GetForUpdate(ctx context.Context, number int64) (*entity.Order, error) {
	return r.GetByNumber(ctx, number)
}

func (r *OrderRepo) ListByKind(ctx context.Context, kind entity.OrderKind, limit, offset int) ([]*entity.Order, error) {
	out := []*entity.Order{}
	r.sess.read(func(st *state) {
		for _, o := range st.orders {
			if o.Kind == kind {
				out = append(out, copyOrder(o))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return page(out, limit, offset), nil
}

func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	updated := copyOrder(order)
	return r.sess.write(func(st *state) error {
		current, ok := st.orders[updated.Number]
		if !ok {
			return domain.ErrNotFound
		}
		if current.Approved {
			return domain.ErrOrderApproved
		}
		updated.Approved = false
		updated.ApprovedAt = nil
		updated.CreatedAt = current.CreatedAt
		st.orders[updated.Number] = copyOrder(updated)
		return nil
	})
}

// MarkApproved dentro de una transacción exige, al confirmar, que la orden siga igual a la
// leída al planificar; si cambió devuelve domain.ErrConcurrentModification.
func (r *OrderRepo) MarkApproved(ctx context.Context, number int64, approvedAt time.Time) error {
	var planned *entity.Order
	r.sess.read(func(st *state) {
		if o, ok := st.orders[number]; ok && r.sess.work != nil {
			planned = copyOrder(o)
		}
	})
	return r.sess.write(func(st *state) error {
		o, ok := st.orders[number]
		if !ok {
			return domain.ErrNotFound
		}
		if o.Approved {
			return domain.ErrAlreadyApproved
		}
		if planned != nil && !sameOrderContent(o, planned) {
			return domain.ErrConcurrentModification
		}
		at := approvedAt
		o.Approved = true
		o.ApprovedAt = &at
		o.UpdatedAt = approvedAt
		return nil
	})
}

func (r *OrderRepo) Delete(ctx context.Context, number int64) error {
	return r.sess.write(func(st *state) error {
		o, ok := st.orders[number]
		if !ok {
			return domain.ErrNotFound
		}
		if o.Approved {
			return domain.ErrOrderApproved
		}
		delete(st.orders, number)
		return nil
	})
}

func sameOrderContent(a, b *entity.Order) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) || len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		if a.Lines[i] != b.Lines[i] {
			return false
		}
	}
	return true
}
