package memory

import (
	"context"
	"time"

	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación en memoria de repository.BatchRepository.
type BatchRepo struct {
	sess *session
}

// FindAllocatable lotes con stock en orden FEFO; corta cuando el acumulado cubre minQuantity.
func (r *BatchRepo) FindAllocatable(ctx context.Context, productCode int64, minQuantity int) ([]*entity.Batch, error) {
	var out []*entity.Batch
	r.sess.read(func(st *state) {
		for _, b := range st.batches {
			if b.ProductCode == productCode && b.Stock > 0 {
				out = append(out, st.batchView(b))
			}
		}
	})
	sortFEFO(out)
	if minQuantity <= 0 {
		return out, nil
	}
	acc := 0
	for i, b := range out {
		acc += b.Stock
		if acc >= minQuantity {
			return out[:i+1], nil
		}
	}
	return out, nil
}

// ApplyDeductions valida todos los descuentos antes de aplicar alguno.
func (r *BatchRepo) ApplyDeductions(ctx context.Context, deductions []entity.Deduction) error {
	ds := append([]entity.Deduction(nil), deductions...)
	return r.sess.write(func(st *state) error {
		taken := make(map[int64]int, len(ds))
		for _, d := range ds {
			b, ok := st.batches[d.BatchID]
			if !ok || d.Quantity <= 0 || b.Stock != d.ExpectedStock {
				return domain.ErrConcurrentModification
			}
			taken[d.BatchID] += d.Quantity
			if taken[d.BatchID] > b.Stock {
				return domain.ErrConcurrentModification
			}
		}
		now := time.Now()
		for _, d := range ds {
			b := st.batches[d.BatchID]
			b.Stock -= d.Quantity
			b.UpdatedAt = now
		}
		return nil
	})
}

func (r *BatchRepo) FindExpiredAsOf(ctx context.Context, date time.Time) ([]*entity.Batch, error) {
	limit := entity.DateOf(date)
	return r.filter(func(b *entity.Batch) bool {
		return !entity.DateOf(b.ExpirationDate).After(limit)
	}), nil
}

func (r *BatchRepo) FindExpiringBetween(ctx context.Context, start, end time.Time) ([]*entity.Batch, error) {
	from, to := entity.DateOf(start), entity.DateOf(end)
	return r.filter(func(b *entity.Batch) bool {
		d := entity.DateOf(b.ExpirationDate)
		return !d.Before(from) && !d.After(to)
	}), nil
}

func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	if batch.Stock < 0 {
		return domain.ErrInvalidInput
	}
	return r.sess.write(func(st *state) error {
		if _, ok := st.products[batch.ProductCode]; !ok {
			return domain.ErrNotFound
		}
		for _, b := range st.batches {
			if b.BatchNumber == batch.BatchNumber {
				return domain.ErrDuplicate
			}
		}
		batch.ID = st.nextBatchID
		st.nextBatchID++
		stored := *batch
		stored.ProductName = ""
		st.batches[stored.ID] = &stored
		batch.ProductName = st.products[batch.ProductCode].Name
		return nil
	})
}

// GetByID devuelve (nil, nil) si el lote no existe.
func (r *BatchRepo) GetByID(ctx context.Context, id int64) (*entity.Batch, error) {
	var out *entity.Batch
	r.sess.read(func(st *state) {
		if b, ok := st.batches[id]; ok {
			out = st.batchView(b)
		}
	})
	return out, nil
}

// List lotes en orden FEFO; productCode 0 lista todos.
func (r *BatchRepo) List(ctx context.Context, productCode int64, limit, offset int) ([]*entity.Batch, error) {
	out := r.filter(func(b *entity.Batch) bool {
		return productCode == 0 || b.ProductCode == productCode
	})
	return page(out, limit, offset), nil
}

func (r *BatchRepo) UpdateStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		return domain.ErrInvalidInput
	}
	return r.sess.write(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		b.Stock = stock
		b.UpdatedAt = time.Now()
		return nil
	})
}

// Delete solo elimina lotes agotados.
func (r *BatchRepo) Delete(ctx context.Context, id int64) error {
	return r.sess.write(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		if b.Stock > 0 {
			return domain.ErrConflict
		}
		delete(st.batches, id)
		return nil
	})
}

func (r *BatchRepo) filter(keep func(*entity.Batch) bool) []*entity.Batch {
	out := []*entity.Batch{}
	r.sess.read(func(st *state) {
		for _, b := range st.batches {
			if keep(b) {
				out = append(out, st.batchView(b))
			}
		}
	})
	sortFEFO(out)
	return out
}
