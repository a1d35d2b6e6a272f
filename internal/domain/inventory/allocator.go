package inventory

import (
	"context"

	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
)

// BatchFinder lectura de lotes asignables (subconjunto de repository.BatchRepository).
type BatchFinder interface {
	FindAllocatable(ctx context.Context, productCode int64, minQuantity int) ([]*entity.Batch, error)
}

// Allocator planifica descuentos FEFO sin mutar el almacén.
type Allocator struct {
	finder BatchFinder
}

// NewAllocator construye el planificador sobre el finder (pool o tx).
func NewAllocator(finder BatchFinder) *Allocator {
	return &Allocator{finder: finder}
}

// Plan obtiene los lotes asignables del producto y calcula el plan FEFO para quantity.
func (a *Allocator) Plan(ctx context.Context, productCode int64, quantity int) (*entity.AllocationPlan, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	batches, err := a.finder.FindAllocatable(ctx, productCode, quantity)
	if err != nil {
		return nil, err
	}
	return PlanFEFO(productCode, quantity, batches)
}

// PlanFEFO recorre los lotes en el orden recibido (vencimiento ascendente) tomando
// min(restante, stock) de cada uno hasta cubrir quantity. Si no alcanza devuelve
// *domain.ShortageError y ningún plan parcial.
func PlanFEFO(productCode int64, quantity int, batches []*entity.Batch) (*entity.AllocationPlan, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	plan := &entity.AllocationPlan{ProductCode: productCode, Requested: quantity}
	remaining := quantity
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		if b.Stock <= 0 {
			continue
		}
		take := min(remaining, b.Stock)
		plan.Deductions = append(plan.Deductions, entity.Deduction{
			BatchID:        b.ID,
			BatchNumber:    b.BatchNumber,
			ExpirationDate: b.ExpirationDate,
			Quantity:       take,
			ExpectedStock:  b.Stock,
		})
		remaining -= take
	}
	if remaining > 0 {
		return nil, &domain.ShortageError{
			ProductCode: productCode,
			Requested:   quantity,
			Available:   quantity - remaining,
		}
	}
	return plan, nil
}

// MergePlans une los descuentos de varios planes en un solo conjunto, en orden de plan.
// Un lote repetido se acumula en su primera aparición conservando el stock esperado original.
func MergePlans(plans ...*entity.AllocationPlan) []entity.Deduction {
	var merged []entity.Deduction
	index := make(map[int64]int)
	for _, p := range plans {
		if p == nil {
			continue
		}
		for _, d := range p.Deductions {
			if i, ok := index[d.BatchID]; ok {
				merged[i].Quantity += d.Quantity
				continue
			}
			index[d.BatchID] = len(merged)
			merged = append(merged, d)
		}
	}
	return merged
}
