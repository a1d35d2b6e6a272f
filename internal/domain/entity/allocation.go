package entity

import "time"

// Deduction descuento de Quantity unidades sobre un lote. ExpectedStock es el stock observado
// al planificar; el almacén rechaza el descuento si el lote ya no tiene ese stock.
type Deduction struct {
	BatchID        int64
	BatchNumber    int64
	ExpirationDate time.Time
	Quantity       int
	ExpectedStock  int
}

// AllocationPlan plan FEFO de una línea de orden. Efímero: no se persiste.
type AllocationPlan struct {
	ProductCode int64
	Requested   int
	Deductions  []Deduction
}

// Total unidades cubiertas por el plan.
func (p *AllocationPlan) Total() int {
	total := 0
	for _, d := range p.Deductions {
		total += d.Quantity
	}
	return total
}
