package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/reflex/inventario-api/internal/domain/entity"
)

// SeedDemo carga un catálogo pequeño con lotes vencidos, por vencer y vigentes respecto de now.
func (s *Store) SeedDemo(now time.Time) {
	today := entity.DateOf(now)
	products := []entity.Product{
		{Code: 1, Name: "Acetaminofén 500mg", Description: "Caja x 100 tabletas", Price: decimal.NewFromInt(12500)},
		{Code: 2, Name: "Ibuprofeno 400mg", Description: "Caja x 50 tabletas", Price: decimal.NewFromInt(18900)},
		{Code: 3, Name: "Suero oral", Description: "Botella 500ml", Price: decimal.RequireFromString("4200.50")},
	}
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		s.PutProduct(p)
	}

	batches := []entity.Batch{
		{ProductCode: 1, Stock: 10, BatchNumber: 1001, ExpirationDate: today.AddDate(0, 0, -2)},
		{ProductCode: 1, Stock: 40, BatchNumber: 1002, ExpirationDate: today.AddDate(0, 0, 5)},
		{ProductCode: 1, Stock: 100, BatchNumber: 1003, ExpirationDate: today.AddDate(0, 6, 0)},
		{ProductCode: 2, Stock: 25, BatchNumber: 2001, ExpirationDate: today.AddDate(0, 0, 1)},
		{ProductCode: 2, Stock: 60, BatchNumber: 2002, ExpirationDate: today.AddDate(1, 0, 0)},
		{ProductCode: 3, Stock: 30, BatchNumber: 3001, ExpirationDate: today},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range batches {
		b := batches[i]
		b.ID = s.st.nextBatchID
		b.CreatedAt = now
		b.UpdatedAt = now
		s.st.nextBatchID++
		s.st.batches[b.ID] = &b
	}
}
