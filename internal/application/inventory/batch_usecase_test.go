package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/application/inventory"
	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/infrastructure/memory"
)

func TestBatchUseCase(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutProduct(entity.Product{Code: 5, Name: "Avena"})
	uc := inventory.NewBatchUseCase(store.Batches(), store.Products())

	_, err := uc.Create(ctx, dto.CreateBatchRequest{ProductCode: 5, Stock: 3, BatchNumber: 1, ExpirationDate: "15-06-2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateBatchRequest{ProductCode: 6, Stock: 3, BatchNumber: 1, ExpirationDate: "2024-06-15"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := uc.Create(ctx, dto.CreateBatchRequest{ProductCode: 5, Stock: 3, BatchNumber: 1, ExpirationDate: "2024-06-15"})
	require.NoError(t, err)
	assert.Equal(t, "Avena", created.ProductName)
	assert.Equal(t, "2024-06-15", created.ExpirationDate)

	_, err = uc.Create(ctx, dto.CreateBatchRequest{ProductCode: 5, Stock: 1, BatchNumber: 1, ExpirationDate: "2024-07-01"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domain.ErrConflict)

	_, err = uc.UpdateStock(ctx, created.ID, dto.UpdateBatchStockRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	zero := 0
	updated, err := uc.UpdateStock(ctx, created.ID, dto.UpdateBatchStockRequest{Stock: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	list, err := uc.List(ctx, 5, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
