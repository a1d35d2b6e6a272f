package inventory

import (
	"context"
	"time"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

// BatchUseCase recepción de lotes y corrección manual de stock.
type BatchUseCase struct {
	batchRepo   repository.BatchRepository
	productRepo repository.ProductRepository
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(batchRepo repository.BatchRepository, productRepo repository.ProductRepository) *BatchUseCase {
	return &BatchUseCase{batchRepo: batchRepo, productRepo: productRepo}
}

// Create registra un lote recibido. El número de lote es único (domain.ErrDuplicate).
func (uc *BatchUseCase) Create(ctx context.Context, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	if in.ProductCode <= 0 || in.BatchNumber <= 0 || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	exp, err := time.Parse(dto.DateLayout, in.ExpirationDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByCode(ctx, in.ProductCode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	batch := &entity.Batch{
		ProductCode:    in.ProductCode,
		ProductName:    product.Name,
		Stock:          in.Stock,
		BatchNumber:    in.BatchNumber,
		ExpirationDate: exp,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// GetByID obtiene un lote; domain.ErrNotFound si no existe.
func (uc *BatchUseCase) GetByID(ctx context.Context, id int64) (*dto.BatchResponse, error) {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	return toBatchResponse(batch), nil
}

// List lista lotes en orden FEFO; productCode 0 = todos.
func (uc *BatchUseCase) List(ctx context.Context, productCode int64, limit, offset int) (*dto.BatchListResponse, error) {
	list, err := uc.batchRepo.List(ctx, productCode, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBatchResponse(b))
	}
	return &dto.BatchListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// UpdateStock corrección manual (conteo físico). Stock >= 0.
func (uc *BatchUseCase) UpdateStock(ctx context.Context, id int64, in dto.UpdateBatchStockRequest) (*dto.BatchResponse, error) {
	if in.Stock == nil || *in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.batchRepo.UpdateStock(ctx, id, *in.Stock); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Delete elimina un lote agotado; domain.ErrConflict si aún tiene stock.
func (uc *BatchUseCase) Delete(ctx context.Context, id int64) error {
	return uc.batchRepo.Delete(ctx, id)
}

func toBatchResponse(b *entity.Batch) *dto.BatchResponse {
	return &dto.BatchResponse{
		ID:             b.ID,
		ProductCode:    b.ProductCode,
		ProductName:    b.ProductName,
		Stock:          b.Stock,
		BatchNumber:    b.BatchNumber,
		ExpirationDate: b.ExpirationDate.Format(dto.DateLayout),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
