package dto

import "time"

// CreateBatchRequest body para POST /api/inventory/batches (recepción de inventario).
type CreateBatchRequest struct {
	ProductCode    int64  `json:"product_code"`
	Stock          int    `json:"stock"`
	BatchNumber    int64  `json:"batch_number"`
	ExpirationDate string `json:"expiration_date"` // YYYY-MM-DD
}

// UpdateBatchStockRequest corrección manual de stock.
type UpdateBatchStockRequest struct {
	Stock *int `json:"stock"`
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	ID             int64     `json:"id"`
	ProductCode    int64     `json:"product_code"`
	ProductName    string    `json:"product_name"`
	Stock          int       `json:"stock"`
	BatchNumber    int64     `json:"batch_number"`
	ExpirationDate string    `json:"expiration_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BatchListResponse lista paginada de lotes.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
