package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas de calendario en la API (fecha de orden, vencimientos).
const DateLayout = "2006-01-02"

// OrderLineDTO línea de una orden: producto y unidades.
type OrderLineDTO struct {
	ProductCode int64 `json:"product_code"`
	Quantity    int   `json:"quantity"`
}

// CreateOrderRequest body para crear o actualizar una orden pendiente.
// UserEmail aplica a órdenes de cliente; ProviderID a órdenes de compra.
type CreateOrderRequest struct {
	Date       string          `json:"date"` // YYYY-MM-DD; vacío = hoy
	TaxRate    decimal.Decimal `json:"tax_rate"`
	UserEmail  string          `json:"user_email,omitempty"`
	ProviderID int64           `json:"provider_id,omitempty"`
	Lines      []OrderLineDTO  `json:"lines"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	Number     int64           `json:"number"`
	Kind       string          `json:"kind"`
	Date       string          `json:"date"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Approved   bool            `json:"approved"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	UserEmail  string          `json:"user_email,omitempty"`
	ProviderID int64           `json:"provider_id,omitempty"`
	Lines      []OrderLineDTO  `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// BatchTakeDTO unidades tomadas de un lote al aprobar.
type BatchTakeDTO struct {
	BatchID        int64  `json:"batch_id"`
	BatchNumber    int64  `json:"batch_number"`
	ExpirationDate string `json:"expiration_date"`
	Quantity       int    `json:"quantity"`
}

// LineAllocationDTO asignación FEFO de una línea (producto) de la orden.
type LineAllocationDTO struct {
	ProductCode int64          `json:"product_code"`
	Quantity    int            `json:"quantity"`
	Batches     []BatchTakeDTO `json:"batches"`
}

// ApprovedOrderSummary resultado de una aprobación exitosa.
type ApprovedOrderSummary struct {
	Number        int64               `json:"number"`
	Kind          string              `json:"kind"`
	ApprovedAt    time.Time           `json:"approved_at"`
	TransactionID string              `json:"transaction_id"`
	Lines         []LineAllocationDTO `json:"lines"`
}

// ShortageDTO línea sin stock suficiente.
type ShortageDTO struct {
	ProductCode int64 `json:"product_code"`
	Requested   int   `json:"requested"`
	Available   int   `json:"available"`
	Missing     int   `json:"missing"`
}

// ApprovalErrorResponse cuerpo de error cuando la aprobación falla por stock.
type ApprovalErrorResponse struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Shortages []ShortageDTO `json:"shortages,omitempty"`
}
