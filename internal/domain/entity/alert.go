package entity

import "time"

// AlertKind tipo de notificación de vencimiento.
type AlertKind string

const (
	AlertKindExpired      AlertKind = "expired"
	AlertKindExpiringSoon AlertKind = "expiring_soon"
	AlertKindTest         AlertKind = "test"
)

// ExpirationAlert notificación emitida por el monitor de vencimientos.
type ExpirationAlert struct {
	ID             string    `json:"id"`
	Kind           AlertKind `json:"kind"`
	ProductCode    int64     `json:"product_code,omitempty"`
	ProductName    string    `json:"product_name,omitempty"`
	BatchID        int64     `json:"batch_id,omitempty"`
	BatchNumber    int64     `json:"batch_number,omitempty"`
	ExpirationDate string    `json:"expiration_date,omitempty"` // YYYY-MM-DD
	Message        string    `json:"message"`
	EmittedAt      time.Time `json:"emitted_at"`
}
