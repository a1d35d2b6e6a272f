package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind discrimina órdenes de pedido (cliente) y órdenes de compra (proveedor).
type OrderKind string

const (
	OrderKindCustomer OrderKind = "customer"
	OrderKindPurchase OrderKind = "purchase"
)

// Valid indica si el tipo de orden es conocido.
func (k OrderKind) Valid() bool {
	return k == OrderKindCustomer || k == OrderKindPurchase
}

// Order orden de pedido o de compra. Nace pendiente y pasa una sola vez a aprobada;
// una vez aprobada sus líneas son inmutables.
type Order struct {
	Number     int64
	Kind       OrderKind
	Date       time.Time
	TaxRate    decimal.Decimal // IVA en porcentaje (ej. 19)
	Approved   bool
	ApprovedAt *time.Time
	UserEmail  string // contraparte de órdenes de cliente
	ProviderID int64  // contraparte de órdenes de compra
	Lines      []OrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderLine producto y cantidad (siempre > 0) de una orden.
type OrderLine struct {
	ProductCode int64
	Quantity    int
}
