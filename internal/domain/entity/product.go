package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. Los lotes lo referencian por Code; su CRUD vive fuera del núcleo.
type Product struct {
	Code        int64
	Name        string
	Description string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
