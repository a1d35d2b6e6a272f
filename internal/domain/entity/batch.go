package entity

import "time"

// Batch lote de inventario: una recepción de stock de un producto con su fecha de vencimiento.
// Stock nunca es negativo y BatchNumber es único entre todos los lotes.
type Batch struct {
	ID             int64
	ProductCode    int64
	ProductName    string // solo lectura, viene del join con products
	Stock          int
	BatchNumber    int64
	ExpirationDate time.Time // fecha (medianoche UTC)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DateOf normaliza t a su fecha calendario (medianoche UTC), en la zona de t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
