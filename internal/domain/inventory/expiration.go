package inventory

import (
	"time"

	"github.com/reflex/inventario-api/internal/domain/entity"
)

// DefaultHorizonDays días hacia adelante considerados "por vencer".
const DefaultHorizonDays = 7

// ExpirationWindow rangos de fechas de un barrido de vencimientos.
// Vencido: vencimiento <= Today. Por vencer: Today+1 <= vencimiento <= Horizon.
type ExpirationWindow struct {
	Today       time.Time
	SoonStart   time.Time
	Horizon     time.Time
	HorizonDays int
}

// NewExpirationWindow calcula la ventana para el instante now en la zona loc.
func NewExpirationWindow(now time.Time, loc *time.Location, horizonDays int) ExpirationWindow {
	if loc == nil {
		loc = time.UTC
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	today := entity.DateOf(now.In(loc))
	return ExpirationWindow{
		Today:       today,
		SoonStart:   today.AddDate(0, 0, 1),
		Horizon:     today.AddDate(0, 0, horizonDays),
		HorizonDays: horizonDays,
	}
}

// Classify indica en qué categoría cae una fecha de vencimiento.
func (w ExpirationWindow) Classify(expiration time.Time) (entity.AlertKind, bool) {
	d := entity.DateOf(expiration)
	switch {
	case !d.After(w.Today):
		return entity.AlertKindExpired, true
	case !d.After(w.Horizon):
		return entity.AlertKindExpiringSoon, true
	default:
		return "", false
	}
}
