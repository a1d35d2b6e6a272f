package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrConcurrentModification = errors.New("el stock del lote cambió durante la aprobación")
	ErrAlreadyApproved        = errors.New("la orden ya fue aprobada")
	ErrOrderApproved          = errors.New("la orden aprobada no puede modificarse")
)

// ShortageError indica que los lotes elegibles de un producto no alcanzan la cantidad pedida.
type ShortageError struct {
	ProductCode int64
	Requested   int
	Available   int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %d: solicitado %d, disponible %d",
		e.ProductCode, e.Requested, e.Available)
}

// Missing unidades que faltan para cubrir la línea.
func (e *ShortageError) Missing() int {
	return e.Requested - e.Available
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *ShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ApprovalError fallo de aprobación de una orden. Shortages lista todas las líneas sin stock
// (en el orden de la orden); Cause se usa cuando el fallo no es de stock (ej. concurrencia).
type ApprovalError struct {
	OrderNumber int64
	Shortages   []*ShortageError
	Cause       error
}

func (e *ApprovalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no se pudo aprobar la orden %d", e.OrderNumber)
	if len(e.Shortages) > 0 {
		b.WriteString(": ")
		for i, s := range e.Shortages {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "producto %d faltan %d (solicitado %d, disponible %d)",
				s.ProductCode, s.Missing(), s.Requested, s.Available)
		}
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap expone faltantes y causa para errors.Is / errors.As.
func (e *ApprovalError) Unwrap() []error {
	errs := make([]error, 0, len(e.Shortages)+1)
	for _, s := range e.Shortages {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
