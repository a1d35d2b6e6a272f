package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/inventory"
	"github.com/reflex/inventario-api/internal/domain/repository"
	"github.com/reflex/inventario-api/pkg/logger"
)

// maxApprovalAttempts intento original más un único reintento ante ErrConcurrentModification.
const maxApprovalAttempts = 2

// ApprovalEngine aprueba órdenes convirtiendo sus líneas en descuentos FEFO de stock.
// Dos fases: planifica todas las líneas y solo si todas tienen plan aplica los descuentos
// y marca la orden, en la misma transacción.
type ApprovalEngine struct {
	txRunner TxRunner
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewApprovalEngine construye el motor de aprobación.
func NewApprovalEngine(txRunner TxRunner, log *logger.Logger) *ApprovalEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &ApprovalEngine{
		txRunner: txRunner,
		log:      log,
		tracer:   otel.Tracer("github.com/reflex/inventario-api/internal/application/orders"),
		now:      time.Now,
	}
}

// Approve aprueba la orden indicada. Errores posibles:
//   - domain.ErrNotFound: la orden (o un producto de sus líneas) no existe.
//   - domain.ErrAlreadyApproved: la orden ya estaba aprobada; no se descuenta nada.
//   - *domain.ApprovalError: faltante de stock en una o más líneas, o el stock cambió
//     dos veces seguidas entre planificar y aplicar.
func (e *ApprovalEngine) Approve(ctx context.Context, number int64) (*dto.ApprovedOrderSummary, error) {
	ctx, span := e.tracer.Start(ctx, "orders.Approve",
		trace.WithAttributes(attribute.Int64("order.number", number)))
	defer span.End()

	var (
		summary *dto.ApprovedOrderSummary
		err     error
		attempt int
	)
	for attempt = 1; attempt <= maxApprovalAttempts; attempt++ {
		summary, err = e.approveOnce(ctx, number)
		if !errors.Is(err, domain.ErrConcurrentModification) {
			break
		}
		span.AddEvent("concurrent_modification", trace.WithAttributes(attribute.Int("attempt", attempt)))
		e.log.Warn().
			Err(err).
			Int64("order", number).
			Int("attempt", attempt).
			Msg("stock modificado durante la aprobación")
	}
	span.SetAttributes(attribute.Int("approval.attempts", min(attempt, maxApprovalAttempts)))

	if errors.Is(err, domain.ErrConcurrentModification) {
		err = &domain.ApprovalError{OrderNumber: number, Cause: domain.ErrConcurrentModification}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Info().Err(err).Int64("order", number).Msg("aprobación rechazada")
		return nil, err
	}

	e.log.Info().
		Int64("order", number).
		Str("kind", summary.Kind).
		Str("transaction_id", summary.TransactionID).
		Int("lines", len(summary.Lines)).
		Msg("orden aprobada")
	return summary, nil
}

func (e *ApprovalEngine) approveOnce(ctx context.Context, number int64) (*dto.ApprovedOrderSummary, error) {
	var summary *dto.ApprovedOrderSummary
	err := e.txRunner.RunApproval(ctx, func(
		orderRepo repository.OrderRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Approved {
			return domain.ErrAlreadyApproved
		}

		now := e.now()
		summary = &dto.ApprovedOrderSummary{
			Number:        order.Number,
			Kind:          string(order.Kind),
			ApprovedAt:    now,
			TransactionID: uuid.New().String(),
			Lines:         []dto.LineAllocationDTO{},
		}
		// Las órdenes de compra solo cambian de estado: el stock entra por recepción de lotes.
		if order.Kind == entity.OrderKindCustomer {
			lines, err := e.allocate(ctx, order, batchRepo, productRepo)
			if err != nil {
				return err
			}
			summary.Lines = lines
		}
		return orderRepo.MarkApproved(ctx, order.Number, now)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// allocate fase de planificación + fase de aplicación para una orden de cliente.
func (e *ApprovalEngine) allocate(
	ctx context.Context,
	order *entity.Order,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
) ([]dto.LineAllocationDTO, error) {
	lines, err := aggregateLines(order.Lines)
	if err != nil {
		return nil, err
	}
	if err := ensureProducts(ctx, productRepo, lines); err != nil {
		return nil, err
	}

	allocator := inventory.NewAllocator(batchRepo)
	plans := make([]*entity.AllocationPlan, 0, len(lines))
	var shortages []*domain.ShortageError
	for _, line := range lines {
		plan, err := allocator.Plan(ctx, line.ProductCode, line.Quantity)
		var shortage *domain.ShortageError
		switch {
		case errors.As(err, &shortage):
			shortages = append(shortages, shortage)
			continue
		case err != nil:
			return nil, fmt.Errorf("planificar producto %d: %w", line.ProductCode, err)
		}
		plans = append(plans, plan)
	}
	if len(shortages) > 0 {
		return nil, &domain.ApprovalError{OrderNumber: order.Number, Shortages: shortages}
	}

	if err := batchRepo.ApplyDeductions(ctx, inventory.MergePlans(plans...)); err != nil {
		return nil, err
	}
	return toLineAllocations(plans), nil
}

// aggregateLines suma las líneas de un mismo producto para no planificar dos veces
// contra los mismos lotes. Conserva el orden de primera aparición.
func aggregateLines(lines []entity.OrderLine) ([]entity.OrderLine, error) {
	out := make([]entity.OrderLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if i, ok := index[l.ProductCode]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductCode] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func ensureProducts(ctx context.Context, productRepo repository.ProductRepository, lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	codes := make([]int64, len(lines))
	for i, l := range lines {
		codes[i] = l.ProductCode
	}
	products, err := productRepo.ListByCodes(ctx, codes)
	if err != nil {
		return err
	}
	found := make(map[int64]bool, len(products))
	for _, p := range products {
		found[p.Code] = true
	}
	for _, code := range codes {
		if !found[code] {
			return fmt.Errorf("producto %d: %w", code, domain.ErrNotFound)
		}
	}
	return nil
}

func toLineAllocations(plans []*entity.AllocationPlan) []dto.LineAllocationDTO {
	out := make([]dto.LineAllocationDTO, 0, len(plans))
	for _, p := range plans {
		line := dto.LineAllocationDTO{
			ProductCode: p.ProductCode,
			Quantity:    p.Requested,
			Batches:     make([]dto.BatchTakeDTO, 0, len(p.Deductions)),
		}
		for _, d := range p.Deductions {
			line.Batches = append(line.Batches, dto.BatchTakeDTO{
				BatchID:        d.BatchID,
				BatchNumber:    d.BatchNumber,
				ExpirationDate: d.ExpirationDate.Format(dto.DateLayout),
				Quantity:       d.Quantity,
			})
		}
		out = append(out, line)
	}
	return out
}
