package orders

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

// OrderUseCase casos de uso CRUD para órdenes de pedido y de compra.
// La aprobación no pasa por aquí: ver ApprovalEngine.
type OrderUseCase struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderUseCase {
	return &OrderUseCase{orderRepo: orderRepo, productRepo: productRepo, now: time.Now}
}

// Create crea una orden pendiente del tipo indicado.
func (uc *OrderUseCase) Create(ctx context.Context, kind entity.OrderKind, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	order := &entity.Order{Kind: kind}
	if err := uc.fill(ctx, order, in); err != nil {
		return nil, err
	}
	now := uc.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// GetByNumber obtiene una orden; domain.ErrNotFound si no existe o es de otro tipo.
func (uc *OrderUseCase) GetByNumber(ctx context.Context, kind entity.OrderKind, number int64) (*dto.OrderResponse, error) {
	order, err := uc.load(ctx, kind, number)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// List lista órdenes de un tipo con paginación.
func (uc *OrderUseCase) List(ctx context.Context, kind entity.OrderKind, limit, offset int) (*dto.OrderListResponse, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.orderRepo.ListByKind(ctx, kind, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update reemplaza fecha, IVA, contraparte y líneas de una orden pendiente.
func (uc *OrderUseCase) Update(ctx context.Context, kind entity.OrderKind, number int64, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	order, err := uc.load(ctx, kind, number)
	if err != nil {
		return nil, err
	}
	if order.Approved {
		return nil, domain.ErrOrderApproved
	}
	if err := uc.fill(ctx, order, in); err != nil {
		return nil, err
	}
	order.UpdatedAt = uc.now()
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// Delete elimina una orden pendiente. Las aprobadas se conservan.
func (uc *OrderUseCase) Delete(ctx context.Context, kind entity.OrderKind, number int64) error {
	order, err := uc.load(ctx, kind, number)
	if err != nil {
		return err
	}
	if order.Approved {
		return domain.ErrOrderApproved
	}
	return uc.orderRepo.Delete(ctx, number)
}

func (uc *OrderUseCase) load(ctx context.Context, kind entity.OrderKind, number int64) (*entity.Order, error) {
	if !kind.Valid() || number <= 0 {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil || order.Kind != kind {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// fill valida la entrada y la vuelca sobre order.
func (uc *OrderUseCase) fill(ctx context.Context, order *entity.Order, in dto.CreateOrderRequest) error {
	date := uc.now()
	if in.Date != "" {
		d, err := time.Parse(dto.DateLayout, in.Date)
		if err != nil {
			return domain.ErrInvalidInput
		}
		date = d
	}
	if in.TaxRate.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}

	switch order.Kind {
	case entity.OrderKindCustomer:
		email := strings.TrimSpace(in.UserEmail)
		if email == "" || !strings.Contains(email, "@") {
			return domain.ErrInvalidInput
		}
		order.UserEmail = email
		order.ProviderID = 0
	case entity.OrderKindPurchase:
		if in.ProviderID <= 0 {
			return domain.ErrInvalidInput
		}
		order.ProviderID = in.ProviderID
		order.UserEmail = ""
	}

	lines := make([]entity.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.ProductCode <= 0 || l.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
		lines = append(lines, entity.OrderLine{ProductCode: l.ProductCode, Quantity: l.Quantity})
	}
	unique, err := aggregateLines(lines)
	if err != nil {
		return err
	}
	if err := ensureProducts(ctx, uc.productRepo, unique); err != nil {
		return err
	}

	order.Date = entity.DateOf(date)
	order.TaxRate = in.TaxRate
	order.Lines = lines
	return nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	lines := make([]dto.OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineDTO{ProductCode: l.ProductCode, Quantity: l.Quantity})
	}
	return &dto.OrderResponse{
		Number:     o.Number,
		Kind:       string(o.Kind),
		Date:       o.Date.Format(dto.DateLayout),
		TaxRate:    o.TaxRate,
		Approved:   o.Approved,
		ApprovedAt: o.ApprovedAt,
		UserEmail:  o.UserEmail,
		ProviderID: o.ProviderID,
		Lines:      lines,
		CreatedAt:  o.CreatedAt,
	}
}
