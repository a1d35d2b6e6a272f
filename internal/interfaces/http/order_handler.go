package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/application/orders"
	"github.com/reflex/inventario-api/internal/domain"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/pkg/jwt"
)

// OrderHandler maneja órdenes de pedido y de compra.
type OrderHandler struct {
	uc     *orders.OrderUseCase
	engine *orders.ApprovalEngine
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase, engine *orders.ApprovalEngine) *OrderHandler {
	return &OrderHandler{uc: uc, engine: engine}
}

// Create godoc
// @Summary      Crear orden
// @Description  Crea una orden pendiente. kind = customer | purchase. El rol cliente solo crea órdenes customer a su nombre.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        kind  path  string  true  "customer | purchase"
// @Param        body  body  dto.CreateOrderRequest  true  "Datos de la orden"
// @Success      201  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{kind} [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	kind, err := orderKind(c)
	if err != nil {
		return err
	}
	if GetRole(c) == jwt.RoleCliente && kind != entity.OrderKindCustomer {
		return writeError(c, domain.ErrForbidden)
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo JSON inválido")
	}
	if GetRole(c) == jwt.RoleCliente {
		in.UserEmail = GetEmail(c)
	}
	out, err := h.uc.Create(c.UserContext(), kind, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Produce      json
// @Security     Bearer
// @Param        kind    path   string  true   "customer | purchase"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders/{kind} [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	kind, err := orderKind(c)
	if err != nil {
		return err
	}
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), kind, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByNumber godoc
// @Summary      Obtener orden
// @Description  El rol cliente solo ve sus propias órdenes customer.
// @Tags         orders
// @Produce      json
// @Security     Bearer
// @Param        kind    path  string  true  "customer | purchase"
// @Param        number  path  int     true  "Número de orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{kind}/{number} [get]
func (h *OrderHandler) GetByNumber(c *fiber.Ctx) error {
	kind, number, err := orderRef(c)
	if err != nil {
		return err
	}
	out, err := h.uc.GetByNumber(c.UserContext(), kind, number)
	if err != nil {
		return writeError(c, err)
	}
	if GetRole(c) == jwt.RoleCliente && (kind != entity.OrderKindCustomer || out.UserEmail != GetEmail(c)) {
		return writeError(c, domain.ErrNotFound)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar orden pendiente
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        kind    path  string  true  "customer | purchase"
// @Param        number  path  int     true  "Número de orden"
// @Param        body    body  dto.CreateOrderRequest  true  "Datos de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{kind}/{number} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	kind, number, err := orderRef(c)
	if err != nil {
		return err
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo JSON inválido")
	}
	out, err := h.uc.Update(c.UserContext(), kind, number, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar orden pendiente
// @Tags         orders
// @Security     Bearer
// @Param        kind    path  string  true  "customer | purchase"
// @Param        number  path  int     true  "Número de orden"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{kind}/{number} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	kind, number, err := orderRef(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), kind, number); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Approve godoc
// @Summary      Aprobar orden
// @Description  Aprueba la orden en una sola transacción. Las órdenes customer descuentan stock de los lotes en orden FEFO.
// @Tags         orders
// @Produce      json
// @Security     Bearer
// @Param        kind    path  string  true  "customer | purchase"
// @Param        number  path  int     true  "Número de orden"
// @Success      200  {object}  dto.ApprovedOrderSummary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ApprovalErrorResponse
// @Router       /api/orders/{kind}/{number}/approve [post]
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	kind, number, err := orderRef(c)
	if err != nil {
		return err
	}
	// el tipo de la ruta debe coincidir con el de la orden
	if _, err := h.uc.GetByNumber(c.UserContext(), kind, number); err != nil {
		return writeError(c, err)
	}
	out, err := h.engine.Approve(c.UserContext(), number)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// orderKind lee :kind. Un tipo desconocido es un *fiber.Error 400 que resuelve ErrorHandler.
func orderKind(c *fiber.Ctx) (entity.OrderKind, error) {
	kind := entity.OrderKind(c.Params("kind"))
	if !kind.Valid() {
		return "", fiber.NewError(fiber.StatusBadRequest, "tipo de orden inválido: use customer o purchase")
	}
	return kind, nil
}

func orderRef(c *fiber.Ctx) (entity.OrderKind, int64, error) {
	kind, err := orderKind(c)
	if err != nil {
		return "", 0, err
	}
	number, err := c.ParamsInt("number")
	if err != nil || number <= 0 {
		return "", 0, fiber.NewError(fiber.StatusBadRequest, "número de orden inválido")
	}
	return kind, int64(number), nil
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		page = dto.PageRequest{}
	}
	page.Normalize()
	return page
}
