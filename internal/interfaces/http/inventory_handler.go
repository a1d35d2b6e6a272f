package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/application/inventory"
)

// InventoryHandler maneja los lotes de inventario (protegido).
type InventoryHandler struct {
	uc *inventory.BatchUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.BatchUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// CreateBatch godoc
// @Summary      Registrar lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "product_code, stock, batch_number, expiration_date"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches [post]
func (h *InventoryHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBatches godoc
// @Summary      Listar lotes
// @Description  Lotes en orden FEFO. product_code filtra por producto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_code  query  int  false  "Código de producto"
// @Param        limit         query  int  false  "Límite (default 20)"
// @Param        offset        query  int  false  "Offset"
// @Success      200  {object}  dto.BatchListResponse
// @Router       /api/inventory/batches [get]
func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), int64(c.QueryInt("product_code", 0)), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBatch godoc
// @Summary      Obtener lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id} [get]
func (h *InventoryHandler) GetBatch(c *fiber.Ctx) error {
	id, err := batchID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateBatchStock godoc
// @Summary      Corregir stock de un lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del lote"
// @Param        body  body  dto.UpdateBatchStockRequest  true  "stock"
// @Success      200  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id} [patch]
func (h *InventoryHandler) UpdateBatchStock(c *fiber.Ctx) error {
	id, err := batchID(c)
	if err != nil {
		return err
	}
	var in dto.UpdateBatchStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.UpdateStock(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteBatch godoc
// @Summary      Eliminar lote agotado
// @Tags         inventory
// @Security     Bearer
// @Param        id  path  int  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id} [delete]
func (h *InventoryHandler) DeleteBatch(c *fiber.Ctx) error {
	id, err := batchID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func batchID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id de lote inválido")
	}
	return int64(id), nil
}
