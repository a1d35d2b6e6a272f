package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/application/inventory"
	"github.com/reflex/inventario-api/internal/application/orders"
	"github.com/reflex/inventario-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC        *orders.OrderUseCase
	ApprovalEngine *orders.ApprovalEngine
	BatchUC        *inventory.BatchUseCase
	Monitor        *inventory.ExpirationMonitor
	SweepTrigger   *inventory.ManualTrigger
	JWTSecret      string
}

// ErrorHandler responde los *fiber.Error (404 de ruta, parámetros inválidos) con dto.ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	var label string
	switch code {
	case fiber.StatusBadRequest:
		label = "VALIDATION"
	case fiber.StatusNotFound:
		label = "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		label = "METHOD_NOT_ALLOWED"
	default:
		label = "INTERNAL"
	}
	return c.Status(code).JSON(dto.ErrorResponse{Code: label, Message: err.Error()})
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(jwt.RoleAdmin, jwt.RoleEmpleado)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleEmpleado, jwt.RoleCliente)

	// Orders: el cliente crea y consulta sus órdenes customer; el resto es del personal
	ordersGroup := protected.Group("/orders/:kind")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.ApprovalEngine)
	ordersGroup.Post("/", anyRole, orderHandler.Create)
	ordersGroup.Get("/", staff, orderHandler.List)
	ordersGroup.Get("/:number", anyRole, orderHandler.GetByNumber)
	ordersGroup.Put("/:number", staff, orderHandler.Update)
	ordersGroup.Delete("/:number", staff, orderHandler.Delete)
	ordersGroup.Post("/:number/approve", staff, orderHandler.Approve)

	// Inventory batches
	invGroup := protected.Group("/inventory", staff)
	inventoryHandler := NewInventoryHandler(deps.BatchUC)
	invGroup.Post("/batches", inventoryHandler.CreateBatch)
	invGroup.Get("/batches", inventoryHandler.ListBatches)
	invGroup.Get("/batches/:id", inventoryHandler.GetBatch)
	invGroup.Patch("/batches/:id", inventoryHandler.UpdateBatchStock)
	invGroup.Delete("/batches/:id", inventoryHandler.DeleteBatch)

	// Alerts
	alerts := protected.Group("/alerts", staff)
	alertHandler := NewAlertHandler(deps.Monitor, deps.SweepTrigger)
	alerts.Post("/test", alertHandler.Test)
	alerts.Post("/sweep", alertHandler.Sweep)
}
