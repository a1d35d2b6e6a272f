package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/application/inventory"
)

// AlertHandler dispara alertas de prueba y barridos manuales de vencimientos.
type AlertHandler struct {
	monitor *inventory.ExpirationMonitor
	trigger *inventory.ManualTrigger
}

// NewAlertHandler construye el handler. trigger puede ser nil: entonces /sweep barre en línea.
func NewAlertHandler(monitor *inventory.ExpirationMonitor, trigger *inventory.ManualTrigger) *AlertHandler {
	return &AlertHandler{monitor: monitor, trigger: trigger}
}

// Test godoc
// @Summary      Enviar alerta de prueba
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  dto.TestAlertResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/alerts/test [post]
func (h *AlertHandler) Test(c *fiber.Ctx) error {
	if !h.monitor.SendTestAlert() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "ALERT_QUEUE_FULL", Message: "cola de alertas llena"})
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.TestAlertResponse{Queued: true})
}

// Sweep godoc
// @Summary      Barrido manual de vencimientos
// @Description  Encola un barrido en el monitor. Con sync=true barre en la petición y devuelve el reporte.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        sync  query  bool  false  "Barrer en línea"
// @Success      200  {object}  dto.SweepResponse
// @Success      202  {object}  dto.SweepResponse
// @Router       /api/alerts/sweep [post]
func (h *AlertHandler) Sweep(c *fiber.Ctx) error {
	if h.trigger != nil && !c.QueryBool("sync", false) {
		// Fire false = ya hay un barrido pendiente; igual se considera encolado
		h.trigger.Fire()
		return c.Status(fiber.StatusAccepted).JSON(dto.SweepResponse{Queued: true})
	}
	report, err := h.monitor.Sweep(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SweepResponse{
		Today:        report.Today.Format(dto.DateLayout),
		Expired:      report.Expired,
		ExpiringSoon: report.ExpiringSoon,
		Dropped:      report.Dropped,
	})
}
