package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/application/inventory"
	"github.com/reflex/inventario-api/internal/application/orders"
	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/infrastructure/memory"
	apphttp "github.com/reflex/inventario-api/internal/interfaces/http"
	pkgjwt "github.com/reflex/inventario-api/pkg/jwt"
	"github.com/reflex/inventario-api/pkg/logger"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []entity.ExpirationAlert
}

func (n *recordingNotifier) Notify(a entity.ExpirationAlert) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

type apiFixture struct {
	app      *fiber.App
	notifier *recordingNotifier
	trigger  *inventory.ManualTrigger
}

// newAPI levanta la API completa sobre el almacén en memoria con el catálogo demo.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedDemo(time.Now().UTC())

	notifier := &recordingNotifier{}
	trigger := inventory.NewManualTrigger()
	monitor := inventory.NewExpirationMonitor(store.Batches(), notifier,
		inventory.MonitorConfig{HorizonDays: 7, Location: time.UTC}, logger.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		OrderUC:        orders.NewOrderUseCase(store.Orders(), store.Products()),
		ApprovalEngine: orders.NewApprovalEngine(store, logger.Nop()),
		BatchUC:        inventory.NewBatchUseCase(store.Batches(), store.Products()),
		Monitor:        monitor,
		SweepTrigger:   trigger,
		JWTSecret:      testJWTSecret,
	})
	return &apiFixture{app: app, notifier: notifier, trigger: trigger}
}

func tokenFor(t *testing.T, email, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, email, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *apiFixture) call(t *testing.T, method, path, auth string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func customerOrder(qty int) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{Lines: []dto.OrderLineDTO{{ProductCode: 1, Quantity: qty}}}
}

func TestRouter_Health(t *testing.T) {
	f := newAPI(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_ClienteCreaYEmpleadoApruebaEnOrdenFEFO(t *testing.T) {
	f := newAPI(t)
	cliente := tokenFor(t, testEmail, pkgjwt.RoleCliente)
	empleado := tokenFor(t, "bodega@example.com", pkgjwt.RoleEmpleado)

	var created dto.OrderResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/orders/customer", cliente, customerOrder(15), &created))
	assert.Equal(t, testEmail, created.UserEmail, "el email sale del token")
	assert.False(t, created.Approved)

	var summary dto.ApprovedOrderSummary
	path := fmt.Sprintf("/api/orders/customer/%d/approve", created.Number)
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, path, empleado, nil, &summary))
	require.Len(t, summary.Lines, 1)
	takes := summary.Lines[0].Batches
	require.Len(t, takes, 2)
	assert.Equal(t, int64(1001), takes[0].BatchNumber)
	assert.Equal(t, 10, takes[0].Quantity)
	assert.Equal(t, int64(1002), takes[1].BatchNumber)
	assert.Equal(t, 5, takes[1].Quantity)
	assert.NotEmpty(t, summary.TransactionID)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodPost, path, empleado, nil, &errBody))
	assert.Equal(t, "ALREADY_APPROVED", errBody.Code)

	var batches dto.BatchListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventory/batches?product_code=1", empleado, nil, &batches))
	require.Len(t, batches.Items, 3)
	assert.Equal(t, 0, batches.Items[0].Stock)
	assert.Equal(t, 35, batches.Items[1].Stock)
	assert.Equal(t, 100, batches.Items[2].Stock)
}

func TestRouter_PaginacionAcotada(t *testing.T) {
	f := newAPI(t)
	admin := tokenFor(t, "admin@example.com", pkgjwt.RoleAdmin)

	var batches dto.BatchListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventory/batches?limit=500&offset=-2", admin, nil, &batches))
	assert.Equal(t, dto.PageResponse{Limit: dto.MaxPageLimit}, batches.Page)
	assert.Len(t, batches.Items, 6)

	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventory/batches?limit=2&offset=1", admin, nil, &batches))
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 1}, batches.Page)
	assert.Len(t, batches.Items, 2)
}

func TestRouter_StockInsuficienteDevuelveFaltantes(t *testing.T) {
	f := newAPI(t)
	admin := tokenFor(t, "admin@example.com", pkgjwt.RoleAdmin)

	in := customerOrder(500)
	in.UserEmail = "otro@example.com"
	var created dto.OrderResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/orders/customer", admin, in, &created))

	var body dto.ApprovalErrorResponse
	path := fmt.Sprintf("/api/orders/customer/%d/approve", created.Number)
	require.Equal(t, http.StatusConflict, f.call(t, http.MethodPost, path, admin, nil, &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.Len(t, body.Shortages, 1)
	assert.Equal(t, dto.ShortageDTO{ProductCode: 1, Requested: 500, Available: 150, Missing: 350}, body.Shortages[0])

	var order dto.OrderResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, fmt.Sprintf("/api/orders/customer/%d", created.Number), admin, nil, &order))
	assert.False(t, order.Approved, "la orden sigue pendiente")
}

func TestRouter_PermisosDelCliente(t *testing.T) {
	f := newAPI(t)
	cliente := tokenFor(t, testEmail, pkgjwt.RoleCliente)
	otro := tokenFor(t, "otro@example.com", pkgjwt.RoleCliente)

	purchase := dto.CreateOrderRequest{ProviderID: 4, Lines: []dto.OrderLineDTO{{ProductCode: 2, Quantity: 3}}}
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, "/api/orders/purchase", cliente, purchase, nil))
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodGet, "/api/orders/customer", cliente, nil, nil))
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodGet, "/api/inventory/batches", cliente, nil, nil))
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, "/api/alerts/sweep", cliente, nil, nil))

	var created dto.OrderResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/orders/customer", cliente, customerOrder(2), &created))
	path := fmt.Sprintf("/api/orders/customer/%d", created.Number)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, path, cliente, nil, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodGet, path, otro, nil, nil), "no ve órdenes ajenas")
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, path+"/approve", cliente, nil, nil))
}

func TestRouter_ParametrosInvalidos(t *testing.T) {
	f := newAPI(t)
	admin := tokenFor(t, "admin@example.com", pkgjwt.RoleAdmin)

	var body dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.call(t, http.MethodGet, "/api/orders/venta", admin, nil, &body))
	assert.Equal(t, "VALIDATION", body.Code)

	assert.Equal(t, http.StatusBadRequest, f.call(t, http.MethodPost, "/api/orders/customer", admin,
		dto.CreateOrderRequest{UserEmail: "a@example.com", Lines: []dto.OrderLineDTO{{ProductCode: 1, Quantity: 0}}}, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodPost, "/api/orders/customer", admin,
		dto.CreateOrderRequest{UserEmail: "a@example.com", Lines: []dto.OrderLineDTO{{ProductCode: 99, Quantity: 1}}}, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodPost, "/api/orders/customer/999/approve", admin, nil, nil))
}

func TestRouter_OrdenAprobadaNoSeModifica(t *testing.T) {
	f := newAPI(t)
	admin := tokenFor(t, "admin@example.com", pkgjwt.RoleAdmin)

	purchase := dto.CreateOrderRequest{ProviderID: 4, Lines: []dto.OrderLineDTO{{ProductCode: 2, Quantity: 3}}}
	var created dto.OrderResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/orders/purchase", admin, purchase, &created))
	path := fmt.Sprintf("/api/orders/purchase/%d", created.Number)

	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodPost,
		fmt.Sprintf("/api/orders/customer/%d/approve", created.Number), admin, nil, nil), "el tipo de la ruta debe coincidir")
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, path+"/approve", admin, nil, nil))

	var body dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodPut, path, admin, purchase, &body))
	assert.Equal(t, "ORDER_APPROVED", body.Code)
	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodDelete, path, admin, nil, nil))
}

func TestRouter_LotesCRUD(t *testing.T) {
	f := newAPI(t)
	admin := tokenFor(t, "admin@example.com", pkgjwt.RoleAdmin)

	in := dto.CreateBatchRequest{
		ProductCode:    3,
		Stock:          12,
		BatchNumber:    3002,
		ExpirationDate: time.Now().UTC().AddDate(0, 2, 0).Format(dto.DateLayout),
	}
	var created dto.BatchResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/inventory/batches", admin, in, &created))
	assert.Equal(t, "Suero oral", created.ProductName)
	path := fmt.Sprintf("/api/inventory/batches/%d", created.ID)

	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodPost, "/api/inventory/batches", admin, in, nil), "lote duplicado")
	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodDelete, path, admin, nil, nil), "solo se eliminan lotes agotados")

	zero := 0
	var updated dto.BatchResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPatch, path, admin, dto.UpdateBatchStockRequest{Stock: &zero}, &updated))
	assert.Equal(t, 0, updated.Stock)

	assert.Equal(t, http.StatusNoContent, f.call(t, http.MethodDelete, path, admin, nil, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodGet, path, admin, nil, nil))
}

func TestRouter_Alertas(t *testing.T) {
	f := newAPI(t)
	admin := tokenFor(t, "admin@example.com", pkgjwt.RoleAdmin)

	require.Equal(t, http.StatusAccepted, f.call(t, http.MethodPost, "/api/alerts/test", admin, nil, nil))
	assert.Equal(t, 1, f.notifier.count())

	require.Equal(t, http.StatusAccepted, f.call(t, http.MethodPost, "/api/alerts/sweep", admin, nil, nil))
	select {
	case <-f.trigger.C():
	default:
		t.Fatal("el barrido manual debe quedar encolado")
	}

	var report dto.SweepResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, "/api/alerts/sweep?sync=true", admin, nil, &report))
	assert.Equal(t, 2, report.Expired, "lotes 1001 y 3001")
	assert.Equal(t, 2, report.ExpiringSoon, "lotes 2001 y 1002")
	assert.Equal(t, 5, f.notifier.count())
}
