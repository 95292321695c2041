package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
	"github.com/vladislavdragonenkov/waterdesk/internal/service/catalog"
	"github.com/vladislavdragonenkov/waterdesk/internal/service/directory"
	"github.com/vladislavdragonenkov/waterdesk/internal/service/orders"
	"github.com/vladislavdragonenkov/waterdesk/internal/session"
)

var (
	testCustomer = domain.Customer{
		ID:    "cust-1",
		Name:  "Nguyen Van A",
		Phone: "0901234567",
		Type:  domain.CustomerTypeRetail,
	}
	testBottle = domain.Product{
		ID:         "prod-20l",
		Name:       "Binh 20L",
		PriceMinor: 450000,
		Stock:      7,
		Returnable: true,
	}
)

type testEnv struct {
	directory *directory.MockService
	catalog   *catalog.MockService
	orders    *orders.MockService
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		directory: directory.NewMockService(testCustomer),
		catalog:   catalog.NewMockService(testBottle),
		orders:    orders.NewMockService(),
	}

	factory := func(_ session.Session) Services {
		return Services{
			Directory: env.directory,
			Catalog:   env.catalog,
			Orders:    env.orders,
		}
	}
	env.router = New(factory, nil).Router()
	return env
}

func (e *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
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
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("X-User-Role", "admin")
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// openComposer — хелпер: открывает композер и возвращает его ID.
func (e *testEnv) openComposer(t *testing.T) string {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/api/v1/composer", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	id, ok := body["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}

func TestRequestWithoutTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestWithForbiddenRoleRejected(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("X-User-Role", "customer")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListCustomers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/customers?q=nguyen", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	customers := body["customers"].([]any)
	require.Len(t, customers, 1)
	first := customers[0].(map[string]any)
	require.Equal(t, "cust-1", first["id"])
	require.Equal(t, 1, env.directory.SearchCalls)
}

func TestListProductsFormatsPrice(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	products := body["products"].([]any)
	require.Len(t, products, 1)
	first := products[0].(map[string]any)
	require.Equal(t, "450.000 ₫", first["priceFormatted"])
	require.Equal(t, true, first["isReturnable"])
}

func TestListOrdersRequiresCustomerID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)
	env.orders.History = []domain.Order{
		{ID: "order-1", CustomerID: "cust-1", Status: domain.OrderStatusPending},
	}

	rec := env.request(t, http.MethodGet, "/api/v1/orders?customerId=cust-1&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Len(t, body["orders"].([]any), 1)
	require.Equal(t, "cust-1", env.orders.LastCustomer)
}

func TestOpenComposerFailsWhenDirectoryUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.directory.ListErr = &domain.APIError{
		Message:  "connection refused",
		Category: domain.CategoryNetwork,
	}

	rec := env.request(t, http.MethodPost, "/api/v1/composer", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestComposerNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/composer/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComposerFullFlow(t *testing.T) {
	env := newTestEnv(t)
	env.orders.CreateOrder = domain.Order{
		ID:         "order-42",
		CustomerID: "cust-1",
		Status:     domain.OrderStatusPending,
		TotalMinor: 900000,
	}

	id := env.openComposer(t)

	rec := env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/customer",
		map[string]string{"customerId": "cust-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Дубликат добавления увеличивает количество позиции.
	for i := 0; i < 2; i++ {
		rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/lines",
			map[string]string{"productId": "prod-20l"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	body := decodeBody(t, rec)
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	require.Equal(t, float64(2), lines[0].(map[string]any)["quantity"])
	require.Equal(t, float64(900000), body["totalAmount"])
	require.Equal(t, float64(100000), body["depositAmount"])
	require.Equal(t, float64(1000000), body["totalPayment"])

	rec = env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/paid",
		map[string]int64{"paidAmount": 500000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/submit", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	body = decodeBody(t, rec)
	order := body["order"].(map[string]any)
	require.Equal(t, "order-42", order["id"])
	summary := body["summary"].(map[string]any)
	require.Equal(t, "submitted", summary["state"])
	require.Equal(t, 1, env.orders.CreateCalls)
	require.Equal(t, int64(500000), env.orders.LastPayload.PaidMinor)

	// Финализированная форма не принимает мутаций.
	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/lines",
		map[string]string{"productId": "prod-20l"})
	require.Equal(t, http.StatusGone, rec.Code)

	// Закрытие убирает композер из реестра.
	rec = env.request(t, http.MethodDelete, "/api/v1/composer/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/composer/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)
	id := env.openComposer(t)

	rec := env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/customer",
		map[string]string{"customerId": "ghost"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	id := env.openComposer(t)

	rec := env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/customer",
		map[string]string{"customerId": "cust-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSubmitInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	id := env.openComposer(t)

	rec := env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/customer",
		map[string]string{"customerId": "cust-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/lines",
		map[string]string{"productId": "prod-20l"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Остаток в снимке — 7, запрашиваем 10.
	rec = env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/lines/prod-20l",
		map[string]int32{"quantity": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/submit", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, float64(7), body["available"])
	require.Equal(t, float64(10), body["requested"])
	require.Equal(t, 0, env.orders.CreateCalls)
}

func TestSubmitFailureKeepsComposerOpen(t *testing.T) {
	env := newTestEnv(t)
	env.orders.CreateErr = &domain.APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "database unavailable",
		Category:   domain.CategoryRejected,
	}

	id := env.openComposer(t)

	rec := env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/customer",
		map[string]string{"customerId": "cust-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/lines",
		map[string]string{"productId": "prod-20l"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/submit", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// Корзина сохранена, форма остаётся в реестре для повтора.
	rec = env.request(t, http.MethodGet, "/api/v1/composer/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "failed", body["state"])
	require.Len(t, body["lines"].([]any), 1)

	// Повторная отправка после восстановления backend проходит.
	env.orders.CreateErr = nil
	rec = env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/submit", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateQuantityBelowOneIsNoop(t *testing.T) {
	env := newTestEnv(t)
	id := env.openComposer(t)

	rec := env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/lines",
		map[string]string{"productId": "prod-20l"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPut, "/api/v1/composer/"+id+"/lines/prod-20l",
		map[string]int32{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	require.Equal(t, float64(1), lines[0].(map[string]any)["quantity"])
}

func TestRemoveLastLineReturnsToEmpty(t *testing.T) {
	env := newTestEnv(t)
	id := env.openComposer(t)

	rec := env.request(t, http.MethodPost, "/api/v1/composer/"+id+"/lines",
		map[string]string{"productId": "prod-20l"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodDelete, "/api/v1/composer/"+id+"/lines/prod-20l", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "empty", body["state"])
	require.Empty(t, body["lines"])
}

func TestComposerSnapshotFilters(t *testing.T) {
	env := newTestEnv(t)
	id := env.openComposer(t)

	rec := env.request(t, http.MethodGet, "/api/v1/composer/"+id+"/products?q=20l", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["products"].([]any), 1)

	rec = env.request(t, http.MethodGet, "/api/v1/composer/"+id+"/customers?q=zzz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Empty(t, body["customers"])
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
