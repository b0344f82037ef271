package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriojati/kedai/internal/domain"
)

// stubService scripts per-method results for handler tests.
type stubService struct {
	createOrder *domain.Order
	createErr   error
	getOrder    *domain.Order
	getErr      error
	listResult  *ListResult
	listErr     error
	listFilter  ListFilter
	updateOrder *domain.Order
	updateErr   error
	deleteErr   error
	qrCode      []byte
	qrErr       error
	sawAllow    bool
	lastPayload map[string]any
}

func (s *stubService) Create(_ context.Context, payload map[string]any, allowStatus bool) (*domain.Order, error) {
	s.lastPayload = payload
	s.sawAllow = allowStatus
	return s.createOrder, s.createErr
}

func (s *stubService) Get(_ context.Context, _ string) (*domain.Order, error) {
	return s.getOrder, s.getErr
}

func (s *stubService) List(_ context.Context, filter ListFilter) (*ListResult, error) {
	s.listFilter = filter
	return s.listResult, s.listErr
}

func (s *stubService) UpdateStatus(_ context.Context, _ string, _ map[string]any) (*domain.Order, error) {
	return s.updateOrder, s.updateErr
}

func (s *stubService) Delete(_ context.Context, _ string) error {
	return s.deleteErr
}

func (s *stubService) QRCode(_ context.Context, _ string) ([]byte, error) {
	return s.qrCode, s.qrErr
}

func newTestMux(svc OrderService) *http.ServeMux {
	handler := NewHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", handler.HandleCreate)
	mux.HandleFunc("GET /orders/{id}", handler.HandleGet)
	mux.HandleFunc("GET /orders/{id}/qrcode", handler.HandleQRCode)
	mux.HandleFunc("GET /admin/orders", handler.HandleList)
	mux.HandleFunc("POST /admin/orders", handler.HandleAdminCreate)
	mux.HandleFunc("PUT /admin/orders/{id}", handler.HandleUpdateStatus)
	mux.HandleFunc("DELETE /admin/orders/{id}", handler.HandleDelete)
	return mux
}

func TestHandler_Create(t *testing.T) {
	t.Run("returns 201 with the created order", func(t *testing.T) {
		svc := &stubService{createOrder: &domain.Order{ID: "order-1", Total: 40000, Status: domain.OrderStatusPending}}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[{"foodId":"food-a","quantity":2}]}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.False(t, svc.sawAllow)

		var order domain.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
		assert.Equal(t, "order-1", order.ID)
	})

	t.Run("admin create allows status", func(t *testing.T) {
		svc := &stubService{createOrder: &domain.Order{ID: "order-1"}}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPost, "/admin/orders", strings.NewReader(`{"items":[{"foodId":"a","quantity":1}],"status":"DONE"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, svc.sawAllow)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		mux := newTestMux(&stubService{})

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation error carries details", func(t *testing.T) {
		svc := &stubService{createErr: domain.NewValidationError("invalid order payload", "items: at least one item is required")}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "invalid order payload", resp.Error)
		require.Len(t, resp.Details, 1)
		assert.Contains(t, resp.Details[0], "items")
	})

	t.Run("stock error is 400 naming the food", func(t *testing.T) {
		svc := &stubService{createErr: &domain.StockError{FoodName: "Nasi Goreng", Remaining: 1}}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[{"foodId":"a","quantity":2}]}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Nasi Goreng")
		assert.Contains(t, rec.Body.String(), "1 remaining")
	})

	t.Run("missing food is 404", func(t *testing.T) {
		svc := &stubService{createErr: domain.NewNotFoundError("some foods in the order could not be found")}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[{"foodId":"ghost","quantity":1}]}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unexpected failure is a generic 500", func(t *testing.T) {
		svc := &stubService{createErr: assert.AnError}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[{"foodId":"a","quantity":1}]}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal server error")
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})
}

func TestHandler_List(t *testing.T) {
	svc := &stubService{listResult: &ListResult{Items: []domain.Order{}, Total: 0, Page: 1, PageSize: 10}}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders?page=3&pageSize=25&search=budi&status=DONE", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.listFilter.Page)
	assert.Equal(t, 25, svc.listFilter.PageSize)
	assert.Equal(t, "budi", svc.listFilter.Search)
	assert.Equal(t, domain.OrderStatusDone, svc.listFilter.Status)
}

func TestHandler_UpdateStatus(t *testing.T) {
	t.Run("unknown order is 404", func(t *testing.T) {
		svc := &stubService{updateErr: domain.NewNotFoundError("order not found")}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPut, "/admin/orders/missing", strings.NewReader(`{"status":"DONE"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid status is 400", func(t *testing.T) {
		svc := &stubService{updateErr: domain.NewValidationError("invalid order payload", "status: must be one of PENDING, PROCESSED, DONE, CANCELLED")}
		mux := newTestMux(svc)

		req := httptest.NewRequest(http.MethodPut, "/admin/orders/order-1", strings.NewReader(`{"status":"SHIPPED"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	svc := &stubService{}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodDelete, "/admin/orders/order-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_QRCode(t *testing.T) {
	svc := &stubService{qrCode: []byte{0x89, 'P', 'N', 'G'}}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/order-1/qrcode", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes())
}
