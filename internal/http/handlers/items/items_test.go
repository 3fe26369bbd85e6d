package items

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dipaca/autolavado/internal/http/middlewarectx"
	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/models"
)

type LedgerMock struct {
	mock.Mock
}

func (m *LedgerMock) Items(ctx context.Context, who jwt.Identity, servicioID int64) ([]models.ServicioItem, error) {
	args := m.Called(ctx, who, servicioID)
	out, _ := args.Get(0).([]models.ServicioItem)
	return out, args.Error(1)
}

func (m *LedgerMock) AddItem(ctx context.Context, who jwt.Identity, servicioID int64, in models.ItemInput) (*models.ServicioItem, error) {
	args := m.Called(ctx, who, servicioID, in)
	out, _ := args.Get(0).(*models.ServicioItem)
	return out, args.Error(1)
}

func (m *LedgerMock) RemoveItem(ctx context.Context, who jwt.Identity, itemID int64) (*models.ServicioItem, error) {
	args := m.Called(ctx, who, itemID)
	out, _ := args.Get(0).(*models.ServicioItem)
	return out, args.Error(1)
}

func (m *LedgerMock) ApplyDiscount(ctx context.Context, who jwt.Identity, servicioID int64, in models.DiscountInput) (*models.Servicio, error) {
	args := m.Called(ctx, who, servicioID, in)
	out, _ := args.Get(0).(*models.Servicio)
	return out, args.Error(1)
}

func (m *LedgerMock) ProcessPayment(ctx context.Context, who jwt.Identity, servicioID int64, in models.PaymentInput) (*models.Servicio, error) {
	args := m.Called(ctx, who, servicioID, in)
	out, _ := args.Get(0).(*models.Servicio)
	return out, args.Error(1)
}

func (m *LedgerMock) Catalogo(ctx context.Context) ([]models.ProductoCatalogo, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.ProductoCatalogo)
	return out, args.Error(1)
}

var clienteID = int64(10)

var marco = jwt.Identity{UserID: 2, Email: "marco@test.com", Rol: "cliente", ClienteID: &clienteID}

func router(svc Service, who *jwt.Identity) http.Handler {
	h := New(slog.New(slog.DiscardHandler), svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if who != nil {
				req = req.WithContext(middlewarectx.WithIdentity(req.Context(), *who))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/servicio-items/catalogo", h.Catalogo)
	r.Get("/servicio-items/{servicio_id}/items", h.List)
	r.Post("/servicio-items/{servicio_id}/items", h.Add)
	r.Delete("/servicio-items/items/{item_id}", h.Remove)
	r.Post("/servicio-items/{servicio_id}/discount", h.Discount)
	r.Post("/servicio-items/{servicio_id}/payment", h.Payment)
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestItemsHandler_AddAndRemove(t *testing.T) {
	svc := new(LedgerMock)
	in := models.ItemInput{Nombre: "Cera", Precio: decimal.RequireFromString("12")}
	svc.On("AddItem", mock.Anything, marco, int64(1), mock.MatchedBy(func(got models.ItemInput) bool {
		return got.Nombre == in.Nombre && got.Precio.Equal(in.Precio)
	})).Return(&models.ServicioItem{ID: 100, ServicioID: 1, Nombre: "Cera", Precio: in.Precio}, nil).Once()
	svc.On("RemoveItem", mock.Anything, marco, int64(100)).
		Return(&models.ServicioItem{ID: 100, ServicioID: 1, Nombre: "Cera", Precio: in.Precio}, nil).Once()
	svc.On("RemoveItem", mock.Anything, marco, int64(100)).
		Return(nil, apperr.NotFound("Item not found")).Once()
	h := router(svc, &marco)

	code, body := call(t, h, http.MethodPost, "/servicio-items/1/items", `{"nombre":"Cera","precio":12}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Cera", body["data"].(map[string]any)["nombre"])

	code, body = call(t, h, http.MethodDelete, "/servicio-items/items/100", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Item deleted successfully", body["data"].(map[string]any)["message"])

	code, body = call(t, h, http.MethodDelete, "/servicio-items/items/100", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Item not found", body["error"])
	svc.AssertExpectations(t)
}

func TestItemsHandler_Forbidden(t *testing.T) {
	svc := new(LedgerMock)
	svc.On("Items", mock.Anything, marco, int64(2)).Return(nil, apperr.Forbidden("Access denied")).Once()

	code, body := call(t, router(svc, &marco), http.MethodGet, "/servicio-items/2/items", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied", body["error"])
}

func TestItemsHandler_NoIdentity(t *testing.T) {
	svc := new(LedgerMock)

	code, body := call(t, router(svc, nil), http.MethodGet, "/servicio-items/1/items", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No token provided", body["error"])
	svc.AssertNotCalled(t, "Items", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemsHandler_DiscountAndPayment(t *testing.T) {
	svc := new(LedgerMock)
	svc.On("ApplyDiscount", mock.Anything, marco, int64(1), mock.MatchedBy(func(in models.DiscountInput) bool {
		return in.Descuento.Equal(decimal.NewFromInt(5)) && in.PuntosUsados == 10
	})).Return(&models.Servicio{ID: 1}, nil).Once()
	svc.On("ProcessPayment", mock.Anything, marco, int64(1), mock.MatchedBy(func(in models.PaymentInput) bool {
		return in.MetodoPago == "ZELLE" && in.Propina.Equal(decimal.NewFromInt(2))
	})).Return(&models.Servicio{ID: 1, Status: models.StatusFinalizado, Pagado: true}, nil).Once()
	h := router(svc, &marco)

	code, body := call(t, h, http.MethodPost, "/servicio-items/1/discount", `{"descuento":5,"puntos_usados":10}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Discount applied successfully", body["data"].(map[string]any)["message"])

	code, body = call(t, h, http.MethodPost, "/servicio-items/1/payment", `{"metodo_pago":"ZELLE","propina":2}`)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Payment processed successfully", data["message"])
	assert.Equal(t, "FINALIZADO", data["servicio"].(map[string]any)["status"])

	code, body = call(t, h, http.MethodPost, "/servicio-items/1/payment", `{"propina":2}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "field MetodoPago is a required field", body["error"])
	svc.AssertExpectations(t)
}

func TestItemsHandler_Catalogo(t *testing.T) {
	svc := new(LedgerMock)
	svc.On("Catalogo", mock.Anything).Return([]models.ProductoCatalogo{{ID: 1, Nombre: "Ambientador"}}, nil).Once()

	code, body := call(t, router(svc, &marco), http.MethodGet, "/servicio-items/catalogo", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)
}
