package servicios

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

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, f models.ServicioFilter) ([]models.ServicioView, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]models.ServicioView)
	return out, args.Error(1)
}

func (m *ServiceMock) Active(ctx context.Context) ([]models.ServicioView, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.ServicioView)
	return out, args.Error(1)
}

func (m *ServiceMock) Completed(ctx context.Context) ([]models.ServicioView, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.ServicioView)
	return out, args.Error(1)
}

func (m *ServiceMock) Get(ctx context.Context, id int64) (*models.ServicioDetail, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.ServicioDetail)
	return out, args.Error(1)
}

func (m *ServiceMock) Create(ctx context.Context, in models.ServicioInput) (*models.Servicio, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*models.Servicio)
	return out, args.Error(1)
}

func (m *ServiceMock) Update(ctx context.Context, id int64, in models.ServicioUpdate) (*models.Servicio, error) {
	args := m.Called(ctx, id, in)
	out, _ := args.Get(0).(*models.Servicio)
	return out, args.Error(1)
}

func (m *ServiceMock) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Servicio, error) {
	args := m.Called(ctx, id, status)
	out, _ := args.Get(0).(*models.Servicio)
	return out, args.Error(1)
}

func (m *ServiceMock) Delete(ctx context.Context, id int64) (*models.Servicio, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Servicio)
	return out, args.Error(1)
}

func (m *ServiceMock) Entradas(ctx context.Context) (*models.Entradas, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*models.Entradas)
	return out, args.Error(1)
}

func router(svc Service) http.Handler {
	h := New(slog.New(slog.DiscardHandler), svc)
	r := chi.NewRouter()
	r.Get("/servicios/stats", h.Stats)
	r.Get("/servicios/active", h.Active)
	r.Get("/servicios/completed", h.Completed)
	r.Get("/servicios", h.List)
	r.Get("/servicios/{id}", h.Get)
	r.Post("/servicios", h.Create)
	r.Put("/servicios/{id}", h.Update)
	r.Patch("/servicios/{id}/status", h.UpdateStatus)
	r.Delete("/servicios/{id}", h.Delete)
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

func TestServiciosHandler_List(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything, models.ServicioFilter{Search: "abc", Status: models.StatusLavado, Fecha: "2024-05-20"}).
		Return(nil, nil).Once()

	code, body := call(t, router(svc), http.MethodGet, "/servicios?search=abc&status=LAVADO&fecha=2024-05-20", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["data"])
	svc.AssertExpectations(t)
}

func TestServiciosHandler_ListInvalidStatus(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything, mock.Anything).Return(nil, apperr.Validation("Invalid status")).Once()

	code, body := call(t, router(svc), http.MethodGet, "/servicios?status=DONE", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid status", body["error"])
}

func TestServiciosHandler_StaticRoutes(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Active", mock.Anything).Return([]models.ServicioView{{}}, nil).Once()
	svc.On("Completed", mock.Anything).Return([]models.ServicioView{{}, {}}, nil).Once()
	svc.On("Entradas", mock.Anything).Return(&models.Entradas{Entradas: 3}, nil).Once()
	h := router(svc)

	_, body := call(t, h, http.MethodGet, "/servicios/active", "")
	assert.Len(t, body["data"], 1)
	_, body = call(t, h, http.MethodGet, "/servicios/completed", "")
	assert.Len(t, body["data"], 2)
	_, body = call(t, h, http.MethodGet, "/servicios/stats", "")
	assert.Equal(t, map[string]any{"entradas": float64(3)}, body["data"])
	svc.AssertExpectations(t)
}

func TestServiciosHandler_Create(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in models.ServicioInput) bool {
		return in.Fecha == "2024-05-20" && len(in.Trabajadores) == 2 && len(in.Todos) == 1 &&
			in.Monto.Equal(decimal.RequireFromString("25.50"))
	})).Return(&models.Servicio{ID: 11, Fecha: "2024-05-20", Status: models.StatusPendiente}, nil).Once()

	code, body := call(t, router(svc), http.MethodPost, "/servicios",
		`{"fecha":"2024-05-20","monto":"25.50","trabajadores":[1,2],"todos":[{"text":"Aspirar"}]}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "PENDIENTE", body["data"].(map[string]any)["status"])
	svc.AssertExpectations(t)
}

func TestServiciosHandler_CreateValidation(t *testing.T) {
	svc := new(ServiceMock)
	h := router(svc)

	code, body := call(t, h, http.MethodPost, "/servicios", `{"fecha":"20/05/2024"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "field Fecha must be a date in format 2006-01-02", body["error"])

	code, body = call(t, h, http.MethodPost, "/servicios", `{"fecha":"2024-05-20","todos":[{"done":true}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "field Text is a required field", body["error"])
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestServiciosHandler_UpdateStatus(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("UpdateStatus", mock.Anything, int64(5), models.StatusFinalizado).
		Return(&models.Servicio{ID: 5, Status: models.StatusFinalizado}, nil).Once()
	svc.On("UpdateStatus", mock.Anything, int64(6), models.StatusLavado).
		Return(nil, apperr.NotFound("Servicio not found")).Once()
	h := router(svc)

	code, _ := call(t, h, http.MethodPatch, "/servicios/5/status", `{"status":"FINALIZADO"}`)
	assert.Equal(t, http.StatusOK, code)

	code, body := call(t, h, http.MethodPatch, "/servicios/6/status", `{"status":"LAVADO"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Servicio not found", body["error"])
	svc.AssertExpectations(t)
}

func TestServiciosHandler_GetAndDelete(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Get", mock.Anything, int64(7)).Return(&models.ServicioDetail{Trabajadores: []string{"Jose Perez"}}, nil).Once()
	svc.On("Delete", mock.Anything, int64(7)).Return(&models.Servicio{ID: 7}, nil).Once()
	h := router(svc)

	code, body := call(t, h, http.MethodGet, "/servicios/7", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"Jose Perez"}, body["data"].(map[string]any)["trabajadores"])

	code, body = call(t, h, http.MethodDelete, "/servicios/7", "")
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Servicio deleted successfully", data["message"])
	assert.EqualValues(t, 7, data["servicio"].(map[string]any)["id"])
	svc.AssertExpectations(t)
}

func TestServiciosHandler_Update(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Update", mock.Anything, int64(9), mock.MatchedBy(func(in models.ServicioUpdate) bool {
		return in.Fecha == "2024-06-01" && in.Status == models.StatusLavado
	})).Return(&models.Servicio{ID: 9, Fecha: "2024-06-01", Status: models.StatusLavado}, nil).Once()
	h := router(svc)

	code, body := call(t, h, http.MethodPut, "/servicios/9", `{"fecha":"2024-06-01","status":"LAVADO"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "LAVADO", body["data"].(map[string]any)["status"])

	code, body = call(t, h, http.MethodPut, "/servicios/9", `{"fecha":"2024-13-01","status":"LAVADO"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "field Fecha must be a date in format 2006-01-02", body["error"])
	svc.AssertExpectations(t)
}
