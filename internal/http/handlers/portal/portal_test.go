package portal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dipaca/autolavado/internal/http/middlewarectx"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/models"
)

type PortalMock struct {
	mock.Mock
}

func (m *PortalMock) Dashboard(ctx context.Context, clienteID int64) (*models.ClienteDashboard, error) {
	args := m.Called(ctx, clienteID)
	out, _ := args.Get(0).(*models.ClienteDashboard)
	return out, args.Error(1)
}

func (m *PortalMock) ActiveServices(ctx context.Context, clienteID int64, turno string, limit int) ([]models.ServicioView, error) {
	args := m.Called(ctx, clienteID, turno, limit)
	out, _ := args.Get(0).([]models.ServicioView)
	return out, args.Error(1)
}

func (m *PortalMock) Info(ctx context.Context, clienteID int64) (*models.Cliente, error) {
	args := m.Called(ctx, clienteID)
	out, _ := args.Get(0).(*models.Cliente)
	return out, args.Error(1)
}

func (m *PortalMock) Services(ctx context.Context, clienteID int64, status models.Status, limit int) ([]models.ServicioView, error) {
	args := m.Called(ctx, clienteID, status, limit)
	out, _ := args.Get(0).([]models.ServicioView)
	return out, args.Error(1)
}

func (m *PortalMock) Vehicles(ctx context.Context, clienteID int64) ([]models.Vehiculo, error) {
	args := m.Called(ctx, clienteID)
	out, _ := args.Get(0).([]models.Vehiculo)
	return out, args.Error(1)
}

func (m *PortalMock) UpdateProfile(ctx context.Context, clienteID int64, in models.ProfileUpdate) (*models.Cliente, error) {
	args := m.Called(ctx, clienteID, in)
	out, _ := args.Get(0).(*models.Cliente)
	return out, args.Error(1)
}

func int64Ptr(v int64) *int64 { return &v }

func serve(fn http.HandlerFunc, method, target, body string, who *jwt.Identity) (int, map[string]any) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if who != nil {
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), *who))
	}
	rec := httptest.NewRecorder()
	fn(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

var marco = jwt.Identity{UserID: 2, Email: "marco@test.com", Rol: "cliente", ClienteID: int64Ptr(7)}

func TestPortalHandler_ScopedToToken(t *testing.T) {
	svc := new(PortalMock)
	svc.On("Dashboard", mock.Anything, int64(7)).Return(&models.ClienteDashboard{
		Cliente: models.Cliente{ID: 7, Nombre: "Marco"},
	}, nil).Once()
	svc.On("Vehicles", mock.Anything, int64(7)).Return([]models.Vehiculo{{ID: 1, Placa: "ABC123"}}, nil).Once()
	svc.On("Info", mock.Anything, int64(7)).Return(&models.Cliente{ID: 7}, nil).Once()
	h := New(slog.New(slog.DiscardHandler), svc)

	code, body := serve(h.Dashboard, http.MethodGet, "/client/dashboard", "", &marco)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, []any{}, data["vehiculos"])
	assert.Equal(t, []any{}, data["servicios"])

	_, body = serve(h.Vehicles, http.MethodGet, "/client/vehicles", "", &marco)
	assert.Len(t, body["data"], 1)

	code, _ = serve(h.Info, http.MethodGet, "/client/info", "", &marco)
	assert.Equal(t, http.StatusOK, code)
	svc.AssertExpectations(t)
}

func TestPortalHandler_NoCliente(t *testing.T) {
	svc := new(PortalMock)
	h := New(slog.New(slog.DiscardHandler), svc)
	orphan := jwt.Identity{UserID: 9, Email: "solo@test.com", Rol: "cliente"}

	code, body := serve(h.Dashboard, http.MethodGet, "/client/dashboard", "", &orphan)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "User is not associated with a cliente", body["error"])

	code, _ = serve(h.Info, http.MethodGet, "/client/info", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	svc.AssertNotCalled(t, "Dashboard", mock.Anything, mock.Anything)
}

func TestPortalHandler_Queries(t *testing.T) {
	svc := new(PortalMock)
	svc.On("ActiveServices", mock.Anything, int64(7), "This Week", 0).Return(nil, nil).Once()
	svc.On("Services", mock.Anything, int64(7), models.StatusFinalizado, 20).Return([]models.ServicioView{{}}, nil).Once()
	h := New(slog.New(slog.DiscardHandler), svc)

	code, body := serve(h.ActiveServices, http.MethodGet, "/client/active-services?turno=This+Week", "", &marco)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["data"])

	_, body = serve(h.Services, http.MethodGet, "/client/services?status=FINALIZADO&limit=20", "", &marco)
	assert.Len(t, body["data"], 1)

	code, body = serve(h.Services, http.MethodGet, "/client/services?status=DONE", "", &marco)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid status", body["error"])
	svc.AssertExpectations(t)
}

func TestPortalHandler_UpdateProfile(t *testing.T) {
	svc := new(PortalMock)
	tel := "0414-5551234"
	svc.On("UpdateProfile", mock.Anything, int64(7), mock.MatchedBy(func(in models.ProfileUpdate) bool {
		return in.Telefono != nil && *in.Telefono == tel && in.Correo == nil
	})).Return(&models.Cliente{ID: 7, Telefono: &tel}, nil).Once()
	h := New(slog.New(slog.DiscardHandler), svc)

	code, body := serve(h.UpdateProfile, http.MethodPut, "/client/profile", `{"telefono":"0414-5551234"}`, &marco)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, tel, body["data"].(map[string]any)["telefono"])

	code, body = serve(h.UpdateProfile, http.MethodPut, "/client/profile", `{"correo":"not-an-email"}`, &marco)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "field Correo must be a valid email", body["error"])
	svc.AssertExpectations(t)
}
