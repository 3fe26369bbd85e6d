package login

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*models.LoginResult)
	return res, args.Error(1)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		setup      func(m *AuthServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid login",
			body: models.LoginRequest{Email: "admin@dipaca.com", Password: "admin123"},
			setup: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "admin@dipaca.com", "admin123").Return(&models.LoginResult{
					Token: "tok",
					User:  models.Profile{ID: 1, Email: "admin@dipaca.com", Nombre: "Admin", Rol: models.RoleAdmin},
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody: `{"status":"OK","data":{"token":"tok","user":{"id":1,"email":"admin@dipaca.com","nombre":"Admin",
				"rol":"admin","cliente_id":null,"clienteInfo":null}}}`,
		},
		{
			name: "wrong password",
			body: models.LoginRequest{Email: "admin@dipaca.com", Password: "nope"},
			setup: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "admin@dipaca.com", "nope").
					Return(nil, apperr.Unauthenticated("Invalid credentials")).Once()
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"status":"Error","error":"Invalid credentials"}`,
		},
		{
			name:       "invalid json",
			body:       "not a json",
			setup:      func(_ *AuthServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"Invalid request body"}`,
		},
		{
			name:       "missing password",
			body:       map[string]string{"email": "admin@dipaca.com"},
			setup:      func(_ *AuthServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"field Password is a required field"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			tt.setup(svc)
			h := New(slog.New(slog.DiscardHandler), svc)

			var raw []byte
			if s, ok := tt.body.(string); ok {
				raw = []byte(s)
			} else {
				var err error
				raw, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(raw))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
