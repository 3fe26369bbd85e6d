package autolavado

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dipaca/autolavado/internal/cache"
	"github.com/dipaca/autolavado/internal/config"
	"github.com/dipaca/autolavado/internal/events"
	"github.com/dipaca/autolavado/internal/http/middlewarectx"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/lib/password"
	"github.com/dipaca/autolavado/internal/migrations"
	analyticsservice "github.com/dipaca/autolavado/internal/services/analytics"
	authservice "github.com/dipaca/autolavado/internal/services/auth"
	ledgerservice "github.com/dipaca/autolavado/internal/services/ledger"
	portalservice "github.com/dipaca/autolavado/internal/services/portal"
	servicioservice "github.com/dipaca/autolavado/internal/services/servicios"
	"github.com/dipaca/autolavado/internal/storage"
)

const (
	adminPassword   = "admin123"
	clientePassword = "cliente123"
)

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

// newTestServer runs the full route table against a seeded PostgreSQL container.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	st, err := storage.New(dsn)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(st.DB, migrationsPath))

	adminHash, err := password.Hash(adminPassword)
	require.NoError(t, err)
	clienteHash, err := password.Hash(clientePassword)
	require.NoError(t, err)
	require.NoError(t, st.SeedDemo(ctx, adminHash, clienteHash))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	owners := NewOwners(st)
	reg := prometheus.NewRegistry()

	router := chi.NewRouter()
	RegisterRoutes(router, log, Deps{
		Store:     st,
		Tokens:    maker,
		Auth:      authservice.NewAuthService(st, maker),
		Servicios: servicioservice.NewServicioService(st, events.Noop{}, log),
		Ledger: ledgerservice.NewLedgerService(st, owners.Servicio, owners.Item,
			cache.Noop{}, time.Minute, events.Noop{}, log),
		Analytics: analyticsservice.NewAnalyticsService(st),
		Portal:    portalservice.NewPortalService(st),
		Owners:    owners,
		Metrics:   middlewarectx.NewMetrics(reg),
		Gatherer:  reg,
		RateLimit: config.RateLimit{RPS: 100, Burst: 100},
		CORS:      config.CORS{AllowedOrigins: []string{"*"}},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

type loginData struct {
	Token string `json:"token"`
	User  struct {
		ID        int64  `json:"id"`
		Rol       string `json:"rol"`
		ClienteID *int64 `json:"cliente_id"`
	} `json:"user"`
}

func loginAs(t *testing.T, srv *httptest.Server, email, pw string) loginData {
	t.Helper()
	code, env := call(t, srv, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": email, "password": pw})
	require.Equal(t, http.StatusOK, code, env.Error)
	var data loginData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	admin := loginAs(t, srv, storage.DemoAdminEmail, adminPassword)
	cliente := loginAs(t, srv, storage.DemoClienteEmail, clientePassword)

	t.Run("seeded admin logs in as admin", func(t *testing.T) {
		assert.NotEmpty(t, admin.Token)
		assert.Equal(t, "admin", admin.User.Rol)
		assert.Nil(t, admin.User.ClienteID)
	})

	t.Run("wrong password", func(t *testing.T) {
		code, env := call(t, srv, http.MethodPost, "/api/auth/login", "",
			map[string]string{"email": storage.DemoAdminEmail, "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid credentials", env.Error)
	})

	t.Run("verify returns the logged in profile", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/auth/verify", cliente.Token, nil)
		require.Equal(t, http.StatusOK, code)
		var data struct {
			User struct {
				ID        int64  `json:"id"`
				Rol       string `json:"rol"`
				ClienteID *int64 `json:"cliente_id"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, cliente.User.ID, data.User.ID)
		assert.Equal(t, "cliente", data.User.Rol)
		assert.Equal(t, cliente.User.ClienteID, data.User.ClienteID)
	})

	t.Run("protected route without token", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/servicios", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "No token provided", env.Error)
	})

	t.Run("cliente on admin route", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/clientes", cliente.Token, nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Access denied. Admin only.", env.Error)
	})

	t.Run("admin on client portal", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/client/dashboard", admin.Token, nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Access denied. Client only.", env.Error)
	})

	t.Run("ownership of clientes", func(t *testing.T) {
		require.NotNil(t, cliente.User.ClienteID)
		own := fmt.Sprintf("/api/clientes/%d", *cliente.User.ClienteID)

		code, _ := call(t, srv, http.MethodGet, own, cliente.Token, nil)
		assert.Equal(t, http.StatusOK, code)

		code, env := call(t, srv, http.MethodPost, "/api/clientes", admin.Token, map[string]string{
			"ci": "99887766", "nombre": "Ana", "apellido": "Rojas",
		})
		require.Equal(t, http.StatusCreated, code, env.Error)
		var other struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &other))

		code, env = call(t, srv, http.MethodGet, fmt.Sprintf("/api/clientes/%d", other.ID), cliente.Token, nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Access denied", env.Error)

		code, _ = call(t, srv, http.MethodGet, fmt.Sprintf("/api/clientes/%d", other.ID), admin.Token, nil)
		assert.Equal(t, http.StatusOK, code)

		code, env = call(t, srv, http.MethodPost, "/api/clientes", admin.Token, map[string]string{
			"ci": "99887766", "nombre": "Otra", "apellido": "Vez",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "CI already exists", env.Error)
	})

	t.Run("item ledger through the api", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/client/services?status=EN_PROCESO", cliente.Token, nil)
		require.Equal(t, http.StatusOK, code, env.Error)
		var list []struct {
			ID    int64  `json:"id"`
			Monto string `json:"monto"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.NotEmpty(t, list)
		sv := list[0]

		code, env = call(t, srv, http.MethodPost, fmt.Sprintf("/api/servicio-items/%d/items", sv.ID),
			cliente.Token, map[string]any{"nombre": "Cera", "precio": "5.50"})
		require.Equal(t, http.StatusCreated, code, env.Error)
		var item struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &item))

		path := fmt.Sprintf("/api/servicio-items/items/%d", item.ID)
		code, _ = call(t, srv, http.MethodDelete, path, cliente.Token, nil)
		assert.Equal(t, http.StatusOK, code)
		code, env = call(t, srv, http.MethodDelete, path, cliente.Token, nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, env = call(t, srv, http.MethodGet, fmt.Sprintf("/api/servicios/%d", sv.ID), cliente.Token, nil)
		require.Equal(t, http.StatusOK, code, env.Error)
		var detail struct {
			Monto string `json:"monto"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.Equal(t, sv.Monto, detail.Monto)
	})

	t.Run("admin creates a servicio with todos", func(t *testing.T) {
		code, env := call(t, srv, http.MethodPost, "/api/servicios", admin.Token, map[string]any{
			"fecha":      "2024-05-20",
			"cliente_id": *cliente.User.ClienteID,
			"monto":      "18.00",
			"todos":      []map[string]any{{"text": "Aspirar"}, {"text": "Secar"}},
		})
		require.Equal(t, http.StatusCreated, code, env.Error)
		var sv struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &sv))
		assert.Equal(t, "PENDIENTE", sv.Status)

		code, env = call(t, srv, http.MethodGet, fmt.Sprintf("/api/todos/servicio/todos/%d", sv.ID), cliente.Token, nil)
		require.Equal(t, http.StatusOK, code, env.Error)
		var todos []struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &todos))
		assert.Len(t, todos, 2)

		code, env = call(t, srv, http.MethodPost, "/api/servicios", admin.Token, map[string]any{"fecha": "20/05/2024"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "field Fecha must be a date in format 2006-01-02", env.Error)
	})

	t.Run("health is public", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, map[string]string{"status": "OK", "message": "Server is running"}, body)
	})

	t.Run("unknown route", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Route not found", env.Error)
	})

	t.Run("metrics exposes request counters", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(raw), "autolavado_http_requests_total"))
	})
}
