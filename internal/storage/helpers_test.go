package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dipaca/autolavado/internal/migrations"
)

// TestDataFactory inserts fixtures straight through SQL.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory returns a factory bound to storage.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateCliente inserts a cliente and returns its id.
func (f *TestDataFactory) CreateCliente(t *testing.T, ci, nombre, apellido string) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO clientes (ci, nombre, apellido) VALUES ($1, $2, $3) RETURNING id`,
		ci, nombre, apellido).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTrabajador inserts a trabajador and returns its id.
func (f *TestDataFactory) CreateTrabajador(t *testing.T, ci, nombre, apellido string) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO trabajadores (ci, nombre, apellido) VALUES ($1, $2, $3) RETURNING id`,
		ci, nombre, apellido).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateServicio inserts a servicio and returns its id.
func (f *TestDataFactory) CreateServicio(t *testing.T, clienteID *int64, trabajadorID *int64, status string,
	monto string, fecha time.Time, metodoPago *string) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO servicios (cliente_id, trabajador_id, status, monto, fecha, tipo_servicio, metodo_pago)
		VALUES ($1, $2, $3, $4, $5::date, 'FULL', $6) RETURNING id`,
		clienteID, trabajadorID, status, monto, fecha, metodoPago).Scan(&id)
	require.NoError(t, err)
	return id
}

// LinkTrabajador links a worker to a servicio.
func (f *TestDataFactory) LinkTrabajador(t *testing.T, servicioID, trabajadorID int64) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO servicio_trabajadores (servicio_id, trabajador_id) VALUES ($1, $2)`,
		servicioID, trabajadorID)
	require.NoError(t, err)
}

// TestVerification reads back state for assertions.
type TestVerification struct {
	storage *Storage
}

// NewTestVerification returns a verifier bound to storage.
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// Count returns the number of rows of table matching where.
func (v *TestVerification) Count(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	var n int
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	require.NoError(t, v.storage.DB.QueryRow(q, args...).Scan(&n))
	return n
}

// Monto returns the running total of a servicio.
func (v *TestVerification) Monto(t *testing.T, servicioID int64) decimal.Decimal {
	t.Helper()
	var m decimal.Decimal
	require.NoError(t, v.storage.DB.QueryRow(`SELECT monto FROM servicios WHERE id = $1`, servicioID).Scan(&m))
	return m
}

// ServiciosRealizados returns the finished order count of a worker.
func (v *TestVerification) ServiciosRealizados(t *testing.T, trabajadorID int64) int {
	t.Helper()
	var n int
	require.NoError(t, v.storage.DB.QueryRow(`SELECT servicios_realizados FROM trabajadores WHERE id = $1`,
		trabajadorID).Scan(&n))
	return n
}

// setupTestDatabase starts PostgreSQL in a container and applies the migrations.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err, "failed to connect")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "failed to migrate")

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return storage
}

func ptr[T any](v T) *T { return &v }
