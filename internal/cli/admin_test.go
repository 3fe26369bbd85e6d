package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dipaca/autolavado/internal/lib/password"
	"github.com/dipaca/autolavado/internal/models"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) UpsertAdmin(ctx context.Context, email, hash, nombre string) (*models.User, error) {
	args := m.Called(ctx, email, hash, nombre)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *StoreMock) SeedDemo(ctx context.Context, adminHash, clienteHash string) error {
	return m.Called(ctx, adminHash, clienteHash).Error(0)
}

func (m *StoreMock) Close() error { return nil }

// run executes the root command with args against st and returns its output.
func run(t *testing.T, st accountStore, args ...string) (string, error) {
	t.Helper()
	prevOpen, prevURL := openStore, databaseURL
	openStore = func(dsn string) (accountStore, error) {
		assert.Equal(t, "postgres://test", dsn)
		return st, nil
	}
	t.Cleanup(func() {
		openStore, databaseURL = prevOpen, prevURL
		rootCmd.SetArgs(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--database-url", "postgres://test"))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCreateAdmin(t *testing.T) {
	st := new(StoreMock)
	st.On("UpsertAdmin", mock.Anything, "boss@dipaca.com", mock.MatchedBy(func(hash string) bool {
		return password.Compare(hash, "secret1") == nil
	}), "Jefe").Return(&models.User{ID: 7, Email: "boss@dipaca.com", Rol: models.RoleAdmin}, nil)

	out, err := run(t, st, "create-admin", "--email", "boss@dipaca.com", "--password", "secret1", "--nombre", "Jefe")

	require.NoError(t, err)
	assert.Contains(t, out, "admin boss@dipaca.com ready (id 7)")
	st.AssertExpectations(t)
}

func TestCreateAdmin_RejectsInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "short password",
			args:    []string{"create-admin", "--email", "a@b.com", "--password", "123", "--nombre", "x"},
			wantErr: "--password must have at least 6 characters",
		},
		{
			name:    "bad email",
			args:    []string{"create-admin", "--email", "nobody", "--password", "secret1", "--nombre", "x"},
			wantErr: "a valid --email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(StoreMock)
			_, err := run(t, st, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			st.AssertNotCalled(t, "UpsertAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSeed(t *testing.T) {
	st := new(StoreMock)
	st.On("SeedDemo", mock.Anything,
		mock.MatchedBy(func(hash string) bool { return password.Compare(hash, demoAdminPassword) == nil }),
		mock.MatchedBy(func(hash string) bool { return password.Compare(hash, demoClientePassword) == nil }),
	).Return(nil)

	out, err := run(t, st, "seed")

	require.NoError(t, err)
	assert.Contains(t, out, "admin@dipaca.com / admin123")
	assert.Contains(t, out, "marco@test.com / cliente123")
	st.AssertExpectations(t)
}

func TestSeed_StoreError(t *testing.T) {
	st := new(StoreMock)
	st.On("SeedDemo", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("boom"))

	_, err := run(t, st, "seed")

	require.EqualError(t, err, "boom")
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["create-admin"])
	assert.True(t, names["seed"])

	sub := map[string]bool{}
	for _, c := range migrateCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"up": true, "down": true}, sub)
}
