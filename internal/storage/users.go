package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/models"
)

const userColumns = `id, email, password, nombre, rol, cliente_id, created_at, updated_at`

// ErrUserNotFound is returned by user lookups.
var ErrUserNotFound = apperr.NotFound("User not found")

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Nombre, &u.Rol, &u.ClienteID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail returns the login with the given email, password hash included.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrUserNotFound))
	}
	return u, nil
}

// GetUserByID returns the login with the given id.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrUserNotFound))
	}
	return u, nil
}

// GetClienteInfo returns the summary of a cliente for profiles.
func (s *Storage) GetClienteInfo(ctx context.Context, clienteID int64) (*models.ClienteInfo, error) {
	const op = "storage.GetClienteInfo"
	var ci models.ClienteInfo
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, ci, nombre, apellido, telefono, correo FROM clientes WHERE id = $1`, clienteID).
		Scan(&ci.ID, &ci.CI, &ci.Nombre, &ci.Apellido, &ci.Telefono, &ci.Correo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrClienteNotFound))
	}
	return &ci, nil
}

// CreateAdmin inserts an admin login. hash must already be a bcrypt hash.
func (s *Storage) CreateAdmin(ctx context.Context, email, hash, nombre string) (*models.User, error) {
	const op = "storage.CreateAdmin"
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password, nombre, rol)
		 VALUES ($1, $2, $3, 'admin')
		 RETURNING `+userColumns,
		email, hash, nombre))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return u, nil
}

// RegisterCliente creates the cliente record and its login in one transaction.
// The email and CI are checked first so the caller gets a precise error.
func (s *Storage) RegisterCliente(ctx context.Context, in models.RegisterClienteRequest, hash string) (*models.User, *models.Cliente, error) {
	const op = "storage.RegisterCliente"
	var (
		user    *models.User
		cliente *models.Cliente
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, in.Email).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEmail
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM clientes WHERE ci = $1)`, in.CI).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrDuplicateCI
		}

		correo := in.Correo
		if correo == nil || *correo == "" {
			correo = &in.Email
		}
		var err error
		cliente, err = scanCliente(tx.QueryRowContext(ctx,
			`INSERT INTO clientes (ci, nombre, apellido, telefono, correo)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+clienteColumns,
			in.CI, in.Nombre, in.Apellido, in.Telefono, correo))
		if err != nil {
			return err
		}

		user, err = scanUser(tx.QueryRowContext(ctx,
			`INSERT INTO users (email, password, nombre, rol, cliente_id)
			 VALUES ($1, $2, $3, 'cliente', $4)
			 RETURNING `+userColumns,
			in.Email, hash, in.Nombre+" "+in.Apellido, cliente.ID))
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return user, cliente, nil
}

// UpsertAdmin creates the admin login or resets its password and name.
func (s *Storage) UpsertAdmin(ctx context.Context, email, hash, nombre string) (*models.User, error) {
	const op = "storage.UpsertAdmin"
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password, nombre, rol)
		 VALUES ($1, $2, $3, 'admin')
		 ON CONFLICT (email) DO UPDATE
		   SET password = EXCLUDED.password, nombre = EXCLUDED.nombre, updated_at = CURRENT_TIMESTAMP
		 WHERE users.rol = 'admin'
		 RETURNING `+userColumns,
		email, hash, nombre))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation("Email belongs to a cliente account"))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return u, nil
}
