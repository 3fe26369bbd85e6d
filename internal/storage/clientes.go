package storage

import (
	"context"
	"fmt"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/sqlfilter"
	"github.com/dipaca/autolavado/internal/models"
)

const clienteColumns = `id, ci, nombre, apellido, telefono, correo, created_at, updated_at`

// ErrClienteNotFound is returned by cliente lookups.
var ErrClienteNotFound = apperr.NotFound("Cliente not found")

func scanCliente(row scanner) (*models.Cliente, error) {
	var c models.Cliente
	err := row.Scan(&c.ID, &c.CI, &c.Nombre, &c.Apellido, &c.Telefono, &c.Correo, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClientes returns clientes matching the filter, newest first.
func (s *Storage) ListClientes(ctx context.Context, f models.ListFilter) ([]models.Cliente, error) {
	const op = "storage.ListClientes"
	b := sqlfilter.New().Search(f.Search, "nombre", "apellido", "ci", "correo")

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+clienteColumns+` FROM clientes`+b.Clause()+` ORDER BY created_at DESC`, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Cliente, 0)
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// GetCliente returns one cliente.
func (s *Storage) GetCliente(ctx context.Context, id int64) (*models.Cliente, error) {
	const op = "storage.GetCliente"
	c, err := scanCliente(s.DB.QueryRowContext(ctx,
		`SELECT `+clienteColumns+` FROM clientes WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrClienteNotFound))
	}
	return c, nil
}

// CreateCliente inserts a cliente without a login.
func (s *Storage) CreateCliente(ctx context.Context, in models.ClienteInput) (*models.Cliente, error) {
	const op = "storage.CreateCliente"
	c, err := scanCliente(s.DB.QueryRowContext(ctx,
		`INSERT INTO clientes (ci, nombre, apellido, telefono, correo)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+clienteColumns,
		in.CI, in.Nombre, in.Apellido, in.Telefono, in.Correo))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return c, nil
}

// UpdateCliente replaces the editable fields of a cliente.
func (s *Storage) UpdateCliente(ctx context.Context, id int64, in models.ClienteInput) (*models.Cliente, error) {
	const op = "storage.UpdateCliente"
	c, err := scanCliente(s.DB.QueryRowContext(ctx,
		`UPDATE clientes
		 SET ci = $1, nombre = $2, apellido = $3, telefono = $4, correo = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING `+clienteColumns,
		in.CI, in.Nombre, in.Apellido, in.Telefono, in.Correo, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrClienteNotFound))
	}
	return c, nil
}

// UpdateClienteProfile changes the contact fields a cliente manages themself.
func (s *Storage) UpdateClienteProfile(ctx context.Context, id int64, in models.ProfileUpdate) (*models.Cliente, error) {
	const op = "storage.UpdateClienteProfile"
	c, err := scanCliente(s.DB.QueryRowContext(ctx,
		`UPDATE clientes
		 SET telefono = $1, correo = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3
		 RETURNING `+clienteColumns,
		in.Telefono, in.Correo, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrClienteNotFound))
	}
	return c, nil
}

// DeleteCliente removes a cliente and returns the deleted row. Its login goes with it.
func (s *Storage) DeleteCliente(ctx context.Context, id int64) (*models.Cliente, error) {
	const op = "storage.DeleteCliente"
	c, err := scanCliente(s.DB.QueryRowContext(ctx,
		`DELETE FROM clientes WHERE id = $1 RETURNING `+clienteColumns, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrClienteNotFound))
	}
	return c, nil
}

// CountClientes returns the number of clientes.
func (s *Storage) CountClientes(ctx context.Context) (int64, error) {
	const op = "storage.CountClientes"
	var n int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM clientes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ClienteOwner returns the id itself once the cliente is known to exist.
func (s *Storage) ClienteOwner(ctx context.Context, id int64) (*int64, error) {
	const op = "storage.ClienteOwner"
	var owner int64
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM clientes WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrClienteNotFound))
	}
	return &owner, nil
}
