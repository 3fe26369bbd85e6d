package storage

import (
	"context"
	"fmt"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/sqlfilter"
	"github.com/dipaca/autolavado/internal/models"
)

const trabajadorColumns = `id, ci, nombre, apellido, telefono, correo, cargo, servicios_realizados, created_at, updated_at`

// ErrTrabajadorNotFound is returned by trabajador lookups.
var ErrTrabajadorNotFound = apperr.NotFound("Trabajador not found")

func scanTrabajador(row scanner) (*models.Trabajador, error) {
	var t models.Trabajador
	err := row.Scan(&t.ID, &t.CI, &t.Nombre, &t.Apellido, &t.Telefono, &t.Correo, &t.Cargo,
		&t.ServiciosRealizados, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTrabajadores returns trabajadores matching the filter, newest first.
func (s *Storage) ListTrabajadores(ctx context.Context, f models.ListFilter) ([]models.Trabajador, error) {
	const op = "storage.ListTrabajadores"
	b := sqlfilter.New().Search(f.Search, "nombre", "apellido", "ci", "cargo", "correo")

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+trabajadorColumns+` FROM trabajadores`+b.Clause()+` ORDER BY created_at DESC`, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Trabajador, 0)
	for rows.Next() {
		t, err := scanTrabajador(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// GetTrabajador returns one trabajador.
func (s *Storage) GetTrabajador(ctx context.Context, id int64) (*models.Trabajador, error) {
	const op = "storage.GetTrabajador"
	t, err := scanTrabajador(s.DB.QueryRowContext(ctx,
		`SELECT `+trabajadorColumns+` FROM trabajadores WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrTrabajadorNotFound))
	}
	return t, nil
}

// CreateTrabajador inserts a trabajador with a zero service count.
func (s *Storage) CreateTrabajador(ctx context.Context, in models.TrabajadorInput) (*models.Trabajador, error) {
	const op = "storage.CreateTrabajador"
	t, err := scanTrabajador(s.DB.QueryRowContext(ctx,
		`INSERT INTO trabajadores (ci, nombre, apellido, telefono, correo, cargo, servicios_realizados)
		 VALUES ($1, $2, $3, $4, $5, $6, 0)
		 RETURNING `+trabajadorColumns,
		in.CI, in.Nombre, in.Apellido, in.Telefono, in.Correo, in.Cargo))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return t, nil
}

// UpdateTrabajador replaces the editable fields of a trabajador.
func (s *Storage) UpdateTrabajador(ctx context.Context, id int64, in models.TrabajadorInput) (*models.Trabajador, error) {
	const op = "storage.UpdateTrabajador"
	t, err := scanTrabajador(s.DB.QueryRowContext(ctx,
		`UPDATE trabajadores
		 SET ci = $1, nombre = $2, apellido = $3, telefono = $4, correo = $5, cargo = $6,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7
		 RETURNING `+trabajadorColumns,
		in.CI, in.Nombre, in.Apellido, in.Telefono, in.Correo, in.Cargo, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrTrabajadorNotFound))
	}
	return t, nil
}

// DeleteTrabajador removes a trabajador and returns the deleted row.
func (s *Storage) DeleteTrabajador(ctx context.Context, id int64) (*models.Trabajador, error) {
	const op = "storage.DeleteTrabajador"
	t, err := scanTrabajador(s.DB.QueryRowContext(ctx,
		`DELETE FROM trabajadores WHERE id = $1 RETURNING `+trabajadorColumns, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrTrabajadorNotFound))
	}
	return t, nil
}

// CountTrabajadores returns the number of trabajadores.
func (s *Storage) CountTrabajadores(ctx context.Context) (int64, error) {
	const op = "storage.CountTrabajadores"
	var n int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trabajadores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
