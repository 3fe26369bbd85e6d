package storage

import (
	"context"
	"fmt"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/sqlfilter"
	"github.com/dipaca/autolavado/internal/models"
)

const vehiculoColumns = `v.id, v.placa, v.marca, v.modelo, v.tipo, v.cliente_id, v.created_at, v.updated_at`

const vehiculoSelect = `SELECT ` + vehiculoColumns + `, c.nombre || ' ' || c.apellido
	FROM vehiculos v
	LEFT JOIN clientes c ON v.cliente_id = c.id`

// ErrVehiculoNotFound is returned by vehiculo lookups.
var ErrVehiculoNotFound = apperr.NotFound("Vehicle not found")

func scanVehiculo(row scanner, withCliente bool) (*models.Vehiculo, error) {
	var v models.Vehiculo
	dest := []any{&v.ID, &v.Placa, &v.Marca, &v.Modelo, &v.Tipo, &v.ClienteID, &v.CreatedAt, &v.UpdatedAt}
	if withCliente {
		dest = append(dest, &v.ClienteNombre)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVehiculos returns vehiculos matching the filter, newest first.
func (s *Storage) ListVehiculos(ctx context.Context, f models.ListFilter) ([]models.Vehiculo, error) {
	const op = "storage.ListVehiculos"
	b := sqlfilter.New().Search(f.Search, "v.placa", "v.marca", "v.modelo")
	if f.ClienteID != nil {
		b.Eq("v.cliente_id", *f.ClienteID)
	}

	rows, err := s.DB.QueryContext(ctx, vehiculoSelect+b.Clause()+` ORDER BY v.created_at DESC`, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Vehiculo, 0)
	for rows.Next() {
		v, err := scanVehiculo(rows, true)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// GetVehiculo returns one vehiculo with its owner's name.
func (s *Storage) GetVehiculo(ctx context.Context, id int64) (*models.Vehiculo, error) {
	const op = "storage.GetVehiculo"
	v, err := scanVehiculo(s.DB.QueryRowContext(ctx, vehiculoSelect+` WHERE v.id = $1`, id), true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrVehiculoNotFound))
	}
	return v, nil
}

// CreateVehiculo inserts a vehiculo.
func (s *Storage) CreateVehiculo(ctx context.Context, in models.VehiculoInput) (*models.Vehiculo, error) {
	const op = "storage.CreateVehiculo"
	v, err := scanVehiculo(s.DB.QueryRowContext(ctx,
		`INSERT INTO vehiculos AS v (placa, marca, modelo, tipo, cliente_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+vehiculoColumns,
		in.Placa, in.Marca, in.Modelo, in.Tipo, in.ClienteID), false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return v, nil
}

// UpdateVehiculo replaces the editable fields of a vehiculo.
func (s *Storage) UpdateVehiculo(ctx context.Context, id int64, in models.VehiculoInput) (*models.Vehiculo, error) {
	const op = "storage.UpdateVehiculo"
	v, err := scanVehiculo(s.DB.QueryRowContext(ctx,
		`UPDATE vehiculos AS v
		 SET placa = $1, marca = $2, modelo = $3, tipo = $4, cliente_id = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE v.id = $6
		 RETURNING `+vehiculoColumns,
		in.Placa, in.Marca, in.Modelo, in.Tipo, in.ClienteID, id), false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrVehiculoNotFound))
	}
	return v, nil
}

// DeleteVehiculo removes a vehiculo and returns the deleted row.
func (s *Storage) DeleteVehiculo(ctx context.Context, id int64) (*models.Vehiculo, error) {
	const op = "storage.DeleteVehiculo"
	v, err := scanVehiculo(s.DB.QueryRowContext(ctx,
		`DELETE FROM vehiculos AS v WHERE v.id = $1 RETURNING `+vehiculoColumns, id), false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrVehiculoNotFound))
	}
	return v, nil
}

// CountVehiculos returns the number of vehiculos.
func (s *Storage) CountVehiculos(ctx context.Context) (int64, error) {
	const op = "storage.CountVehiculos"
	var n int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehiculos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
