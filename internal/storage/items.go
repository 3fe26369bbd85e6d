package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/models"
)

const itemColumns = `id, servicio_id, nombre, precio, created_at, updated_at`

// ErrItemNotFound is returned by item lookups and by a repeated removal.
var ErrItemNotFound = apperr.NotFound("Item not found")

func scanItem(row scanner) (*models.ServicioItem, error) {
	var it models.ServicioItem
	if err := row.Scan(&it.ID, &it.ServicioID, &it.Nombre, &it.Precio, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListItems returns the line items of a servicio in insertion order.
func (s *Storage) ListItems(ctx context.Context, servicioID int64) ([]models.ServicioItem, error) {
	const op = "storage.ListItems"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM servicio_items WHERE servicio_id = $1 ORDER BY created_at, id`, servicioID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.ServicioItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// AddItem inserts a line item and raises the servicio total by its price.
func (s *Storage) AddItem(ctx context.Context, servicioID int64, nombre string, precio decimal.Decimal) (*models.ServicioItem, error) {
	const op = "storage.AddItem"
	var item *models.ServicioItem

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := lockStatus(ctx, tx, servicioID); err != nil {
			return err
		}
		var err error
		item, err = scanItem(tx.QueryRowContext(ctx,
			`INSERT INTO servicio_items (servicio_id, nombre, precio)
			 VALUES ($1, $2, $3)
			 RETURNING `+itemColumns,
			servicioID, nombre, precio))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE servicios SET monto = monto + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			item.Precio, servicioID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return item, nil
}

// RemoveItem deletes a line item and lowers the servicio total by its price,
// never below zero. Removing an already removed item is ErrItemNotFound and
// leaves the total untouched.
func (s *Storage) RemoveItem(ctx context.Context, itemID int64) (*models.ServicioItem, error) {
	const op = "storage.RemoveItem"
	var item *models.ServicioItem

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = scanItem(tx.QueryRowContext(ctx,
			`DELETE FROM servicio_items WHERE id = $1 RETURNING `+itemColumns, itemID))
		if err != nil {
			return translate(err, ErrItemNotFound)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE servicios SET monto = GREATEST(0, monto - $1), updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			item.Precio, item.ServicioID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// ItemOwner returns the cliente owning the servicio of an item.
func (s *Storage) ItemOwner(ctx context.Context, itemID int64) (*int64, error) {
	const op = "storage.ItemOwner"
	var owner *int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT s.cliente_id
		 FROM servicio_items si
		 JOIN servicios s ON si.servicio_id = s.id
		 WHERE si.id = $1`, itemID).Scan(&owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrItemNotFound))
	}
	return owner, nil
}

// ApplyDiscount overwrites the discount and used points of a servicio.
func (s *Storage) ApplyDiscount(ctx context.Context, servicioID int64, descuento decimal.Decimal, puntos int) (*models.Servicio, error) {
	const op = "storage.ApplyDiscount"
	sv, err := scanServicio(s.DB.QueryRowContext(ctx,
		`UPDATE servicios AS s
		 SET descuento = $1, puntos_usados = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE s.id = $3
		 RETURNING `+servicioColumns,
		descuento, puntos, servicioID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	return sv, nil
}

// ProcessPayment records the payment, closes the servicio as FINALIZADO and
// stamps the exit time. Workers are credited once, on the first close.
func (s *Storage) ProcessPayment(ctx context.Context, servicioID int64, metodoPago string, propina decimal.Decimal) (*models.Servicio, error) {
	const op = "storage.ProcessPayment"
	sv, err := s.updateStatusTx(ctx, servicioID, models.StatusFinalizado,
		func(tx *sql.Tx) (*models.Servicio, error) {
			return scanServicio(tx.QueryRowContext(ctx,
				`UPDATE servicios AS s
				 SET metodo_pago = $1, propina = $2, status = 'FINALIZADO', cancelado = true, pagado = true,
				     hora_salida = CURRENT_TIME, updated_at = CURRENT_TIMESTAMP
				 WHERE s.id = $3
				 RETURNING `+servicioColumns,
				metodoPago, propina, servicioID))
		})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	return sv, nil
}

// ListCatalogo returns the active catalog products by name.
func (s *Storage) ListCatalogo(ctx context.Context) ([]models.ProductoCatalogo, error) {
	const op = "storage.ListCatalogo"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, nombre, precio, activo FROM productos_catalogo WHERE activo = true ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.ProductoCatalogo, 0)
	for rows.Next() {
		var p models.ProductoCatalogo
		if err = rows.Scan(&p.ID, &p.Nombre, &p.Precio, &p.Activo); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
