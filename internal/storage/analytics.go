package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dipaca/autolavado/internal/models"
)

// IncomeTotals aggregates the finalized servicios of a window.
type IncomeTotals struct {
	Ingresos  decimal.Decimal
	Servicios int64
	Propinas  decimal.Decimal
}

// MonthIncome is the finalized income of one calendar month.
type MonthIncome struct {
	Month time.Time
	Total decimal.Decimal
}

// Today returns CURRENT_DATE of the database session.
func (s *Storage) Today(ctx context.Context) (time.Time, error) {
	const op = "storage.Today"
	var today time.Time
	if err := s.DB.QueryRowContext(ctx, `SELECT CURRENT_DATE`).Scan(&today); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return today, nil
}

// IncomeSince sums income, count and recorded tips of servicios finalized on or after since.
func (s *Storage) IncomeSince(ctx context.Context, since time.Time) (*IncomeTotals, error) {
	const op = "storage.IncomeSince"
	var t IncomeTotals
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(monto), 0), COUNT(*), COALESCE(SUM(propina), 0)
		 FROM servicios
		 WHERE status = 'FINALIZADO' AND fecha >= $1::date`, since).
		Scan(&t.Ingresos, &t.Servicios, &t.Propinas)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// MonthlyIncome returns finalized income grouped by calendar month from since on, oldest first.
func (s *Storage) MonthlyIncome(ctx context.Context, since time.Time) ([]MonthIncome, error) {
	const op = "storage.MonthlyIncome"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT date_trunc('month', fecha)::date AS month, SUM(monto)
		 FROM servicios
		 WHERE status = 'FINALIZADO' AND fecha >= $1::date
		 GROUP BY month
		 ORDER BY month`, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]MonthIncome, 0)
	for rows.Next() {
		var m MonthIncome
		if err = rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// WorkerRanking counts the finalized servicios each worker was assigned to or
// linked with since the given date. Workers without any are left out.
func (s *Storage) WorkerRanking(ctx context.Context, since time.Time, limit int) ([]models.WorkerRank, error) {
	const op = "storage.WorkerRanking"
	rows, err := s.DB.QueryContext(ctx,
		`WITH participation AS (
		   SELECT s.id AS servicio_id, s.trabajador_id
		   FROM servicios s
		   WHERE s.trabajador_id IS NOT NULL AND s.status = 'FINALIZADO' AND s.fecha >= $1::date
		   UNION
		   SELECT st.servicio_id, st.trabajador_id
		   FROM servicio_trabajadores st
		   JOIN servicios s ON st.servicio_id = s.id
		   WHERE s.status = 'FINALIZADO' AND s.fecha >= $1::date
		 )
		 SELECT t.nombre || ' ' || t.apellido, COUNT(DISTINCT p.servicio_id) AS servicios
		 FROM trabajadores t
		 JOIN participation p ON p.trabajador_id = t.id
		 GROUP BY t.id, t.nombre, t.apellido
		 HAVING COUNT(DISTINCT p.servicio_id) > 0
		 ORDER BY servicios DESC, t.nombre
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.WorkerRank, 0)
	for rows.Next() {
		var r models.WorkerRank
		if err = rows.Scan(&r.Nombre, &r.Servicios); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// IncomeByService groups finalized income by service type, largest first.
func (s *Storage) IncomeByService(ctx context.Context, since time.Time) ([]models.NamedValue, error) {
	const op = "storage.IncomeByService"
	return s.namedIncome(ctx, op, `COALESCE(tipo_servicio, 'SIN TIPO')`, since)
}

// IncomeByPayment groups finalized income by payment method. Unset methods count as EFECTIVO.
func (s *Storage) IncomeByPayment(ctx context.Context, since time.Time) ([]models.NamedValue, error) {
	const op = "storage.IncomeByPayment"
	return s.namedIncome(ctx, op, `COALESCE(metodo_pago, 'EFECTIVO')`, since)
}

func (s *Storage) namedIncome(ctx context.Context, op, key string, since time.Time) ([]models.NamedValue, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+key+` AS name, SUM(monto) AS value
		 FROM servicios
		 WHERE status = 'FINALIZADO' AND fecha >= $1::date
		 GROUP BY name
		 ORDER BY value DESC, name`, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.NamedValue, 0)
	for rows.Next() {
		var nv models.NamedValue
		if err = rows.Scan(&nv.Name, &nv.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, nv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
