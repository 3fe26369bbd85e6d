package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/period"
	"github.com/dipaca/autolavado/internal/lib/sqlfilter"
	"github.com/dipaca/autolavado/internal/models"
)

const servicioColumns = `s.id, s.fecha::text, s.hora_entrada::text, s.hora_salida::text, s.placa,
	s.vehiculo_id, s.cliente_id, s.trabajador_id, s.tipo_servicio, s.descripcion,
	s.monto, s.descuento, s.propina, s.puntos_usados, s.metodo_pago, s.status,
	s.cancelado, s.pagado, s.created_at, s.updated_at`

const servicioViewSelect = `SELECT ` + servicioColumns + `,
	c.nombre || ' ' || c.apellido, v.marca, v.modelo, v.tipo
	FROM servicios s
	LEFT JOIN clientes c ON s.cliente_id = c.id
	LEFT JOIN vehiculos v ON s.vehiculo_id = v.id`

// ErrServicioNotFound is returned by servicio lookups.
var ErrServicioNotFound = apperr.NotFound("Servicio not found")

func servicioDest(sv *models.Servicio) []any {
	return []any{
		&sv.ID, &sv.Fecha, &sv.HoraEntrada, &sv.HoraSalida, &sv.Placa,
		&sv.VehiculoID, &sv.ClienteID, &sv.TrabajadorID, &sv.TipoServicio, &sv.Descripcion,
		&sv.Monto, &sv.Descuento, &sv.Propina, &sv.PuntosUsados, &sv.MetodoPago, &sv.Status,
		&sv.Cancelado, &sv.Pagado, &sv.CreatedAt, &sv.UpdatedAt,
	}
}

func scanServicio(row scanner) (*models.Servicio, error) {
	var sv models.Servicio
	if err := row.Scan(servicioDest(&sv)...); err != nil {
		return nil, err
	}
	return &sv, nil
}

func scanServicioView(row scanner) (*models.ServicioView, error) {
	var sv models.ServicioView
	dest := append(servicioDest(&sv.Servicio), &sv.ClienteNombre, &sv.Marca, &sv.Modelo, &sv.Tipo)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &sv, nil
}

func (s *Storage) queryServicioViews(ctx context.Context, op, query string, args ...any) ([]models.ServicioView, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.ServicioView, 0)
	for rows.Next() {
		sv, err := scanServicioView(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *sv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ListServicios returns servicios matching the filter, latest date first.
func (s *Storage) ListServicios(ctx context.Context, f models.ServicioFilter) ([]models.ServicioView, error) {
	const op = "storage.ListServicios"
	b := sqlfilter.New().Search(f.Search, "s.placa", "c.nombre", "c.apellido")
	if f.Status != "" {
		b.Eq("s.status", string(f.Status))
	}
	if f.Fecha != "" {
		b.Where("s.fecha = ?::date", f.Fecha)
	}
	return s.queryServicioViews(ctx, op,
		servicioViewSelect+b.Clause()+` ORDER BY s.fecha DESC, s.created_at DESC`, b.Args()...)
}

// ListActiveServicios returns every servicio that is not FINALIZADO, newest first.
func (s *Storage) ListActiveServicios(ctx context.Context) ([]models.ServicioView, error) {
	const op = "storage.ListActiveServicios"
	b := sqlfilter.New().NotEq("s.status", string(models.StatusFinalizado))
	return s.queryServicioViews(ctx, op,
		servicioViewSelect+b.Clause()+` ORDER BY s.created_at DESC`, b.Args()...)
}

// ListCompletedServicios returns the latest FINALIZADO servicios.
func (s *Storage) ListCompletedServicios(ctx context.Context, limit int) ([]models.ServicioView, error) {
	const op = "storage.ListCompletedServicios"
	b := sqlfilter.New().Eq("s.status", string(models.StatusFinalizado))
	return s.queryServicioViews(ctx, op,
		servicioViewSelect+b.Clause()+` ORDER BY s.fecha DESC, s.created_at DESC LIMIT `+b.Arg(limit), b.Args()...)
}

// ClienteServiciosQuery narrows the servicios of one cliente.
type ClienteServiciosQuery struct {
	Status  models.Status
	Exclude []models.Status
	Window  *period.Window
	Limit   int
}

// ListClienteServicios returns servicios of one cliente, latest date first.
func (s *Storage) ListClienteServicios(ctx context.Context, clienteID int64, q ClienteServiciosQuery) ([]models.ServicioView, error) {
	const op = "storage.ListClienteServicios"
	b := sqlfilter.New().Eq("s.cliente_id", clienteID)
	if q.Status != "" {
		b.Eq("s.status", string(q.Status))
	}
	if len(q.Exclude) > 0 {
		ex := make([]any, len(q.Exclude))
		for i, st := range q.Exclude {
			ex[i] = string(st)
		}
		b.NotIn("s.status", ex...)
	}
	if q.Window != nil {
		b.Where("s.fecha >= ?::date AND s.fecha < ?::date", q.Window.From, q.Window.To)
	}
	query := servicioViewSelect + b.Clause() + ` ORDER BY s.fecha DESC, s.created_at DESC`
	if q.Limit > 0 {
		query += ` LIMIT ` + b.Arg(q.Limit)
	}
	return s.queryServicioViews(ctx, op, query, b.Args()...)
}

// GetServicio returns the bare servicio row.
func (s *Storage) GetServicio(ctx context.Context, id int64) (*models.Servicio, error) {
	const op = "storage.GetServicio"
	sv, err := scanServicio(s.DB.QueryRowContext(ctx,
		`SELECT `+servicioColumns+` FROM servicios s WHERE s.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	return sv, nil
}

// GetServicioDetail returns a servicio with its cliente, vehicle, workers and todos.
func (s *Storage) GetServicioDetail(ctx context.Context, id int64) (*models.ServicioDetail, error) {
	const op = "storage.GetServicioDetail"
	view, err := scanServicioView(s.DB.QueryRowContext(ctx, servicioViewSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	detail := &models.ServicioDetail{ServicioView: *view}

	if view.ClienteID != nil {
		info, err := s.GetClienteInfo(ctx, *view.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		detail.Cliente = info
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT t.nombre || ' ' || t.apellido
		 FROM trabajadores t
		 WHERE t.id IN (
		   SELECT trabajador_id FROM servicio_trabajadores WHERE servicio_id = $1
		   UNION
		   SELECT trabajador_id FROM servicios WHERE id = $1 AND trabajador_id IS NOT NULL
		 )
		 ORDER BY 1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	detail.Trabajadores = make([]string, 0)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		detail.Trabajadores = append(detail.Trabajadores, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	detail.Todos, err = s.ListTodos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return detail, nil
}

// CreateServicio inserts the order, one link per worker and one todo per entry
// in a single transaction. Repeated worker ids are linked once.
func (s *Storage) CreateServicio(ctx context.Context, in models.ServicioInput) (*models.Servicio, error) {
	const op = "storage.CreateServicio"
	var created *models.Servicio

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = scanServicio(tx.QueryRowContext(ctx,
			`INSERT INTO servicios AS s (fecha, hora_entrada, hora_salida, placa, vehiculo_id, cliente_id,
			     trabajador_id, tipo_servicio, descripcion, monto, metodo_pago, status)
			 VALUES ($1::date, $2::time, $3::time, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 RETURNING `+servicioColumns,
			in.Fecha, in.HoraEntrada, in.HoraSalida, in.Placa, in.VehiculoID, in.ClienteID,
			in.TrabajadorID, in.TipoServicio, in.Descripcion, in.Monto, in.MetodoPago, string(in.Status)))
		if err != nil {
			return err
		}

		for _, tid := range in.Trabajadores {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO servicio_trabajadores (servicio_id, trabajador_id)
				 VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`, created.ID, tid); err != nil {
				return err
			}
		}

		for _, td := range in.Todos {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO todos (servicio_id, text, done) VALUES ($1, $2, $3)`,
				created.ID, td.Text, td.Done); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, nil))
	}
	return created, nil
}

// lockStatus locks the servicio row for the rest of tx and returns its status.
func lockStatus(ctx context.Context, tx *sql.Tx, id int64) (models.Status, error) {
	var st models.Status
	err := tx.QueryRowContext(ctx, `SELECT status FROM servicios WHERE id = $1 FOR UPDATE`, id).Scan(&st)
	if err != nil {
		return "", translate(err, ErrServicioNotFound)
	}
	return st, nil
}

// creditWorkers adds one finished order to every worker assigned to or linked with the servicio.
func creditWorkers(ctx context.Context, q queryer, id int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE trabajadores
		 SET servicios_realizados = servicios_realizados + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id IN (
		   SELECT trabajador_id FROM servicio_trabajadores WHERE servicio_id = $1
		   UNION
		   SELECT trabajador_id FROM servicios WHERE id = $1 AND trabajador_id IS NOT NULL
		 )`, id)
	return err
}

// updateStatusTx runs update under the row lock and credits workers when the
// servicio enters FINALIZADO.
func (s *Storage) updateStatusTx(ctx context.Context, id int64, next models.Status,
	update func(tx *sql.Tx) (*models.Servicio, error)) (*models.Servicio, error) {
	var updated *models.Servicio
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := lockStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		updated, err = update(tx)
		if err != nil {
			return err
		}
		if prev != models.StatusFinalizado && next == models.StatusFinalizado {
			return creditWorkers(ctx, tx, id)
		}
		return nil
	})
	return updated, err
}

// UpdateServicio replaces the editable fields of a servicio.
func (s *Storage) UpdateServicio(ctx context.Context, id int64, in models.ServicioUpdate) (*models.Servicio, error) {
	const op = "storage.UpdateServicio"
	sv, err := s.updateStatusTx(ctx, id, in.Status,
		func(tx *sql.Tx) (*models.Servicio, error) {
			return scanServicio(tx.QueryRowContext(ctx,
				`UPDATE servicios AS s
				 SET fecha = $1::date, hora_entrada = $2::time, hora_salida = $3::time, tipo_servicio = $4,
				     monto = $5, metodo_pago = $6, status = $7, cancelado = $8, updated_at = CURRENT_TIMESTAMP
				 WHERE s.id = $9
				 RETURNING `+servicioColumns,
				in.Fecha, in.HoraEntrada, in.HoraSalida, in.TipoServicio,
				in.Monto, in.MetodoPago, string(in.Status), in.Cancelado, id))
		})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	return sv, nil
}

// UpdateServicioStatus moves a servicio to status.
func (s *Storage) UpdateServicioStatus(ctx context.Context, id int64, status models.Status) (*models.Servicio, error) {
	const op = "storage.UpdateServicioStatus"
	sv, err := s.updateStatusTx(ctx, id, status,
		func(tx *sql.Tx) (*models.Servicio, error) {
			return scanServicio(tx.QueryRowContext(ctx,
				`UPDATE servicios AS s
				 SET status = $1, updated_at = CURRENT_TIMESTAMP
				 WHERE s.id = $2
				 RETURNING `+servicioColumns,
				string(status), id))
		})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	return sv, nil
}

// DeleteServicio removes a servicio with its links, todos and items and returns the deleted row.
func (s *Storage) DeleteServicio(ctx context.Context, id int64) (*models.Servicio, error) {
	const op = "storage.DeleteServicio"
	sv, err := scanServicio(s.DB.QueryRowContext(ctx,
		`DELETE FROM servicios AS s WHERE s.id = $1 RETURNING `+servicioColumns, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	return sv, nil
}

// CountEntradas returns the number of servicios dated on day.
func (s *Storage) CountEntradas(ctx context.Context, day time.Time) (int64, error) {
	const op = "storage.CountEntradas"
	var n int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM servicios WHERE fecha = $1::date`, period.Day(day)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ServicioOwner returns the cliente a servicio belongs to, nil when it has none.
func (s *Storage) ServicioOwner(ctx context.Context, id int64) (*int64, error) {
	const op = "storage.ServicioOwner"
	var owner *int64
	err := s.DB.QueryRowContext(ctx, `SELECT cliente_id FROM servicios WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err, ErrServicioNotFound))
	}
	return owner, nil
}

// ClienteStats summarises the servicios of a cliente.
func (s *Storage) ClienteStats(ctx context.Context, clienteID int64) (*models.ClienteStats, error) {
	const op = "storage.ClienteStats"
	var st models.ClienteStats
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(monto), 0), COUNT(*) FILTER (WHERE status = 'FINALIZADO')
		 FROM servicios
		 WHERE cliente_id = $1`, clienteID).
		Scan(&st.TotalServicios, &st.TotalGastado, &st.ServiciosCompletados)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}
