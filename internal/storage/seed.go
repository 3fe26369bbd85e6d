package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Demo accounts written by SeedDemo.
const (
	DemoAdminEmail   = "admin@dipaca.com"
	DemoClienteEmail = "marco@test.com"
)

// SeedDemo writes the demo admin, one cliente with a login, two workers, a
// vehicle and a week of servicios. Rows are keyed by email, CI and placa so a
// second run changes nothing but passwords.
func (s *Storage) SeedDemo(ctx context.Context, adminHash, clienteHash string) error {
	const op = "storage.SeedDemo"
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (email, password, nombre, rol)
			 VALUES ($1, $2, 'Administrador', 'admin')
			 ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password`,
			DemoAdminEmail, adminHash); err != nil {
			return err
		}

		var clienteID, jose, antonio, vehiculoID int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO clientes (ci, nombre, apellido, telefono, correo)
			 VALUES ('12345678', 'Marco', 'Cobo', '04123456789', $1)
			 ON CONFLICT (ci) DO UPDATE SET nombre = EXCLUDED.nombre
			 RETURNING id`, DemoClienteEmail).Scan(&clienteID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (email, password, nombre, rol, cliente_id)
			 VALUES ($1, $2, 'Marco Cobo', 'cliente', $3)
			 ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password`,
			DemoClienteEmail, clienteHash, clienteID); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO trabajadores (ci, nombre, apellido, telefono, correo, cargo)
			 VALUES ('87654321', 'Jose', 'Nieves', '04129876543', 'jose@test.com', 'Mecánico')
			 ON CONFLICT (ci) DO UPDATE SET nombre = EXCLUDED.nombre
			 RETURNING id`).Scan(&jose); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO trabajadores (ci, nombre, apellido, telefono, correo, cargo)
			 VALUES ('11223344', 'Antonio', 'Lehmua', '04141234567', 'antonio@test.com', 'Lavador')
			 ON CONFLICT (ci) DO UPDATE SET nombre = EXCLUDED.nombre
			 RETURNING id`).Scan(&antonio); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO vehiculos (placa, marca, modelo, tipo, cliente_id)
			 VALUES ('ABC123', 'Ford', 'Fusion', 'Sedan', $1)
			 ON CONFLICT (placa) DO UPDATE SET marca = EXCLUDED.marca
			 RETURNING id`, clienteID).Scan(&vehiculoID); err != nil {
			return err
		}

		var seeded bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM servicios WHERE cliente_id = $1)`, clienteID).Scan(&seeded); err != nil {
			return err
		}
		if seeded {
			return nil
		}

		var first int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO servicios (cliente_id, vehiculo_id, placa, trabajador_id, tipo_servicio, descripcion,
			     monto, fecha, status, metodo_pago, hora_entrada, hora_salida, pagado)
			 VALUES
			   ($1, $2, 'ABC123', $3, 'FULL', 'Lavado completo', 20, CURRENT_DATE, 'FINALIZADO', 'EFECTIVO', '09:00', '10:30', true),
			   ($1, $2, 'ABC123', $3, 'BÁSICO', 'Lavado básico', 15, CURRENT_DATE, 'EN_PROCESO', NULL, '11:00', NULL, false),
			   ($1, $2, 'ABC123', $4, 'PREMIUM', 'Lavado premium con encerado', 35, CURRENT_DATE - 1, 'FINALIZADO', 'TARJETA', '14:00', '16:00', true),
			   ($1, $2, 'ABC123', $3, 'FULL', 'Lavado completo', 20, CURRENT_DATE - 2, 'FINALIZADO', 'PAGO_MOVIL', '10:00', '11:30', true),
			   ($1, $2, 'ABC123', $4, 'BÁSICO', 'Lavado exterior', 12, CURRENT_DATE - 3, 'FINALIZADO', 'EFECTIVO', '15:00', '15:45', true),
			   ($1, $2, 'ABC123', $3, 'FULL', 'Lavado completo con aspirado', 25, CURRENT_DATE - 7, 'FINALIZADO', 'ZELLE', '09:00', '11:00', true),
			   ($1, $2, 'ABC123', $4, 'PREMIUM', 'Lavado premium', 40, CURRENT_DATE - 14, 'FINALIZADO', 'BINANCE', '13:00', '15:30', true)
			 RETURNING id`, clienteID, vehiculoID, jose, antonio).Scan(&first); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todos (servicio_id, text, done)
			 VALUES ($1, 'Confirmar pago', true),
			        ($1, 'Verificar limpieza interior', true),
			        ($1, 'Revisar neumáticos', false)`, first); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE trabajadores t
			 SET servicios_realizados = (
			   SELECT COUNT(*) FROM servicios s WHERE s.trabajador_id = t.id AND s.status = 'FINALIZADO'
			 )`)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
