package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a servicio.
type Status string

const (
	StatusPendiente  Status = "PENDIENTE"
	StatusEnProceso  Status = "EN_PROCESO"
	StatusLavado     Status = "LAVADO"
	StatusAspirado   Status = "ASPIRADO"
	StatusSecado     Status = "SECADO"
	StatusEncerado   Status = "ENCERADO"
	StatusFinalizado Status = "FINALIZADO"
	StatusCancelado  Status = "CANCELADO"
)

// Statuses lists every accepted status in workflow order.
var Statuses = []Status{
	StatusPendiente,
	StatusEnProceso,
	StatusLavado,
	StatusAspirado,
	StatusSecado,
	StatusEncerado,
	StatusFinalizado,
	StatusCancelado,
}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Servicio is one service order. Monto is the running total and never negative.
type Servicio struct {
	ID           int64           `json:"id"`
	Fecha        string          `json:"fecha"`
	HoraEntrada  *string         `json:"hora_entrada"`
	HoraSalida   *string         `json:"hora_salida"`
	Placa        *string         `json:"placa"`
	VehiculoID   *int64          `json:"vehiculo_id"`
	ClienteID    *int64          `json:"cliente_id"`
	TrabajadorID *int64          `json:"trabajador_id"`
	TipoServicio *string         `json:"tipo_servicio"`
	Descripcion  *string         `json:"descripcion"`
	Monto        decimal.Decimal `json:"monto"`
	Descuento    decimal.Decimal `json:"descuento"`
	Propina      decimal.Decimal `json:"propina"`
	PuntosUsados int             `json:"puntos_usados"`
	MetodoPago   *string         `json:"metodo_pago"`
	Status       Status          `json:"status"`
	Cancelado    bool            `json:"cancelado"`
	Pagado       bool            `json:"pagado"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ServicioView is a servicio joined with its cliente name and vehicle description.
type ServicioView struct {
	Servicio
	ClienteNombre *string `json:"cliente_nombre"`
	Marca         *string `json:"marca"`
	Modelo        *string `json:"modelo"`
	Tipo          *string `json:"tipo"`
}

// ServicioDetail is the full view of one servicio.
type ServicioDetail struct {
	ServicioView
	Cliente      *ClienteInfo `json:"cliente"`
	Trabajadores []string     `json:"trabajadores"`
	Todos        []Todo       `json:"todos"`
}

// TodoInput is one checklist entry of a new servicio or todo.
type TodoInput struct {
	Text string `json:"text" validate:"required"`
	Done bool   `json:"done"`
}

// ServicioInput is the body of POST /servicios.
type ServicioInput struct {
	Fecha        string          `json:"fecha" validate:"required,datetime=2006-01-02"`
	HoraEntrada  *string         `json:"hora_entrada"`
	HoraSalida   *string         `json:"hora_salida"`
	Placa        *string         `json:"placa"`
	VehiculoID   *int64          `json:"vehiculo_id"`
	ClienteID    *int64          `json:"cliente_id"`
	TrabajadorID *int64          `json:"trabajador_id"`
	TipoServicio *string         `json:"tipo_servicio"`
	Descripcion  *string         `json:"descripcion"`
	Monto        decimal.Decimal `json:"monto"`
	MetodoPago   *string         `json:"metodo_pago"`
	Status       Status          `json:"status"`
	Trabajadores []int64         `json:"trabajadores"`
	Todos        []TodoInput     `json:"todos" validate:"dive"`
}

// ServicioUpdate is the body of PUT /servicios/{id}.
type ServicioUpdate struct {
	Fecha        string          `json:"fecha" validate:"required,datetime=2006-01-02"`
	HoraEntrada  *string         `json:"hora_entrada"`
	HoraSalida   *string         `json:"hora_salida"`
	TipoServicio *string         `json:"tipo_servicio"`
	Monto        decimal.Decimal `json:"monto"`
	MetodoPago   *string         `json:"metodo_pago"`
	Status       Status          `json:"status" validate:"required"`
	Cancelado    bool            `json:"cancelado"`
}

// ServicioFilter carries the list query parameters of /servicios.
type ServicioFilter struct {
	Search string
	Status Status
	Fecha  string
}

// Entradas is the body of GET /servicios/stats.
type Entradas struct {
	Entradas int64 `json:"entradas"`
}

// Todo is a checklist entry of a servicio.
type Todo struct {
	ID         int64     `json:"id"`
	ServicioID int64     `json:"servicio_id"`
	Text       string    `json:"text"`
	Done       bool      `json:"done"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ServicioItem is a priced line of a servicio.
type ServicioItem struct {
	ID         int64           `json:"id"`
	ServicioID int64           `json:"servicio_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ItemInput is the body of POST /servicio-items/{servicio_id}/items.
type ItemInput struct {
	Nombre string          `json:"nombre" validate:"required"`
	Precio decimal.Decimal `json:"precio"`
}

// DiscountInput is the body of POST /servicio-items/{servicio_id}/discount.
type DiscountInput struct {
	Descuento    decimal.Decimal `json:"descuento"`
	PuntosUsados int             `json:"puntos_usados" validate:"min=0"`
}

// PaymentInput is the body of POST /servicio-items/{servicio_id}/payment.
type PaymentInput struct {
	MetodoPago string          `json:"metodo_pago" validate:"required"`
	Propina    decimal.Decimal `json:"propina"`
}

// ProductoCatalogo is a predefined purchasable item.
type ProductoCatalogo struct {
	ID     int64           `json:"id"`
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
	Activo bool            `json:"activo"`
}

// StatusInput is the body of PATCH /servicios/{id}/status.
type StatusInput struct {
	Status Status `json:"status" validate:"required"`
}
