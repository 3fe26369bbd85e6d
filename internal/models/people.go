package models

import "time"

// Cliente is a customer of the wash.
type Cliente struct {
	ID        int64     `json:"id"`
	CI        string    `json:"ci"`
	Nombre    string    `json:"nombre"`
	Apellido  string    `json:"apellido"`
	Telefono  *string   `json:"telefono"`
	Correo    *string   `json:"correo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClienteInput is the body for creating or replacing a cliente.
type ClienteInput struct {
	CI       string  `json:"ci" validate:"required"`
	Nombre   string  `json:"nombre" validate:"required"`
	Apellido string  `json:"apellido" validate:"required"`
	Telefono *string `json:"telefono"`
	Correo   *string `json:"correo" validate:"omitempty,email"`
}

// ProfileUpdate is what a cliente may change about themself.
type ProfileUpdate struct {
	Telefono *string `json:"telefono"`
	Correo   *string `json:"correo" validate:"omitempty,email"`
}

// Trabajador is a worker of the wash.
type Trabajador struct {
	ID                  int64     `json:"id"`
	CI                  string    `json:"ci"`
	Nombre              string    `json:"nombre"`
	Apellido            string    `json:"apellido"`
	Telefono            *string   `json:"telefono"`
	Correo              *string   `json:"correo"`
	Cargo               *string   `json:"cargo"`
	ServiciosRealizados int       `json:"servicios_realizados"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TrabajadorInput is the body for creating or replacing a trabajador.
type TrabajadorInput struct {
	CI       string  `json:"ci" validate:"required"`
	Nombre   string  `json:"nombre" validate:"required"`
	Apellido string  `json:"apellido" validate:"required"`
	Telefono *string `json:"telefono"`
	Correo   *string `json:"correo" validate:"omitempty,email"`
	Cargo    *string `json:"cargo"`
}

// Vehiculo is a customer's vehicle.
type Vehiculo struct {
	ID            int64     `json:"id"`
	Placa         string    `json:"placa"`
	Marca         *string   `json:"marca"`
	Modelo        *string   `json:"modelo"`
	Tipo          *string   `json:"tipo"`
	ClienteID     *int64    `json:"cliente_id"`
	ClienteNombre *string   `json:"cliente_nombre,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VehiculoInput is the body for creating or replacing a vehiculo.
type VehiculoInput struct {
	Placa     string  `json:"placa" validate:"required"`
	Marca     *string `json:"marca"`
	Modelo    *string `json:"modelo"`
	Tipo      *string `json:"tipo"`
	ClienteID *int64  `json:"cliente_id"`
}

// ListFilter carries the optional list query parameters shared by resources.
type ListFilter struct {
	Search    string
	ClienteID *int64
}

// Total is the body of the simple count endpoints.
type Total struct {
	Total int64 `json:"total"`
}
