// Package models contains the domain types shared by storage, services and handlers.
package models

import "time"

// Role is the access role of a login.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCliente Role = "cliente"
)

// User is a login account. A cliente user always references its Cliente.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Nombre    string    `json:"nombre"`
	Rol       Role      `json:"rol"`
	ClienteID *int64    `json:"cliente_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClienteInfo is the customer summary attached to a cliente user's profile.
type ClienteInfo struct {
	ID       int64   `json:"id"`
	CI       string  `json:"ci"`
	Nombre   string  `json:"nombre"`
	Apellido string  `json:"apellido"`
	Telefono *string `json:"telefono"`
	Correo   *string `json:"correo"`
}

// Profile is the public view of a user returned by login and verify.
type Profile struct {
	ID          int64        `json:"id"`
	Email       string       `json:"email"`
	Nombre      string       `json:"nombre"`
	Rol         Role         `json:"rol"`
	ClienteID   *int64       `json:"cliente_id"`
	ClienteInfo *ClienteInfo `json:"clienteInfo"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// RegisterClienteRequest creates a cliente record and its login together.
type RegisterClienteRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	CI       string  `json:"ci" validate:"required"`
	Nombre   string  `json:"nombre" validate:"required"`
	Apellido string  `json:"apellido" validate:"required"`
	Telefono *string `json:"telefono"`
	Correo   *string `json:"correo" validate:"omitempty,email"`
}

// RegisterClienteResult is returned by a successful cliente registration.
type RegisterClienteResult struct {
	Message string  `json:"message"`
	User    User    `json:"user"`
	Cliente Cliente `json:"cliente"`
}

// RegisterAdminRequest creates an admin login.
type RegisterAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Nombre   string `json:"nombre" validate:"required"`
}
