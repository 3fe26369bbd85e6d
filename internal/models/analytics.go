package models

import "github.com/shopspring/decimal"

// DashboardStats is the body of GET /dashboard/stats.
type DashboardStats struct {
	TotalIngresos     decimal.Decimal `json:"total_ingresos"`
	TotalServicios    int64           `json:"total_servicios"`
	EstimatedTipShare decimal.Decimal `json:"estimated_tip_share"`
	RecordedTips      decimal.Decimal `json:"recorded_tips"`
	Period            string          `json:"period"`
}

// NamedValue is one point of a chart series.
type NamedValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color,omitempty"`
}

// WorkerRank is one row of the worker ranking.
type WorkerRank struct {
	Nombre    string `json:"nombre"`
	Servicios int64  `json:"servicios"`
}

// ClienteStats summarises a cliente's orders.
type ClienteStats struct {
	TotalServicios       int64           `json:"total_servicios"`
	TotalGastado         decimal.Decimal `json:"total_gastado"`
	ServiciosCompletados int64           `json:"servicios_completados"`
}

// ClienteDashboard is the body of GET /client/dashboard.
type ClienteDashboard struct {
	Cliente   Cliente        `json:"cliente"`
	Vehiculos []Vehiculo     `json:"vehiculos"`
	Servicios []ServicioView `json:"servicios"`
	Stats     ClienteStats   `json:"stats"`
}
