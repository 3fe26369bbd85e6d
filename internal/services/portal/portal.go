// Package services serves the client portal. Every call is scoped to the
// cliente id carried by the caller's token.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dipaca/autolavado/internal/lib/period"
	"github.com/dipaca/autolavado/internal/models"
	"github.com/dipaca/autolavado/internal/storage"
)

const (
	// DashboardServicios is how many recent servicios the dashboard shows.
	DashboardServicios = 10
	// DefaultLimit caps the portal lists when no limit is given.
	DefaultLimit = 50
)

// PortalRepository is the store seen by the portal.
type PortalRepository interface {
	GetCliente(ctx context.Context, id int64) (*models.Cliente, error)
	UpdateClienteProfile(ctx context.Context, id int64, in models.ProfileUpdate) (*models.Cliente, error)
	ListVehiculos(ctx context.Context, f models.ListFilter) ([]models.Vehiculo, error)
	ListClienteServicios(ctx context.Context, clienteID int64, q storage.ClienteServiciosQuery) ([]models.ServicioView, error)
	ClienteStats(ctx context.Context, clienteID int64) (*models.ClienteStats, error)
}

// PortalService answers /client/* for one cliente at a time.
type PortalService struct {
	repo PortalRepository
	now  func() time.Time
}

// NewPortalService creates a PortalService.
func NewPortalService(repo PortalRepository) *PortalService {
	return &PortalService{repo: repo, now: time.Now}
}

// Dashboard returns the cliente, its vehicles, its latest servicios and totals.
func (s *PortalService) Dashboard(ctx context.Context, clienteID int64) (*models.ClienteDashboard, error) {
	const op = "services.portal.Dashboard"
	cliente, err := s.repo.GetCliente(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	vehiculos, err := s.Vehicles(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	servicios, err := s.repo.ListClienteServicios(ctx, clienteID, storage.ClienteServiciosQuery{Limit: DashboardServicios})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats, err := s.repo.ClienteStats(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.ClienteDashboard{
		Cliente:   *cliente,
		Vehiculos: vehiculos,
		Servicios: servicios,
		Stats:     *stats,
	}, nil
}

// ActiveServices returns the cliente's servicios that are neither finished nor
// cancelled, optionally narrowed to a turno window.
func (s *PortalService) ActiveServices(ctx context.Context, clienteID int64, turno string, limit int) ([]models.ServicioView, error) {
	const op = "services.portal.ActiveServices"
	q := storage.ClienteServiciosQuery{
		Exclude: []models.Status{models.StatusFinalizado, models.StatusCancelado},
		Limit:   orDefault(limit),
	}
	if w, ok := period.Turno(turno, s.now()); ok {
		q.Window = &w
	}
	out, err := s.repo.ListClienteServicios(ctx, clienteID, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Info returns the cliente record.
func (s *PortalService) Info(ctx context.Context, clienteID int64) (*models.Cliente, error) {
	const op = "services.portal.Info"
	c, err := s.repo.GetCliente(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Services returns the cliente's servicios, optionally of one status.
func (s *PortalService) Services(ctx context.Context, clienteID int64, status models.Status, limit int) ([]models.ServicioView, error) {
	const op = "services.portal.Services"
	out, err := s.repo.ListClienteServicios(ctx, clienteID, storage.ClienteServiciosQuery{
		Status: status,
		Limit:  orDefault(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Vehicles returns the cliente's vehicles.
func (s *PortalService) Vehicles(ctx context.Context, clienteID int64) ([]models.Vehiculo, error) {
	const op = "services.portal.Vehicles"
	out, err := s.repo.ListVehiculos(ctx, models.ListFilter{ClienteID: &clienteID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// UpdateProfile changes the cliente's phone and email.
func (s *PortalService) UpdateProfile(ctx context.Context, clienteID int64, in models.ProfileUpdate) (*models.Cliente, error) {
	const op = "services.portal.UpdateProfile"
	c, err := s.repo.UpdateClienteProfile(ctx, clienteID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func orDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
