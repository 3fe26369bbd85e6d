// Package services holds the order lifecycle: composition, edits and status moves.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dipaca/autolavado/internal/events"
	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/models"
)

// CompletedLimit caps GET /servicios/completed.
const CompletedLimit = 50

var (
	// ErrInvalidStatus is returned for a status outside the workflow.
	ErrInvalidStatus = apperr.Validation("Invalid status")
	// ErrNegativeMonto is returned for a negative amount.
	ErrNegativeMonto = apperr.Validation("Monto must be greater than or equal to 0")
)

// ServicioRepository is the servicio store.
type ServicioRepository interface {
	ListServicios(ctx context.Context, f models.ServicioFilter) ([]models.ServicioView, error)
	ListActiveServicios(ctx context.Context) ([]models.ServicioView, error)
	ListCompletedServicios(ctx context.Context, limit int) ([]models.ServicioView, error)
	GetServicioDetail(ctx context.Context, id int64) (*models.ServicioDetail, error)
	CreateServicio(ctx context.Context, in models.ServicioInput) (*models.Servicio, error)
	UpdateServicio(ctx context.Context, id int64, in models.ServicioUpdate) (*models.Servicio, error)
	UpdateServicioStatus(ctx context.Context, id int64, status models.Status) (*models.Servicio, error)
	DeleteServicio(ctx context.Context, id int64) (*models.Servicio, error)
	CountEntradas(ctx context.Context, day time.Time) (int64, error)
}

// ServicioService composes and moves service orders.
type ServicioService struct {
	repo      ServicioRepository
	publisher events.Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewServicioService creates a ServicioService.
func NewServicioService(repo ServicioRepository, publisher events.Publisher, log *slog.Logger) *ServicioService {
	return &ServicioService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// List returns servicios matching the filter.
func (s *ServicioService) List(ctx context.Context, f models.ServicioFilter) ([]models.ServicioView, error) {
	const op = "services.servicios.List"
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	out, err := s.repo.ListServicios(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Active returns the servicios still in the workflow.
func (s *ServicioService) Active(ctx context.Context) ([]models.ServicioView, error) {
	const op = "services.servicios.Active"
	out, err := s.repo.ListActiveServicios(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Completed returns the latest finished servicios.
func (s *ServicioService) Completed(ctx context.Context) ([]models.ServicioView, error) {
	const op = "services.servicios.Completed"
	out, err := s.repo.ListCompletedServicios(ctx, CompletedLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Get returns the detail view of one servicio.
func (s *ServicioService) Get(ctx context.Context, id int64) (*models.ServicioDetail, error) {
	const op = "services.servicios.Get"
	d, err := s.repo.GetServicioDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// Create stores the order with its worker links and todos. Status defaults to PENDIENTE.
func (s *ServicioService) Create(ctx context.Context, in models.ServicioInput) (*models.Servicio, error) {
	const op = "services.servicios.Create"
	if in.Status == "" {
		in.Status = models.StatusPendiente
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if in.Monto.IsNegative() {
		return nil, ErrNegativeMonto
	}

	sv, err := s.repo.CreateServicio(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("servicio created",
		slog.Int64("id", sv.ID),
		slog.Int("trabajadores", len(in.Trabajadores)),
		slog.Int("todos", len(in.Todos)))

	events.Notify(ctx, s.log, s.publisher, events.ServicioCreado, sv)
	return sv, nil
}

// Update replaces the editable fields of a servicio.
func (s *ServicioService) Update(ctx context.Context, id int64, in models.ServicioUpdate) (*models.Servicio, error) {
	const op = "services.servicios.Update"
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if in.Monto.IsNegative() {
		return nil, ErrNegativeMonto
	}
	sv, err := s.repo.UpdateServicio(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.finalized(ctx, sv)
	return sv, nil
}

// UpdateStatus moves a servicio along the workflow.
func (s *ServicioService) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Servicio, error) {
	const op = "services.servicios.UpdateStatus"
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	sv, err := s.repo.UpdateServicioStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.finalized(ctx, sv)
	return sv, nil
}

// Delete removes a servicio and returns it.
func (s *ServicioService) Delete(ctx context.Context, id int64) (*models.Servicio, error) {
	const op = "services.servicios.Delete"
	sv, err := s.repo.DeleteServicio(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sv, nil
}

// Entradas counts the servicios dated today.
func (s *ServicioService) Entradas(ctx context.Context) (*models.Entradas, error) {
	const op = "services.servicios.Entradas"
	n, err := s.repo.CountEntradas(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Entradas{Entradas: n}, nil
}

func (s *ServicioService) finalized(ctx context.Context, sv *models.Servicio) {
	if sv.Status == models.StatusFinalizado {
		events.Notify(ctx, s.log, s.publisher, events.ServicioFinalizado, sv)
	}
}
