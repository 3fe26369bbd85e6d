// Package services keeps the running total of a servicio in step with its line items.
//
// Every operation first checks that the caller may touch the servicio (or the
// servicio of the item). The arithmetic itself happens in the store under a
// row lock.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dipaca/autolavado/internal/access"
	"github.com/dipaca/autolavado/internal/events"
	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/lib/sl"
	"github.com/dipaca/autolavado/internal/models"
)

// CatalogoKey is the cache key of the product catalog.
const CatalogoKey = "catalogo:productos"

var (
	// ErrNegativePrecio is returned for a negative item price.
	ErrNegativePrecio = apperr.Validation("Precio must be greater than or equal to 0")
	// ErrNegativeDescuento is returned for a negative discount.
	ErrNegativeDescuento = apperr.Validation("Descuento must be greater than or equal to 0")
	// ErrNegativePropina is returned for a negative tip.
	ErrNegativePropina = apperr.Validation("Propina must be greater than or equal to 0")
)

// LedgerRepository is the item store.
type LedgerRepository interface {
	ListItems(ctx context.Context, servicioID int64) ([]models.ServicioItem, error)
	AddItem(ctx context.Context, servicioID int64, nombre string, precio decimal.Decimal) (*models.ServicioItem, error)
	RemoveItem(ctx context.Context, itemID int64) (*models.ServicioItem, error)
	ApplyDiscount(ctx context.Context, servicioID int64, descuento decimal.Decimal, puntos int) (*models.Servicio, error)
	ProcessPayment(ctx context.Context, servicioID int64, metodoPago string, propina decimal.Decimal) (*models.Servicio, error)
	ListCatalogo(ctx context.Context) ([]models.ProductoCatalogo, error)
}

// Cache is the catalog cache.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Checker authorizes access to one resource id.
type Checker interface {
	Check(ctx context.Context, who jwt.Identity, id int64) error
}

// LedgerService adds and removes items, applies discounts and takes payments.
type LedgerService struct {
	repo       LedgerRepository
	servicios  Checker
	items      Checker
	cache      Cache
	catalogTTL time.Duration
	publisher  events.Publisher
	log        *slog.Logger
}

// NewLedgerService creates a LedgerService. servicios checks servicio ids and
// items checks item ids.
func NewLedgerService(repo LedgerRepository, servicios, items Checker, cache Cache, catalogTTL time.Duration,
	publisher events.Publisher, log *slog.Logger) *LedgerService {
	return &LedgerService{
		repo:       repo,
		servicios:  servicios,
		items:      items,
		cache:      cache,
		catalogTTL: catalogTTL,
		publisher:  publisher,
		log:        log,
	}
}

// Items lists the items of a servicio.
func (s *LedgerService) Items(ctx context.Context, who jwt.Identity, servicioID int64) ([]models.ServicioItem, error) {
	const op = "services.ledger.Items"
	if err := s.servicios.Check(ctx, who, servicioID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := s.repo.ListItems(ctx, servicioID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// AddItem appends an item and raises the total by its price.
func (s *LedgerService) AddItem(ctx context.Context, who jwt.Identity, servicioID int64, in models.ItemInput) (*models.ServicioItem, error) {
	const op = "services.ledger.AddItem"
	if in.Precio.IsNegative() {
		return nil, ErrNegativePrecio
	}
	if err := s.servicios.Check(ctx, who, servicioID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	item, err := s.repo.AddItem(ctx, servicioID, in.Nombre, in.Precio)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// RemoveItem deletes an item and lowers the total, never below zero.
func (s *LedgerService) RemoveItem(ctx context.Context, who jwt.Identity, itemID int64) (*models.ServicioItem, error) {
	const op = "services.ledger.RemoveItem"
	if err := s.items.Check(ctx, who, itemID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	item, err := s.repo.RemoveItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// ApplyDiscount overwrites the discount and the points used.
func (s *LedgerService) ApplyDiscount(ctx context.Context, who jwt.Identity, servicioID int64, in models.DiscountInput) (*models.Servicio, error) {
	const op = "services.ledger.ApplyDiscount"
	if in.Descuento.IsNegative() {
		return nil, ErrNegativeDescuento
	}
	if err := s.servicios.Check(ctx, who, servicioID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sv, err := s.repo.ApplyDiscount(ctx, servicioID, in.Descuento, in.PuntosUsados)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sv, nil
}

// ProcessPayment records the payment and closes the servicio.
func (s *LedgerService) ProcessPayment(ctx context.Context, who jwt.Identity, servicioID int64, in models.PaymentInput) (*models.Servicio, error) {
	const op = "services.ledger.ProcessPayment"
	if in.Propina.IsNegative() {
		return nil, ErrNegativePropina
	}
	if err := s.servicios.Check(ctx, who, servicioID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sv, err := s.repo.ProcessPayment(ctx, servicioID, in.MetodoPago, in.Propina)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment processed",
		slog.Int64("servicio_id", sv.ID),
		slog.String("metodo_pago", in.MetodoPago))

	events.Notify(ctx, s.log, s.publisher, events.ServicioFinalizado, sv)
	return sv, nil
}

// Catalogo lists the active products, read through the cache. Cache failures
// fall back to the store.
func (s *LedgerService) Catalogo(ctx context.Context) ([]models.ProductoCatalogo, error) {
	const op = "services.ledger.Catalogo"
	var cached []models.ProductoCatalogo
	found, err := s.cache.Get(ctx, CatalogoKey, &cached)
	if err != nil {
		s.log.Warn("catalog cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	out, err := s.repo.ListCatalogo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, CatalogoKey, out, s.catalogTTL); err != nil {
		s.log.Warn("catalog cache write failed", sl.Err(err))
	}
	return out, nil
}

var _ Checker = (*access.Ownership)(nil)
