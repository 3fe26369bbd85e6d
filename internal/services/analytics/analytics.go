// Package services builds the admin dashboard figures from finalized servicios.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dipaca/autolavado/internal/lib/period"
	"github.com/dipaca/autolavado/internal/models"
	"github.com/dipaca/autolavado/internal/storage"
)

const (
	// MonthlyWindow is how many months back the income chart reaches.
	MonthlyWindow = 6
	// DefaultRankingLimit caps the worker ranking when no limit is given.
	DefaultRankingLimit = 10
)

// Palette colours the income by service chart, cycling when there are more groups.
var Palette = []string{"#0f4c81", "#5ba3d0", "#a8d5f2", "#4ade80", "#f59e0b"}

var tipShare = decimal.NewFromFloat(0.1)

// AnalyticsRepository is the reporting store.
type AnalyticsRepository interface {
	Today(ctx context.Context) (time.Time, error)
	IncomeSince(ctx context.Context, since time.Time) (*storage.IncomeTotals, error)
	MonthlyIncome(ctx context.Context, since time.Time) ([]storage.MonthIncome, error)
	WorkerRanking(ctx context.Context, since time.Time, limit int) ([]models.WorkerRank, error)
	IncomeByService(ctx context.Context, since time.Time) ([]models.NamedValue, error)
	IncomeByPayment(ctx context.Context, since time.Time) ([]models.NamedValue, error)
}

// AnalyticsService answers the dashboard endpoints. Windows end at the
// database's current date, the same calendar fecha is stored in.
type AnalyticsService struct {
	repo AnalyticsRepository
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Stats returns income, count and tips of the period, a week by default.
// EstimatedTipShare is derived as 10% of income and RecordedTips is what was
// actually stored with the payments.
func (s *AnalyticsService) Stats(ctx context.Context, rawPeriod string) (*models.DashboardStats, error) {
	const op = "services.analytics.Stats"
	p := period.Parse(rawPeriod, period.Week)
	today, err := s.repo.Today(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t, err := s.repo.IncomeSince(ctx, p.Since(today))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.DashboardStats{
		TotalIngresos:     t.Ingresos.Round(2),
		TotalServicios:    t.Servicios,
		EstimatedTipShare: t.Ingresos.Mul(tipShare).Round(2),
		RecordedTips:      t.Propinas.Round(2),
		Period:            string(p),
	}, nil
}

// MonthlyIncome returns the income of the trailing months, oldest first, named like "JAN".
func (s *AnalyticsService) MonthlyIncome(ctx context.Context) ([]models.NamedValue, error) {
	const op = "services.analytics.MonthlyIncome"
	today, err := s.repo.Today(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.repo.MonthlyIncome(ctx, period.Day(today).AddDate(0, -MonthlyWindow, 0))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]models.NamedValue, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.NamedValue{
			Name:  strings.ToUpper(r.Month.Format("Jan")),
			Value: r.Total,
		})
	}
	return out, nil
}

// WorkerRanking ranks workers by finalized servicios in the period, a month by default.
func (s *AnalyticsService) WorkerRanking(ctx context.Context, rawPeriod string, limit int) ([]models.WorkerRank, error) {
	const op = "services.analytics.WorkerRanking"
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	p := period.Parse(rawPeriod, period.Month)
	today, err := s.repo.Today(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := s.repo.WorkerRanking(ctx, p.Since(today), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// IncomeByService groups the period's income by service type and colours each group.
func (s *AnalyticsService) IncomeByService(ctx context.Context, rawPeriod string) ([]models.NamedValue, error) {
	const op = "services.analytics.IncomeByService"
	p := period.Parse(rawPeriod, period.Month)
	today, err := s.repo.Today(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := s.repo.IncomeByService(ctx, p.Since(today))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range out {
		out[i].Color = Palette[i%len(Palette)]
	}
	return out, nil
}

// IncomeByPayment groups the period's income by payment method.
func (s *AnalyticsService) IncomeByPayment(ctx context.Context, rawPeriod string) ([]models.NamedValue, error) {
	const op = "services.analytics.IncomeByPayment"
	p := period.Parse(rawPeriod, period.Month)
	today, err := s.repo.Today(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := s.repo.IncomeByPayment(ctx, p.Since(today))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
