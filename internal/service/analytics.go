package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shenikar/resqsphere/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=analytics.go -destination=mocks/analytics_mock.go -package=mocks

const (
	trendWindow       = 30 * 24 * time.Hour
	topReportersLimit = 10
)

// IncidentAnalytics - агрегирующие запросы по инцидентам
type IncidentAnalytics interface {
	Count(ctx context.Context, filter models.IncidentFilter) (int, error)
	CountGrouped(ctx context.Context, column string) (map[string]int, error)
	DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error)
	AverageResolutionHours(ctx context.Context) (float64, error)
	TopReporters(ctx context.Context, limit int) ([]models.ReporterCount, error)
}

// UserAnalytics - агрегирующие запросы по пользователям
type UserAnalytics interface {
	Count(ctx context.Context, filter models.UserFilter) (int, error)
	CountByRole(ctx context.Context) (map[string]int, error)
	DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error)
}

// AnalyticsService собирает сводную аналитику для администраторов
type AnalyticsService interface {
	GetDashboard(ctx context.Context) (*models.Dashboard, error)
}

type analyticsService struct {
	incidents IncidentAnalytics
	users     UserAnalytics
	logger    *logrus.Logger
	now       func() time.Time
}

func NewAnalyticsService(incidents IncidentAnalytics, users UserAnalytics, logger *logrus.Logger) AnalyticsService {
	return &analyticsService{
		incidents: incidents,
		users:     users,
		logger:    logger,
		now:       time.Now,
	}
}

// GetDashboard выполняет все запросы параллельно. Тренды строятся за последние 30 дней.
func (s *analyticsService) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	today := startOfDay(s.now())
	monthAgo := today.Add(-trendWindow)

	var (
		d        models.Dashboard
		avgHours float64
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Users.Total, err = s.users.Count(gctx, models.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		d.Users.Today, err = s.users.Count(gctx, models.UserFilter{CreatedSince: &today})
		return err
	})
	g.Go(func() (err error) {
		d.Users.ByRole, err = s.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Users.RegistrationTrends, err = s.users.DailyCounts(gctx, monthAgo)
		return err
	})

	g.Go(func() (err error) {
		d.Incidents.Total, err = s.incidents.Count(gctx, models.IncidentFilter{})
		return err
	})
	g.Go(func() (err error) {
		d.Incidents.Today, err = s.incidents.Count(gctx, models.IncidentFilter{CreatedSince: &today})
		return err
	})
	g.Go(func() (err error) {
		d.Incidents.ByType, err = s.incidents.CountGrouped(gctx, "type")
		return err
	})
	g.Go(func() (err error) {
		d.Incidents.ByStatus, err = s.incidents.CountGrouped(gctx, "status")
		return err
	})
	g.Go(func() (err error) {
		d.Incidents.BySeverity, err = s.incidents.CountGrouped(gctx, "severity")
		return err
	})
	g.Go(func() (err error) {
		d.Incidents.Trends, err = s.incidents.DailyCounts(gctx, monthAgo)
		return err
	})
	g.Go(func() (err error) {
		avgHours, err = s.incidents.AverageResolutionHours(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TopReporters, err = s.incidents.TopReporters(gctx, topReportersLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "analytics",
			"method":  "GetDashboard",
		}).WithError(err).Error("Failed to collect dashboard analytics")
		return nil, fmt.Errorf("service: could not get dashboard: %w", err)
	}

	d.Incidents.Resolved = d.Incidents.ByStatus[string(models.StatusResolved)]
	d.Metrics.AvgResponseTime = math.Round(avgHours)
	if d.Incidents.Total > 0 {
		rate := float64(d.Incidents.Resolved) / float64(d.Incidents.Total) * 100
		d.Metrics.ResolutionRate = math.Round(rate*100) / 100
	}
	return &d, nil
}
