package liveupdates

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/resqsphere/internal/models"
	"golang.org/x/sync/errgroup"
)

// StartOfDay возвращает полночь того же дня в часовом поясе t
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Snapshot считает агрегированные счетчики. Каждый счетчик - отдельный запрос,
// согласованность между ними не гарантируется.
func (s *Scheduler) Snapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	midnight := StartOfDay(now)
	snapshot := &Snapshot{Timestamp: now}

	counts := []struct {
		target *int
		filter models.IncidentFilter
	}{
		{&snapshot.Total, models.IncidentFilter{}},
		{&snapshot.Resolved, models.IncidentFilter{Statuses: []models.IncidentStatus{models.StatusResolved}}},
		{&snapshot.InProgress, models.IncidentFilter{Statuses: []models.IncidentStatus{models.StatusInProgress}}},
		{&snapshot.Reported, models.IncidentFilter{Statuses: []models.IncidentStatus{models.StatusReported}}},
		{&snapshot.Today, models.IncidentFilter{CreatedSince: &midnight}},
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.incidents.Count(gCtx, c.filter)
			if err != nil {
				return err
			}
			*c.target = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("liveupdates: compute snapshot: %w", err)
	}
	return snapshot, nil
}
