package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/resqsphere/internal/models"
)

// dailyCountsQuery группирует записи таблицы по дню создания в UTC
func dailyCountsQuery(table string) string {
	return fmt.Sprintf(`
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM %s
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day ASC;`, table)
}

const averageResolutionQuery = `
	SELECT COALESCE(AVG(EXTRACT(EPOCH FROM resolved_at - created_at)) / 3600, 0)::float8
	FROM incidents
	WHERE status = 'resolved' AND resolved_at IS NOT NULL;`

const topReportersQuery = `
	SELECT u.id, u.username, u.email, COUNT(*) AS reported
	FROM incidents i
	JOIN users u ON u.id = i.reported_by
	GROUP BY u.id, u.username, u.email
	ORDER BY reported DESC, u.username ASC
	LIMIT $1;`

func queryDailyCounts(ctx context.Context, db *pgxpool.Pool, table string, since time.Time) ([]models.DailyCount, error) {
	rows, err := db.Query(ctx, dailyCountsQuery(table), since)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s by day: %w", table, err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DailyCount, error) {
		var c models.DailyCount
		err := row.Scan(&c.Day, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s daily counts: %w", table, err)
	}
	return counts, nil
}

// DailyCounts возвращает число инцидентов по дням начиная с since
func (r *IncidentRepository) DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	return queryDailyCounts(ctx, r.db, "incidents", since)
}

// AverageResolutionHours возвращает среднее время решения инцидентов в часах
func (r *IncidentRepository) AverageResolutionHours(ctx context.Context) (float64, error) {
	var hours float64
	if err := r.db.QueryRow(ctx, averageResolutionQuery).Scan(&hours); err != nil {
		return 0, fmt.Errorf("failed to compute average resolution time: %w", err)
	}
	return hours, nil
}

// TopReporters возвращает пользователей с наибольшим числом заявленных инцидентов
func (r *IncidentRepository) TopReporters(ctx context.Context, limit int) ([]models.ReporterCount, error) {
	rows, err := r.db.Query(ctx, topReportersQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top reporters: %w", err)
	}

	reporters, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ReporterCount, error) {
		var rc models.ReporterCount
		err := row.Scan(&rc.UserID, &rc.Username, &rc.Email, &rc.Count)
		return rc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan top reporters: %w", err)
	}
	return reporters, nil
}

// DailyCounts возвращает число регистраций по дням начиная с since
func (r *UserRepository) DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	return queryDailyCounts(ctx, r.db, "users", since)
}
