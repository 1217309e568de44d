package repository

import (
	"fmt"
	"strings"

	"github.com/shenikar/resqsphere/internal/models"
)

// buildIncidentWhere собирает WHERE-условие для фильтра. Нумерация плейсхолдеров начинается с argOffset+1.
func buildIncidentWhere(filter models.IncidentFilter, argOffset int) (string, []any) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", argOffset+len(args))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, "status = ANY("+next(statuses)+")")
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = "+next(string(filter.Type)))
	}
	if filter.Priority != "" {
		conditions = append(conditions, "priority = "+next(string(filter.Priority)))
	}
	if filter.CreatedSince != nil {
		conditions = append(conditions, "created_at >= "+next(*filter.CreatedSince))
	}
	if filter.Near != nil {
		lon := next(filter.Near.Longitude)
		lat := next(filter.Near.Latitude)
		radius := next(filter.Near.RadiusMeters)
		conditions = append(conditions, fmt.Sprintf(
			"ST_DWithin(location, ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography, %s)", lon, lat, radius))
	}
	if filter.ReportedBy != nil {
		conditions = append(conditions, "reported_by = "+next(*filter.ReportedBy))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildUserWhere собирает WHERE-условие для выборки пользователей
func buildUserWhere(filter models.UserFilter) (string, []any) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Role != "" {
		conditions = append(conditions, "role = "+next(string(filter.Role)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := next("%" + search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE %s OR email ILIKE %s OR profile->>'firstName' ILIKE %s OR profile->>'lastName' ILIKE %s)", p, p, p, p))
	}
	if filter.CreatedSince != nil {
		conditions = append(conditions, "created_at >= "+next(*filter.CreatedSince))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// groupableColumns - колонки, по которым разрешена группировка статистики
var groupableColumns = map[string]struct{}{
	"status":   {},
	"type":     {},
	"priority": {},
	"severity": {},
}
