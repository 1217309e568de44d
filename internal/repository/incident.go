package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/resqsphere/internal/models"
)

const incidentCacheTTL = 5 * time.Minute

const incidentColumns = `
	id,
	title,
	description,
	type,
	status,
	priority,
	severity,
	ST_Y(location::geometry) as latitude,
	ST_X(location::geometry) as longitude,
	address,
	reported_by,
	assigned_team,
	live_updates,
	affected_estimated,
	affected_confirmed,
	required_resources,
	resolved_at,
	created_at,
	updated_at`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) *IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Create создает новую запись об инциденте в бд.
// Нулевой CreatedAt заменяется часами приложения, теми же, что выставляют resolvedAt.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	applyIncidentDefaults(incident)
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}

	liveUpdates, resources, err := marshalDocuments(incident)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO incidents (
			title, description, type, status, priority, severity,
			location, address, reported_by, assigned_team, live_updates,
			affected_estimated, affected_confirmed, required_resources, resolved_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326), $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at;
	`
	err = r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Type,
		incident.Status,
		incident.Priority,
		incident.Severity,
		incident.Location.Longitude,
		incident.Location.Latitude,
		incident.Location.Address,
		incident.ReportedBy,
		incident.AssignedTeam,
		liveUpdates,
		incident.AffectedPeople.Estimated,
		incident.AffectedPeople.Confirmed,
		resources,
		incident.ResolvedAt,
		incident.CreatedAt,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// Update перезаписывает документ инцидента целиком
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	query, args, err := buildDocumentUpdate(incident, nil)
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&incident.UpdatedAt); err != nil {
		// Нет строки - инцидента с таким id не существует
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("incident with id %s not found for update: %w", incident.ID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to update incident: %w", err)
	}
	return nil
}

// Save перезаписывает документ, только если в бд он не менялся после чтения:
// статус равен expectedStatus, а updated_at совпадает с прочитанным incident.UpdatedAt.
// Кэш не сбрасывается, это делает вызывающий.
func (r *IncidentRepository) Save(ctx context.Context, incident *models.Incident, expectedStatus models.IncidentStatus) error {
	query, args, err := buildDocumentUpdate(incident, &documentGuard{
		status:    expectedStatus,
		updatedAt: incident.UpdatedAt,
	})
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&incident.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("incident %s is missing or changed since read (expected status %s): %w",
				incident.ID, expectedStatus, models.ErrStatusConflict)
		}
		return fmt.Errorf("failed to save incident: %w", err)
	}
	return nil
}

// documentGuard - условие записи: значения, прочитанные вместе с документом
type documentGuard struct {
	status    models.IncidentStatus
	updatedAt time.Time
}

// buildDocumentUpdate собирает UPDATE всего документа. С guard запись проходит,
// только если статус и updated_at в бд не изменились.
func buildDocumentUpdate(incident *models.Incident, guard *documentGuard) (string, []any, error) {
	liveUpdates, resources, err := marshalDocuments(incident)
	if err != nil {
		return "", nil, err
	}

	query := `
		UPDATE incidents SET
			title = $1,
			description = $2,
			type = $3,
			status = $4,
			priority = $5,
			severity = $6,
			location = ST_SetSRID(ST_MakePoint($7, $8), 4326),
			address = $9,
			assigned_team = $10,
			live_updates = $11,
			affected_estimated = $12,
			affected_confirmed = $13,
			required_resources = $14,
			resolved_at = $15,
			updated_at = NOW()
		WHERE id = $16`
	args := []any{
		incident.Title,
		incident.Description,
		incident.Type,
		incident.Status,
		incident.Priority,
		incident.Severity,
		incident.Location.Longitude,
		incident.Location.Latitude,
		incident.Location.Address,
		incident.AssignedTeam,
		liveUpdates,
		incident.AffectedPeople.Estimated,
		incident.AffectedPeople.Confirmed,
		resources,
		incident.ResolvedAt,
		incident.ID,
	}
	if guard != nil {
		args = append(args, guard.status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
		if !guard.updatedAt.IsZero() {
			args = append(args, guard.updatedAt)
			query += fmt.Sprintf(` AND updated_at = $%d`, len(args))
		}
	}
	query += ` RETURNING updated_at;`

	return query, args, nil
}

// Delete удаляет инцидент
func (r *IncidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for delete: %w", id, models.ErrNotFound)
	}
	return nil
}

// ListIncidents возвращает список инцидентов с фильтрацией и пагинацией
func (r *IncidentRepository) ListIncidents(ctx context.Context, filter models.IncidentFilter, page, pageSize int) ([]*models.Incident, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	where, args := buildIncidentWhere(filter, 0)
	query := fmt.Sprintf(`SELECT %s FROM incidents%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		incidentColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	return r.queryIncidents(ctx, query, args...)
}

// FindActive возвращает не более limit инцидентов с заданными статусами в естественном порядке (старые первыми)
func (r *IncidentRepository) FindActive(ctx context.Context, statuses []models.IncidentStatus, limit int) ([]*models.Incident, error) {
	query, args := buildFindActiveQuery(statuses, limit)

	incidents, err := r.queryIncidents(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find active incidents: %w", err)
	}
	return incidents, nil
}

func buildFindActiveQuery(statuses []models.IncidentStatus, limit int) (string, []any) {
	where, args := buildIncidentWhere(models.IncidentFilter{Statuses: statuses}, 0)
	query := fmt.Sprintf(`SELECT %s FROM incidents%s ORDER BY created_at ASC, id ASC LIMIT $%d;`,
		incidentColumns, where, len(args)+1)
	return query, append(args, limit)
}

// Count возвращает количество инцидентов, подходящих под фильтр
func (r *IncidentRepository) Count(ctx context.Context, filter models.IncidentFilter) (int, error) {
	where, args := buildIncidentWhere(filter, 0)

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents`+where+`;`, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return count, nil
}

// CountGrouped возвращает количество инцидентов в разрезе одной колонки
func (r *IncidentRepository) CountGrouped(ctx context.Context, column string) (map[string]int, error) {
	if _, ok := groupableColumns[column]; !ok {
		return nil, fmt.Errorf("column %q cannot be grouped", column)
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM incidents GROUP BY %s;`, column, column))
	if err != nil {
		return nil, fmt.Errorf("failed to group incidents by %s: %w", column, err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan grouped row: %w", err)
		}
		result[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error grouped iteration: %w", err)
	}
	return result, nil
}

func (r *IncidentRepository) queryIncidents(ctx context.Context, query string, args ...any) ([]*models.Incident, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, incidentCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, incidentCacheKey(incident.ID), val, incidentCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, incidentCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}

func incidentCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

func applyIncidentDefaults(incident *models.Incident) {
	if incident.Status == "" {
		incident.Status = models.StatusReported
	}
	if incident.Priority == "" {
		incident.Priority = models.PriorityMedium
	}
	if incident.Severity == "" {
		incident.Severity = models.SeverityModerate
	}
	if incident.LiveUpdates == nil {
		incident.LiveUpdates = []models.LiveUpdate{}
	}
}

func marshalDocuments(incident *models.Incident) (liveUpdates, resources []byte, err error) {
	updates := incident.LiveUpdates
	if updates == nil {
		updates = []models.LiveUpdate{}
	}
	liveUpdates, err = json.Marshal(updates)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal live updates: %w", err)
	}

	required := incident.RequiredResources
	if required == nil {
		required = []models.RequiredResource{}
	}
	resources, err = json.Marshal(required)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal required resources: %w", err)
	}
	return liveUpdates, resources, nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	var (
		incident    models.Incident
		address     *string
		liveUpdates []byte
		resources   []byte
	)
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Type,
		&incident.Status,
		&incident.Priority,
		&incident.Severity,
		&incident.Location.Latitude,
		&incident.Location.Longitude,
		&address,
		&incident.ReportedBy,
		&incident.AssignedTeam,
		&liveUpdates,
		&incident.AffectedPeople.Estimated,
		&incident.AffectedPeople.Confirmed,
		&resources,
		&incident.ResolvedAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if address != nil {
		incident.Location.Address = *address
	}
	if err := json.Unmarshal(liveUpdates, &incident.LiveUpdates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal live updates: %w", err)
	}
	if len(resources) > 0 {
		if err := json.Unmarshal(resources, &incident.RequiredResources); err != nil {
			return nil, fmt.Errorf("failed to unmarshal required resources: %w", err)
		}
	}
	return &incident, nil
}
