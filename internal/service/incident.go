package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=incident.go -destination=mocks/incident_mock.go -package=mocks

// Имена событий REST API
const (
	EventNewIncident      = "new-incident"
	EventIncidentUpdated  = "incident-updated"
	EventIncidentDeleted  = "incident-deleted"
	EventIncidentAssigned = "incident-assigned"
)

// RoomAdmin - комната, в которую заходят администраторы
const RoomAdmin = "admin"

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListIncidents(ctx context.Context, filter models.IncidentFilter, page, pageSize int) ([]*models.Incident, error)
	Count(ctx context.Context, filter models.IncidentFilter) (int, error)
	CountGrouped(ctx context.Context, column string) (map[string]int, error)
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// Publisher рассылает события подписчикам
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
	PublishToRoom(ctx context.Context, room, event string, payload any) error
}

// IncidentService определяет контракт бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter models.IncidentFilter, page, pageSize int) ([]*models.Incident, int, error)
	UpdateIncident(ctx context.Context, id uuid.UUID, update models.IncidentUpdate) (*models.Incident, error)
	DeleteIncident(ctx context.Context, id uuid.UUID) error
	GetStats(ctx context.Context) (*models.IncidentStats, error)
}

// IncidentDeletedEvent - payload события incident-deleted
type IncidentDeletedEvent struct {
	ID uuid.UUID `json:"id"`
}

type incidentService struct {
	repo      IncidentRepository
	publisher Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewIncidentService(repo IncidentRepository, publisher Publisher, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateIncident создает инцидент
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"title":   incident.Title,
	})
	log.Info("Attempting to create a new incident")

	incident.Status = models.StatusReported
	incident.ResolvedAt = nil
	if len(incident.LiveUpdates) == 0 {
		incident.AppendLiveUpdate("Incident reported", incident.ReportedBy, s.now())
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	s.publish(ctx, "", EventNewIncident, incident)
	return nil
}

// GetIncident получает инцидент по ID, сначала из кэша
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает страницу инцидентов и общее число подходящих под фильтр
func (s *incidentService) ListIncidents(ctx context.Context, filter models.IncidentFilter, page, pageSize int) ([]*models.Incident, int, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})

	var (
		incidents []*models.Incident
		total     int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		incidents, err = s.repo.ListIncidents(gctx, filter, page, pageSize)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, 0, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Debug("Incidents listed successfully")
	return incidents, total, nil
}

// UpdateIncident применяет частичное изменение к существующему инциденту
func (s *incidentService) UpdateIncident(ctx context.Context, id uuid.UUID, update models.IncidentUpdate) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncident",
		"incident_id": id,
	})
	log.Info("Attempting to update incident")

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent incident")
		return nil, fmt.Errorf("service: incident with id %s not found for update: %w", id, err)
	}

	assigned := existing.Apply(update, s.now())

	if err := s.repo.Update(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update incident in repository")
		return nil, fmt.Errorf("service: could not update incident: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	log.WithField("status", existing.Status).Info("Incident updated successfully")
	s.publish(ctx, "", EventIncidentUpdated, existing)
	if assigned {
		s.publish(ctx, RoomAdmin, EventIncidentAssigned, existing)
	}
	return existing, nil
}

// DeleteIncident удаляет инцидент
func (s *incidentService) DeleteIncident(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": id,
	})
	log.Info("Attempting to delete incident")

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.WithError(err).Warn("Attempted to delete a non-existent incident")
			return fmt.Errorf("service: incident with id %s not found for delete: %w", id, err)
		}
		log.WithError(err).Error("Failed to delete incident in repository")
		return fmt.Errorf("service: could not delete incident: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	log.Info("Incident deleted successfully")
	s.publish(ctx, "", EventIncidentDeleted, IncidentDeletedEvent{ID: id})
	return nil
}

// GetStats собирает статистику по всем инцидентам
func (s *incidentService) GetStats(ctx context.Context) (*models.IncidentStats, error) {
	midnight := startOfDay(s.now())

	stats := &models.IncidentStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.repo.Count(gctx, models.IncidentFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.Today, err = s.repo.Count(gctx, models.IncidentFilter{CreatedSince: &midnight})
		return err
	})
	g.Go(func() (err error) {
		stats.ByStatus, err = s.repo.CountGrouped(gctx, "status")
		return err
	})
	g.Go(func() (err error) {
		stats.ByType, err = s.repo.CountGrouped(gctx, "type")
		return err
	})
	g.Go(func() (err error) {
		stats.ByPriority, err = s.repo.CountGrouped(gctx, "priority")
		return err
	})
	g.Go(func() (err error) {
		stats.BySeverity, err = s.repo.CountGrouped(gctx, "severity")
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("method", "GetStats").Error("Failed to collect incident stats")
		return nil, fmt.Errorf("service: could not get stats: %w", err)
	}

	stats.Resolved = stats.ByStatus[string(models.StatusResolved)]
	return stats, nil
}

func (s *incidentService) publish(ctx context.Context, room, event string, payload any) {
	var err error
	if room == "" {
		err = s.publisher.Publish(ctx, event, payload)
	} else {
		err = s.publisher.PublishToRoom(ctx, room, event, payload)
	}
	if err != nil {
		s.logger.WithError(err).WithField("event", event).Warn("Failed to publish event")
	}
}
