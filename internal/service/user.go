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

//go:generate mockgen -source=user.go -destination=mocks/user_mock.go -package=mocks

// recentIncidentsLimit - сколько последних инцидентов пользователя отдается вместе с профилем
const recentIncidentsLimit = 10

// UserRepository определяет контракт для работы с бд пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter, page, pageSize int) ([]*models.User, error)
	Count(ctx context.Context, filter models.UserFilter) (int, error)
	CountByRole(ctx context.Context) (map[string]int, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserService определяет контракт бизнес-логики управления пользователями
type UserService interface {
	ListUsers(ctx context.Context, filter models.UserFilter, page, pageSize int) ([]*models.User, int, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.UserDetails, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetStats(ctx context.Context) (*models.UserStats, error)
}

type userService struct {
	users     UserRepository
	incidents IncidentRepository
	logger    *logrus.Logger
	now       func() time.Time
}

func NewUserService(users UserRepository, incidents IncidentRepository, logger *logrus.Logger) UserService {
	return &userService{
		users:     users,
		incidents: incidents,
		logger:    logger,
		now:       time.Now,
	}
}

// ListUsers возвращает страницу пользователей и общее число подходящих под фильтр
func (s *userService) ListUsers(ctx context.Context, filter models.UserFilter, page, pageSize int) ([]*models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var (
		users []*models.User
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.users.List(gctx, filter, page, pageSize)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.users.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "user",
			"method":  "ListUsers",
		}).WithError(err).Error("Failed to list users from repository")
		return nil, 0, fmt.Errorf("service: could not list users: %w", err)
	}
	return users, total, nil
}

// GetUser возвращает пользователя и последние заявленные им инциденты
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.UserDetails, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "GetUser",
		"user_id": id,
	})

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get user from repository")
		return nil, fmt.Errorf("service: could not get user: %w", err)
	}

	incidents, err := s.incidents.ListIncidents(ctx, models.IncidentFilter{ReportedBy: &id}, 1, recentIncidentsLimit)
	if err != nil {
		log.WithError(err).Error("Failed to list user incidents")
		return nil, fmt.Errorf("service: could not list incidents of user %s: %w", id, err)
	}
	return &models.UserDetails{User: user, Incidents: incidents}, nil
}

// UpdateUser меняет профиль и роль пользователя
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, update models.UserUpdate) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "UpdateUser",
		"user_id": id,
	})

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent user")
		return nil, fmt.Errorf("service: user with id %s not found for update: %w", id, err)
	}

	user.Apply(update)
	if err := s.users.Update(ctx, user); err != nil {
		log.WithError(err).Error("Failed to update user in repository")
		return nil, fmt.Errorf("service: could not update user: %w", err)
	}

	log.WithField("role", user.Role).Info("User updated successfully")
	return user, nil
}

// DeleteUser удаляет пользователя
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "DeleteUser",
		"user_id": id,
	})

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUserInUse) {
			log.WithError(err).Warn("User cannot be deleted")
		} else {
			log.WithError(err).Error("Failed to delete user in repository")
		}
		return fmt.Errorf("service: could not delete user: %w", err)
	}

	log.Info("User deleted successfully")
	return nil
}

// GetStats считает пользователей всего, за сегодня и по ролям
func (s *userService) GetStats(ctx context.Context) (*models.UserStats, error) {
	midnight := startOfDay(s.now())

	stats := &models.UserStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.users.Count(gctx, models.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.NewToday, err = s.users.Count(gctx, models.UserFilter{CreatedSince: &midnight})
		return err
	})
	g.Go(func() (err error) {
		stats.ByRole, err = s.users.CountByRole(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("method", "GetUserStats").Error("Failed to collect user stats")
		return nil, fmt.Errorf("service: could not get user stats: %w", err)
	}
	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
