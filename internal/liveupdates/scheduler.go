package liveupdates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/config"
	"github.com/shenikar/resqsphere/internal/metrics"
	"github.com/shenikar/resqsphere/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=scheduler.go -destination=mocks/scheduler_mock.go -package=mocks

// IncidentStore определяет контракт хранилища инцидентов для симулятора
type IncidentStore interface {
	FindActive(ctx context.Context, statuses []models.IncidentStatus, limit int) ([]*models.Incident, error)
	Save(ctx context.Context, incident *models.Incident, expectedStatus models.IncidentStatus) error
	Create(ctx context.Context, incident *models.Incident) error
	Count(ctx context.Context, filter models.IncidentFilter) (int, error)
}

// UserStore определяет контракт хранилища пользователей для симулятора
type UserStore interface {
	FindByRoles(ctx context.Context, roles []models.Role) ([]*models.User, error)
}

// IncidentCache - кэш инцидентов, который сбрасывается после записи
type IncidentCache interface {
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// Publisher рассылает события подписчикам. Доставка не подтверждается,
// ошибка возвращается только для логирования.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// State - состояние жизненного цикла планировщика
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Scheduler периодически изменяет активные инциденты и рассылает события
type Scheduler struct {
	incidents IncidentStore
	cache     IncidentCache
	publisher Publisher
	policy    *Policy
	generator *Generator
	logger    *logrus.Logger
	cfg       config.LiveUpdatesConfig
	rnd       Rand
	now       func() time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	ticking atomic.Bool
}

type Option func(*Scheduler)

// WithRand подменяет источник случайности
func WithRand(rnd Rand) Option {
	return func(s *Scheduler) { s.rnd = rnd }
}

// WithCache сбрасывает кэш инцидента после каждой успешной записи
func WithCache(cache IncidentCache) Option {
	return func(s *Scheduler) { s.cache = cache }
}

// WithClock подменяет часы
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func NewScheduler(incidents IncidentStore, users UserStore, publisher Publisher, logger *logrus.Logger, cfg config.LiveUpdatesConfig, opts ...Option) *Scheduler {
	s := &Scheduler{
		incidents: incidents,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		rnd:       globalRand{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.TickTimeout <= 0 {
		s.cfg.TickTimeout = s.cfg.Interval
	}
	s.policy = NewPolicy(s.rnd)
	s.generator = NewGenerator(users, incidents, s.rnd)
	return s
}

// State возвращает текущее состояние планировщика
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start сразу выполняет один тик и затем повторяет его с периодом Interval.
// Повторный вызов во время работы ничего не делает.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.state = StateRunning
	s.cancel = cancel
	s.done = done

	go s.run(loopCtx, done)

	s.logger.WithFields(logrus.Fields{
		"service":     "liveupdates",
		"interval":    s.cfg.Interval.String(),
		"working_set": s.cfg.WorkingSetSize,
	}).Info("Live updates service started")
}

// Stop останавливает таймер и ждет завершения текущего тика.
// Безопасно вызывать повторно и до Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.state = StateIdle
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.WithField("service", "liveupdates").Info("Live updates service stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		// Родительский контекст отменен без Stop
		if s.done == done {
			s.state = StateIdle
			s.cancel = nil
			s.done = nil
		}
		s.mu.Unlock()
		close(done)
	}()

	s.Tick(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick выполняет одну итерацию симуляции. Ошибки логируются и наружу не передаются.
// Если предыдущий тик еще не завершен, новый пропускается.
func (s *Scheduler) Tick(ctx context.Context) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "liveupdates",
		"method":  "Tick",
	})

	if !s.ticking.CompareAndSwap(false, true) {
		log.Warn("Previous tick is still running, skipping")
		metrics.LiveUpdateTicks.WithLabelValues("skipped").Inc()
		return
	}
	defer s.ticking.Store(false)

	// Тик доводится до конца даже после Stop, но ограничен по времени
	tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TickTimeout)
	defer cancel()

	started := time.Now()
	err := s.tick(tickCtx)
	metrics.LiveUpdateTickDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		log.WithError(err).Error("Error in live updates")
		metrics.LiveUpdateTicks.WithLabelValues("failed").Inc()
		return
	}
	metrics.LiveUpdateTicks.WithLabelValues("ok").Inc()
	log.Debug("Live updates tick completed")
}

func (s *Scheduler) tick(ctx context.Context) error {
	now := s.now()

	incidents, err := s.incidents.FindActive(ctx, models.ActiveStatuses, s.cfg.WorkingSetSize)
	if err != nil {
		return fmt.Errorf("liveupdates: find active incidents: %w", err)
	}

	for _, incident := range incidents {
		s.advance(ctx, incident, now)
	}

	if s.rnd.Float64() < s.cfg.SpawnProbability {
		s.spawn(ctx, now)
	}

	snapshot, err := s.Snapshot(ctx, now)
	if err != nil {
		return err
	}
	s.publish(ctx, EventStatsUpdate, snapshot)
	return nil
}

// advance применяет политику к одному инциденту, сохраняет и публикует изменение
func (s *Scheduler) advance(ctx context.Context, incident *models.Incident, now time.Time) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "liveupdates",
		"method":      "advance",
		"incident_id": incident.ID,
	})

	expected := incident.Status
	change := s.policy.Apply(incident, s.rnd.Float64(), now)
	if change == nil {
		return
	}

	if err := s.incidents.Save(ctx, incident, expected); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			log.WithError(err).Warn("Incident changed concurrently, dropping mutation")
		} else {
			log.WithError(err).Error("Failed to save incident")
		}
		return
	}

	// запись уже в бд, ошибка кэша не отменяет событие
	if s.cache != nil {
		if err := s.cache.InvalidateIncidentCache(ctx, incident.ID); err != nil {
			log.WithError(err).Warn("Failed to invalidate incident cache")
		}
	}

	metrics.LiveUpdateActions.WithLabelValues(string(change.Action)).Inc()
	log.WithField("action", change.Action).Debug("Incident updated")
	s.publish(ctx, EventIncidentUpdate, change.Event(incident, now))
}

func (s *Scheduler) spawn(ctx context.Context, now time.Time) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "liveupdates",
		"method":  "spawn",
	})

	incident, err := s.generator.Generate(ctx, now)
	if err != nil {
		log.WithError(err).Error("Error creating random incident")
		return
	}
	if incident == nil {
		log.Debug("No candidate authors, skipping incident generation")
		return
	}

	metrics.SyntheticIncidents.Inc()
	log.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"title":       incident.Title,
	}).Info("Auto-created incident")
	s.publish(ctx, EventNewIncident, NewIncidentEvent{Incident: incident, Timestamp: now})
}

func (s *Scheduler) publish(ctx context.Context, event string, payload any) {
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "liveupdates",
			"event":   event,
		}).WithError(err).Warn("Failed to publish event")
	}
}
