package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/config"
	"github.com/shenikar/resqsphere/internal/models"
	"github.com/shenikar/resqsphere/internal/repository"
	"github.com/shenikar/resqsphere/pkg/logger"
	"github.com/shenikar/resqsphere/pkg/postgres"
	"github.com/sirupsen/logrus"
)

// Сидер создает пользователей по умолчанию и несколько инцидентов для демо-стенда.
// Миграции должны быть применены заранее (их применяет основной сервис при старте).
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()

	users := repository.NewUserRepository(dbpool)
	// кэш сидеру не нужен
	incidents := repository.NewIncidentRepository(dbpool, nil)

	responder := &models.User{
		Username: "emergency_responder",
		Email:    "responder@resqsphere.com",
		Role:     models.RoleResponder,
		Profile:  models.Profile{FirstName: "John", LastName: "Smith", Phone: "+1-555-0101"},
	}
	civilian := &models.User{
		Username: "civilian_user",
		Email:    "civilian@resqsphere.com",
		Role:     models.RoleCivilian,
		Profile:  models.Profile{FirstName: "Jane", LastName: "Doe", Phone: "+1-555-0102"},
	}
	for _, user := range []*models.User{responder, civilian} {
		existing, err := users.GetByEmail(ctx, user.Email)
		if err == nil {
			*user = *existing
			log.WithField("email", user.Email).Info("User already exists")
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			log.Fatalf("Failed to look up user %s: %v", user.Email, err)
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to seed user %s: %v", user.Email, err)
		}
		log.WithField("email", user.Email).WithField("id", user.ID).Info("User seeded")
	}

	existing, err := incidents.Count(ctx, models.IncidentFilter{})
	if err != nil {
		log.Fatalf("Failed to count incidents: %v", err)
	}
	if existing > 0 {
		log.WithField("count", existing).Info("Incidents already present, skipping incident seed")
		return
	}

	for _, incident := range defaultIncidents(time.Now(), responder.ID, civilian.ID) {
		if err := incidents.Create(ctx, incident); err != nil {
			log.WithError(err).WithField("title", incident.Title).Error("Failed to seed incident")
			continue
		}
		log.WithField("title", incident.Title).WithField("id", incident.ID).Info("Incident seeded")
	}
}

func defaultIncidents(now time.Time, responder, civilian uuid.UUID) []*models.Incident {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	update := func(text string, by uuid.UUID, at time.Time) models.LiveUpdate {
		return models.LiveUpdate{Update: text, UpdatedBy: &by, Timestamp: at}
	}
	resolvedAt := ago(24 * time.Hour)

	return []*models.Incident{
		{
			Title:        "Multi-Vehicle Collision on Interstate 280",
			Description:  "Massive 6-car pileup during rush hour. Multiple injuries reported. Air ambulance dispatched for critical patient.",
			Type:         models.TypeMedical,
			Status:       models.StatusInProgress,
			Priority:     models.PriorityCritical,
			Severity:     models.SeverityExtreme,
			Location:     models.Location{Latitude: 37.7849, Longitude: -122.4094, Address: "Interstate 280, Exit 12, San Francisco, CA"},
			ReportedBy:   civilian,
			AssignedTeam: &responder,
			LiveUpdates: []models.LiveUpdate{
				update("Incident reported. Emergency services en route", civilian, ago(30*time.Minute)),
				update("Fire department arrived. Extracting victims from vehicles", responder, ago(25*time.Minute)),
			},
			AffectedPeople: models.AffectedPeople{Estimated: 12, Confirmed: 8},
			RequiredResources: []models.RequiredResource{
				{Resource: "Ambulances", Quantity: 4, Status: models.ResourceAllocated},
				{Resource: "Air Ambulance", Quantity: 1, Status: models.ResourceReceived},
			},
			CreatedAt: ago(30 * time.Minute),
		},
		{
			Title:        "Wildfire Spreading Near Residential Area",
			Description:  "Fast-moving wildfire detected in foothills. Evacuation orders issued for 500 homes.",
			Type:         models.TypeFire,
			Status:       models.StatusInProgress,
			Priority:     models.PriorityCritical,
			Severity:     models.SeverityExtreme,
			Location:     models.Location{Latitude: 37.7949, Longitude: -122.3994, Address: "Oakland Hills, Contra Costa County, CA"},
			ReportedBy:   responder,
			AssignedTeam: &responder,
			LiveUpdates: []models.LiveUpdate{
				update("Wildfire detected via satellite imagery", responder, ago(time.Hour)),
				update("Fire at 150 acres. Containment 5%. Air tankers deployed", responder, ago(20*time.Minute)),
			},
			AffectedPeople: models.AffectedPeople{Estimated: 1500, Confirmed: 1200},
			CreatedAt:      ago(time.Hour),
		},
		{
			Title:       "Flash Flood Warning - Storm Drain Overflow",
			Description: "Heavy rainfall caused storm drains to overflow. Low-lying streets are flooding.",
			Type:        models.TypeFlood,
			Status:      models.StatusReported,
			Priority:    models.PriorityHigh,
			Severity:    models.SeveritySevere,
			Location:    models.Location{Latitude: 37.7599, Longitude: -122.4148, Address: "Mission District, San Francisco, CA"},
			ReportedBy:  civilian,
			LiveUpdates: []models.LiveUpdate{
				update("Flooding reported on several streets", civilian, ago(10*time.Minute)),
			},
			AffectedPeople: models.AffectedPeople{Estimated: 60},
			CreatedAt:      ago(10 * time.Minute),
		},
		{
			Title:        "Gas Leak in Residential Building - RESOLVED",
			Description:  "Natural gas leak detected by smart sensors. Gas company repaired leak. All clear given.",
			Type:         models.TypeFire,
			Status:       models.StatusResolved,
			Priority:     models.PriorityHigh,
			Severity:     models.SeveritySevere,
			Location:     models.Location{Latitude: 37.7949, Longitude: -122.3994, Address: "123 Residential Ave, San Francisco, CA"},
			ReportedBy:   civilian,
			AssignedTeam: &responder,
			ResolvedAt:   &resolvedAt,
			LiveUpdates: []models.LiveUpdate{
				update("Gas leak detected. Emergency evacuation", civilian, ago(27*time.Hour)),
				update("Leak repaired. Building cleared for re-entry", responder, resolvedAt),
			},
			AffectedPeople: models.AffectedPeople{Estimated: 40, Confirmed: 40},
			CreatedAt:      ago(27 * time.Hour),
		},
	}
}
