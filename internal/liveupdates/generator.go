package liveupdates

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/resqsphere/internal/models"
)

const (
	// coordinateJitter - полная ширина шума координат, то есть ±0.05 градуса
	coordinateJitter = 0.1
	maxEstimated     = 5

	reportedUpdateText = "Incident reported. Emergency services dispatched"
)

// Template - заготовка синтетического инцидента
type Template struct {
	Title       string
	Description string
	Type        models.IncidentType
	Priority    models.Priority
	Severity    models.Severity
	Location    models.Location
}

var DefaultTemplates = []Template{
	{
		Title:       "Traffic Accident - Highway 101",
		Description: "Multi-vehicle collision reported. Traffic backing up.",
		Type:        models.TypeMedical,
		Priority:    models.PriorityHigh,
		Severity:    models.SeveritySevere,
		Location:    models.Location{Latitude: 37.7849, Longitude: -122.4094, Address: "Highway 101, San Francisco, CA"},
	},
	{
		Title:       "Medical Emergency - Public Area",
		Description: "Individual requires immediate medical attention.",
		Type:        models.TypeMedical,
		Priority:    models.PriorityCritical,
		Severity:    models.SeveritySevere,
		Location:    models.Location{Latitude: 37.7749, Longitude: -122.4194, Address: "Downtown San Francisco, CA"},
	},
	{
		Title:       "Fire Alarm - Building",
		Description: "Smoke detected. Fire department dispatched.",
		Type:        models.TypeFire,
		Priority:    models.PriorityHigh,
		Severity:    models.SeverityModerate,
		Location:    models.Location{Latitude: 37.7949, Longitude: -122.3994, Address: "Commercial District, San Francisco, CA"},
	},
	{
		Title:       "Weather Alert - Flash Flood Warning",
		Description: "Heavy rainfall causing flooding concerns.",
		Type:        models.TypeWeather,
		Priority:    models.PriorityMedium,
		Severity:    models.SeverityModerate,
		Location:    models.Location{Latitude: 37.7649, Longitude: -122.4294, Address: "Mission District, San Francisco, CA"},
	},
	{
		Title:       "Security Incident - Suspicious Activity",
		Description: "Unusual activity reported. Security team notified.",
		Type:        models.TypeSecurity,
		Priority:    models.PriorityMedium,
		Severity:    models.SeverityModerate,
		Location:    models.Location{Latitude: 37.8044, Longitude: -122.4162, Address: "Financial District, San Francisco, CA"},
	},
}

// Generator создает синтетические инциденты от имени случайного пользователя
type Generator struct {
	users     UserStore
	incidents IncidentStore
	rnd       Rand
	templates []Template
}

func NewGenerator(users UserStore, incidents IncidentStore, rnd Rand) *Generator {
	return &Generator{
		users:     users,
		incidents: incidents,
		rnd:       rnd,
		templates: DefaultTemplates,
	}
}

// Generate создает и сохраняет новый инцидент.
// Если подходящих пользователей нет, возвращает nil без ошибки.
func (g *Generator) Generate(ctx context.Context, now time.Time) (*models.Incident, error) {
	users, err := g.users.FindByRoles(ctx, models.AuthorRoles)
	if err != nil {
		return nil, fmt.Errorf("liveupdates: find candidate authors: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	author := users[g.rnd.IntN(len(users))]
	tpl := g.templates[g.rnd.IntN(len(g.templates))]

	location := tpl.Location
	location.Latitude += (g.rnd.Float64() - 0.5) * coordinateJitter
	location.Longitude += (g.rnd.Float64() - 0.5) * coordinateJitter

	incident := &models.Incident{
		Title:       tpl.Title,
		Description: tpl.Description,
		Type:        tpl.Type,
		Status:      models.StatusReported,
		Priority:    tpl.Priority,
		Severity:    tpl.Severity,
		Location:    location,
		ReportedBy:  author.ID,
		AffectedPeople: models.AffectedPeople{
			Estimated: g.rnd.IntN(maxEstimated) + 1,
			Confirmed: 0,
		},
	}
	incident.AppendLiveUpdate(reportedUpdateText, author.ID, now)

	if err := g.incidents.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("liveupdates: create synthetic incident: %w", err)
	}
	return incident, nil
}
