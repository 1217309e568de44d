package liveupdates

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/models"
)

// Имена событий, которые публикует симулятор
const (
	EventIncidentUpdate = "incidentUpdate"
	EventNewIncident    = "newIncident"
	EventStatsUpdate    = "statsUpdate"
)

// IncidentUpdateEvent - точечное изменение одного поля инцидента
type IncidentUpdateEvent struct {
	IncidentID     uuid.UUID             `json:"incidentId"`
	Update         string                `json:"update,omitempty"`
	AffectedPeople *int                  `json:"affectedPeople,omitempty"`
	Status         models.IncidentStatus `json:"status,omitempty"`
	Timestamp      time.Time             `json:"timestamp"`
}

// NewIncidentEvent - создание синтетического инцидента
type NewIncidentEvent struct {
	Incident  *models.Incident `json:"incident"`
	Timestamp time.Time        `json:"timestamp"`
}

// Snapshot - агрегированные счетчики по всем инцидентам
type Snapshot struct {
	Total      int       `json:"total"`
	Resolved   int       `json:"resolved"`
	InProgress int       `json:"inProgress"`
	Reported   int       `json:"reported"`
	Today      int       `json:"today"`
	Timestamp  time.Time `json:"timestamp"`
}
