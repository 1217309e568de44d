package models

import (
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	StatusReported   IncidentStatus = "reported"
	StatusInProgress IncidentStatus = "in_progress"
	StatusResolved   IncidentStatus = "resolved"
	StatusCancelled  IncidentStatus = "cancelled"
)

// ActiveStatuses - статусы, в которых инцидент считается активным
var ActiveStatuses = []IncidentStatus{StatusReported, StatusInProgress}

// IsActive сообщает, находится ли инцидент в активном статусе
func (s IncidentStatus) IsActive() bool {
	return s == StatusReported || s == StatusInProgress
}

type IncidentType string

const (
	TypeFire       IncidentType = "fire"
	TypeFlood      IncidentType = "flood"
	TypeEarthquake IncidentType = "earthquake"
	TypeMedical    IncidentType = "medical"
	TypeSecurity   IncidentType = "security"
	TypeWeather    IncidentType = "weather"
	TypeOther      IncidentType = "other"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityExtreme  Severity = "extreme"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// AffectedPeople - оценка и подтвержденное число пострадавших. Confirmed никогда не меньше нуля.
type AffectedPeople struct {
	Estimated int `json:"estimated"`
	Confirmed int `json:"confirmed"`
}

// LiveUpdate - запись в хронике инцидента. После добавления не изменяется.
type LiveUpdate struct {
	Update    string     `json:"update"`
	UpdatedBy *uuid.UUID `json:"updatedBy,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type ResourceStatus string

const (
	ResourceRequested ResourceStatus = "requested"
	ResourceAllocated ResourceStatus = "allocated"
	ResourceReceived  ResourceStatus = "received"
)

type RequiredResource struct {
	Resource string         `json:"resource"`
	Quantity int            `json:"quantity"`
	Status   ResourceStatus `json:"status"`
}

type Incident struct {
	ID                uuid.UUID          `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Type              IncidentType       `json:"type"`
	Status            IncidentStatus     `json:"status"`
	Priority          Priority           `json:"priority"`
	Severity          Severity           `json:"severity"`
	Location          Location           `json:"location"`
	ReportedBy        uuid.UUID          `json:"reportedBy"`
	AssignedTeam      *uuid.UUID         `json:"assignedTeam,omitempty"`
	LiveUpdates       []LiveUpdate       `json:"liveUpdates"`
	AffectedPeople    AffectedPeople     `json:"affectedPeople"`
	RequiredResources []RequiredResource `json:"requiredResources,omitempty"`
	ResolvedAt        *time.Time         `json:"resolvedAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// Author возвращает автора для новых записей хроники: назначенную команду, иначе заявителя
func (i *Incident) Author() uuid.UUID {
	if i.AssignedTeam != nil {
		return *i.AssignedTeam
	}
	return i.ReportedBy
}

// AppendLiveUpdate добавляет запись в конец хроники
func (i *Incident) AppendLiveUpdate(text string, author uuid.UUID, at time.Time) {
	i.LiveUpdates = append(i.LiveUpdates, LiveUpdate{
		Update:    text,
		UpdatedBy: &author,
		Timestamp: at,
	})
}

// Resolve переводит инцидент в resolved. ResolvedAt выставляется только один раз
// и не может быть раньше CreatedAt.
func (i *Incident) Resolve(at time.Time) {
	i.Status = StatusResolved
	if i.ResolvedAt != nil {
		return
	}
	if at.Before(i.CreatedAt) {
		at = i.CreatedAt
	}
	i.ResolvedAt = &at
}

// IncidentFilter - условия выборки и подсчета инцидентов
type IncidentFilter struct {
	Statuses     []IncidentStatus
	Type         IncidentType
	Priority     Priority
	CreatedSince *time.Time
	Near         *GeoRadius
	ReportedBy   *uuid.UUID
}

// GeoRadius - точка и радиус в метрах
type GeoRadius struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// IncidentStats - агрегированная статистика для REST
type IncidentStats struct {
	Total      int            `json:"total"`
	Resolved   int            `json:"resolved"`
	Today      int            `json:"today"`
	ByStatus   map[string]int `json:"byStatus"`
	ByType     map[string]int `json:"byType"`
	ByPriority map[string]int `json:"byPriority"`
	BySeverity map[string]int `json:"bySeverity"`
}

// IncidentUpdate - частичное изменение инцидента через API. nil означает "не менять".
type IncidentUpdate struct {
	Title             *string
	Description       *string
	Status            *IncidentStatus
	Priority          *Priority
	Severity          *Severity
	AssignedTeam      *uuid.UUID
	AffectedPeople    *AffectedPeople
	RequiredResources []RequiredResource
	UpdatedBy         *uuid.UUID
}

// Apply применяет изменение к инциденту. Смена статуса или назначение команды
// фиксируются записью в хронике. Возвращает true, если была назначена команда.
func (i *Incident) Apply(u IncidentUpdate, at time.Time) (assigned bool) {
	if u.Title != nil {
		i.Title = *u.Title
	}
	if u.Description != nil {
		i.Description = *u.Description
	}
	if u.Priority != nil {
		i.Priority = *u.Priority
	}
	if u.Severity != nil {
		i.Severity = *u.Severity
	}
	if u.AffectedPeople != nil {
		i.AffectedPeople = AffectedPeople{
			Estimated: max(0, u.AffectedPeople.Estimated),
			Confirmed: max(0, u.AffectedPeople.Confirmed),
		}
	}
	if u.RequiredResources != nil {
		i.RequiredResources = u.RequiredResources
	}
	if u.AssignedTeam != nil {
		team := *u.AssignedTeam
		i.AssignedTeam = &team
		assigned = true
	}

	author := i.Author()
	if u.UpdatedBy != nil {
		author = *u.UpdatedBy
	}

	switch {
	case u.Status != nil:
		if *u.Status == StatusResolved {
			i.Resolve(at)
		} else {
			i.Status = *u.Status
		}
		i.AppendLiveUpdate("Status changed to "+string(*u.Status), author, at)
	case assigned:
		i.AppendLiveUpdate("Team assigned", author, at)
	}
	return assigned
}

// DailyCount - число записей за календарный день (YYYY-MM-DD)
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// ReporterCount - число инцидентов, заявленных пользователем
type ReporterCount struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Count    int       `json:"count"`
}
