package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/models"
)

// LocationDTO - координаты инцидента
type LocationDTO struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address,omitempty" validate:"max=255"`
}

// AffectedPeopleDTO - число пострадавших
type AffectedPeopleDTO struct {
	Estimated int `json:"estimated" validate:"gte=0"`
	Confirmed int `json:"confirmed" validate:"gte=0"`
}

// RequiredResourceDTO - требуемый ресурс
type RequiredResourceDTO struct {
	Resource string `json:"resource" validate:"required,max=100"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=requested allocated received"`
}

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	Title             string                `json:"title" validate:"required,min=2,max=100"`
	Description       string                `json:"description" validate:"required,max=1000"`
	Type              string                `json:"type" validate:"required,oneof=fire flood earthquake medical security weather other"`
	Priority          string                `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Severity          string                `json:"severity,omitempty" validate:"omitempty,oneof=minor moderate severe extreme"`
	Location          LocationDTO           `json:"location"`
	ReportedBy        uuid.UUID             `json:"reportedBy"`
	AffectedPeople    AffectedPeopleDTO     `json:"affectedPeople"`
	RequiredResources []RequiredResourceDTO `json:"requiredResources,omitempty" validate:"dive"`
}

// UpdateIncidentRequest DTO для частичного обновления инцидента
// @Description DTO для частичного обновления инцидента
type UpdateIncidentRequest struct {
	Title             *string               `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Description       *string               `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status            *string               `json:"status,omitempty" validate:"omitempty,oneof=reported in_progress resolved cancelled"`
	Priority          *string               `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Severity          *string               `json:"severity,omitempty" validate:"omitempty,oneof=minor moderate severe extreme"`
	AssignedTeam      *uuid.UUID            `json:"assignedTeam,omitempty"`
	AffectedPeople    *AffectedPeopleDTO    `json:"affectedPeople,omitempty"`
	RequiredResources []RequiredResourceDTO `json:"requiredResources,omitempty" validate:"dive"`
}

// LiveUpdateResponse - запись хроники
type LiveUpdateResponse struct {
	Update    string     `json:"update"`
	UpdatedBy *uuid.UUID `json:"updatedBy,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                uuid.UUID             `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Type              string                `json:"type"`
	Status            string                `json:"status"`
	Priority          string                `json:"priority"`
	Severity          string                `json:"severity"`
	Location          LocationDTO           `json:"location"`
	ReportedBy        uuid.UUID             `json:"reportedBy"`
	AssignedTeam      *uuid.UUID            `json:"assignedTeam,omitempty"`
	LiveUpdates       []LiveUpdateResponse  `json:"liveUpdates"`
	AffectedPeople    AffectedPeopleDTO     `json:"affectedPeople"`
	RequiredResources []RequiredResourceDTO `json:"requiredResources,omitempty"`
	ResolvedAt        *time.Time            `json:"resolvedAt,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// PaginationResponse - параметры страницы
type PaginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// IncidentListResponse DTO для списка инцидентов
// @Description DTO для списка инцидентов
type IncidentListResponse struct {
	Data       []*IncidentResponse `json:"data"`
	Pagination PaginationResponse  `json:"pagination"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Stats *models.IncidentStats `json:"stats"`
}

// ProfileDTO - профиль пользователя
type ProfileDTO struct {
	FirstName string `json:"firstName,omitempty" validate:"max=50"`
	LastName  string `json:"lastName,omitempty" validate:"max=50"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// UpdateUserRequest DTO для изменения пользователя
// @Description DTO для изменения пользователя
type UpdateUserRequest struct {
	Profile *ProfileDTO `json:"profile,omitempty"`
	Role    *string     `json:"role,omitempty" validate:"omitempty,oneof=admin emergency_responder civilian viewer"`
}

// UserResponse DTO для ответа с информацией о пользователе
// @Description DTO для ответа с информацией о пользователе
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Profile   ProfileDTO `json:"profile"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserListResponse DTO для списка пользователей
type UserListResponse struct {
	Data       []*UserResponse    `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// UserDetailsResponse - пользователь и его последние инциденты
type UserDetailsResponse struct {
	User      *UserResponse       `json:"user"`
	Incidents []*IncidentResponse `json:"incidents"`
}

// UserStatsResponse DTO для статистики пользователей
type UserStatsResponse struct {
	Stats *models.UserStats `json:"stats"`
}

// DashboardResponse DTO для сводной аналитики
type DashboardResponse struct {
	Analytics *models.Dashboard `json:"analytics"`
}
