package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleResponder Role = "emergency_responder"
	RoleCivilian  Role = "civilian"
	RoleViewer    Role = "viewer"
)

// AuthorRoles - роли пользователей, от имени которых создаются синтетические инциденты
var AuthorRoles = []Role{RoleCivilian, RoleResponder}

type Profile struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
}

// Valid сообщает, известна ли роль
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleResponder, RoleCivilian, RoleViewer:
		return true
	}
	return false
}

// UserFilter - условия выборки пользователей
type UserFilter struct {
	Role         Role
	Search       string
	CreatedSince *time.Time
}

// UserUpdate - частичное изменение пользователя. nil означает "не менять".
type UserUpdate struct {
	Profile *Profile
	Role    *Role
}

// Apply применяет изменение к пользователю
func (u *User) Apply(update UserUpdate) {
	if update.Profile != nil {
		u.Profile = *update.Profile
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
}

// UserStats - статистика пользователей
type UserStats struct {
	Total    int            `json:"totalUsers"`
	NewToday int            `json:"newUsersToday"`
	ByRole   map[string]int `json:"usersByRole"`
}

// UserDetails - пользователь и его последние заявленные инциденты
type UserDetails struct {
	User      *User
	Incidents []*Incident
}

// Dashboard - сводная аналитика для администраторов
type Dashboard struct {
	Users     DashboardUsers     `json:"users"`
	Incidents DashboardIncidents `json:"incidents"`
	Metrics   DashboardMetrics   `json:"metrics"`
	// TopReporters - пользователи с наибольшим числом заявленных инцидентов
	TopReporters []ReporterCount `json:"topReporters"`
}

type DashboardUsers struct {
	Total              int            `json:"total"`
	Today              int            `json:"today"`
	ByRole             map[string]int `json:"byRole"`
	RegistrationTrends []DailyCount   `json:"registrationTrends"`
}

type DashboardIncidents struct {
	Total      int            `json:"total"`
	Today      int            `json:"today"`
	Resolved   int            `json:"resolved"`
	ByType     map[string]int `json:"byType"`
	ByStatus   map[string]int `json:"byStatus"`
	BySeverity map[string]int `json:"bySeverity"`
	Trends     []DailyCount   `json:"trends"`
}

type DashboardMetrics struct {
	// AvgResponseTime - среднее время от создания до решения, в часах
	AvgResponseTime float64 `json:"avgResponseTime"`
	// ResolutionRate - доля решенных инцидентов в процентах
	ResolutionRate float64 `json:"resolutionRate"`
}
