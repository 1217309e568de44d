package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestListUsers_FiltersByRole(t *testing.T) {
	_, services, router := newTestHandlerWithServices(t)
	users := []*models.User{{ID: uuid.New(), Username: "responder1", Role: models.RoleResponder}}

	services.users.EXPECT().
		ListUsers(gomock.Any(), models.UserFilter{Role: models.RoleResponder, Search: "resp"}, 1, 10).
		Return(users, 11, nil).
		Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/users?role=emergency_responder&search=resp", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp UserListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "emergency_responder", resp.Data[0].Role)
	assert.Equal(t, 2, resp.Pagination.Pages)
}

func TestListUsers_InvalidRole(t *testing.T) {
	_, _, router := newTestHandlerWithServices(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/users?role=superuser", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserStats_Success(t *testing.T) {
	_, services, router := newTestHandlerWithServices(t)

	services.users.EXPECT().GetStats(gomock.Any()).
		Return(&models.UserStats{Total: 5, NewToday: 1, ByRole: map[string]int{"civilian": 5}}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/users/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stats":{"totalUsers":5,"newUsersToday":1,"usersByRole":{"civilian":5}}}`, w.Body.String())
}

func TestGetUser_Success(t *testing.T) {
	_, services, router := newTestHandlerWithServices(t)
	id := uuid.New()
	details := &models.UserDetails{
		User:      &models.User{ID: id, Username: "civilian1", Role: models.RoleCivilian},
		Incidents: []*models.Incident{{ID: uuid.New(), Title: "Car accident", ReportedBy: id}},
	}

	services.users.EXPECT().GetUser(gomock.Any(), id).Return(details, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/users/"+id.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp UserDetailsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.User.ID)
	require.Len(t, resp.Incidents, 1)
	assert.Equal(t, "Car accident", resp.Incidents[0].Title)
}

func TestGetUser_NotFound(t *testing.T) {
	_, services, router := newTestHandlerWithServices(t)
	id := uuid.New()

	services.users.EXPECT().GetUser(gomock.Any(), id).
		Return(nil, fmt.Errorf("service: could not get user: %w", models.ErrNotFound))

	w := makeRequest(router, http.MethodGet, "/api/v1/users/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateUser_Success(t *testing.T) {
	_, services, router := newTestHandlerWithServices(t)
	id := uuid.New()
	role := "emergency_responder"

	services.users.EXPECT().
		UpdateUser(gomock.Any(), id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, update models.UserUpdate) (*models.User, error) {
			require.NotNil(t, update.Role)
			assert.Equal(t, models.RoleResponder, *update.Role)
			require.NotNil(t, update.Profile)
			assert.Equal(t, "Alex", update.Profile.FirstName)
			return &models.User{ID: id, Role: *update.Role, Profile: *update.Profile}, nil
		})

	w := makeRequest(router, http.MethodPut, "/api/v1/users/"+id.String(),
		jsonBody(t, UpdateUserRequest{Role: &role, Profile: &ProfileDTO{FirstName: "Alex"}}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "emergency_responder", resp.Role)
}

func TestUpdateUser_InvalidRole(t *testing.T) {
	_, _, router := newTestHandlerWithServices(t)
	role := "root"

	w := makeRequest(router, http.MethodPut, "/api/v1/users/"+uuid.NewString(), jsonBody(t, UpdateUserRequest{Role: &role}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser_Responses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"not found", fmt.Errorf("service: %w", models.ErrNotFound), http.StatusNotFound},
		{"has incidents", fmt.Errorf("service: %w", models.ErrUserInUse), http.StatusConflict},
		{"db failure", errors.New("db error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, services, router := newTestHandlerWithServices(t)
			id := uuid.New()
			services.users.EXPECT().DeleteUser(gomock.Any(), id).Return(tt.err)

			w := makeRequest(router, http.MethodDelete, "/api/v1/users/"+id.String(), nil)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetDashboard_Success(t *testing.T) {
	_, services, router := newTestHandlerWithServices(t)
	dashboard := &models.Dashboard{
		Incidents: models.DashboardIncidents{Total: 4, Resolved: 1},
		Metrics:   models.DashboardMetrics{ResolutionRate: 25},
	}

	services.analytics.EXPECT().GetDashboard(gomock.Any()).Return(dashboard, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/analytics/dashboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Analytics.Incidents.Total)
	assert.Equal(t, 25.0, resp.Analytics.Metrics.ResolutionRate)
}

func TestGetDashboard_RequiresAPIKey(t *testing.T) {
	_, _, router := newTestHandlerWithServices(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/analytics/dashboard", nil, map[string]string{"X-API-Key": ""})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
