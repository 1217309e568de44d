package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/models"
	"github.com/shenikar/resqsphere/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestUserService(t *testing.T) (*userService, *mocks.MockUserRepository, *mocks.MockIncidentRepository) {
	ctrl := gomock.NewController(t)
	usersMock := mocks.NewMockUserRepository(ctrl)
	incidentsMock := mocks.NewMockIncidentRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	service := NewUserService(usersMock, incidentsMock, logger).(*userService)
	service.now = func() time.Time { return fixedNow }
	return service, usersMock, incidentsMock
}

func TestListUsers_Success(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)
	filter := models.UserFilter{Role: models.RoleCivilian, Search: "jane"}
	users := []*models.User{{ID: uuid.New(), Username: "jane"}}

	usersMock.EXPECT().List(gomock.Any(), filter, 2, 10).Return(users, nil).Times(1)
	usersMock.EXPECT().Count(gomock.Any(), filter).Return(11, nil).Times(1)

	result, total, err := service.ListUsers(context.Background(), filter, 2, 10)

	require.NoError(t, err)
	assert.Equal(t, users, result)
	assert.Equal(t, 11, total)
}

func TestListUsers_NormalizesPagination(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)

	usersMock.EXPECT().List(gomock.Any(), gomock.Any(), 1, 10).Return([]*models.User{}, nil)
	usersMock.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)

	_, _, err := service.ListUsers(context.Background(), models.UserFilter{}, 0, 500)

	require.NoError(t, err)
}

func TestGetUser_WithRecentIncidents(t *testing.T) {
	// Подготовка
	service, usersMock, incidentsMock := newTestUserService(t)
	id := uuid.New()
	user := &models.User{ID: id, Username: "responder", Role: models.RoleResponder}
	incidents := []*models.Incident{{ID: uuid.New(), ReportedBy: id}}

	// Ожидания
	usersMock.EXPECT().GetByID(gomock.Any(), id).Return(user, nil)
	incidentsMock.EXPECT().
		ListIncidents(gomock.Any(), gomock.Any(), 1, recentIncidentsLimit).
		DoAndReturn(func(_ context.Context, filter models.IncidentFilter, _, _ int) ([]*models.Incident, error) {
			require.NotNil(t, filter.ReportedBy)
			assert.Equal(t, id, *filter.ReportedBy)
			return incidents, nil
		})

	// Действие
	details, err := service.GetUser(context.Background(), id)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, user, details.User)
	assert.Equal(t, incidents, details.Incidents)
}

func TestGetUser_NotFound(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)
	id := uuid.New()

	usersMock.EXPECT().GetByID(gomock.Any(), id).Return(nil, fmt.Errorf("user with id %s: %w", id, models.ErrNotFound))

	details, err := service.GetUser(context.Background(), id)

	assert.Nil(t, details)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateUser_ChangesRoleAndProfile(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)
	id := uuid.New()
	user := &models.User{ID: id, Role: models.RoleViewer}
	role := models.RoleResponder
	profile := models.Profile{FirstName: "Sam", Phone: "+1-555-0100"}

	usersMock.EXPECT().GetByID(gomock.Any(), id).Return(user, nil)
	usersMock.EXPECT().Update(gomock.Any(), user).Return(nil)

	updated, err := service.UpdateUser(context.Background(), id, models.UserUpdate{Role: &role, Profile: &profile})

	require.NoError(t, err)
	assert.Equal(t, models.RoleResponder, updated.Role)
	assert.Equal(t, profile, updated.Profile)
}

func TestUpdateUser_RepositoryError(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)
	id := uuid.New()

	usersMock.EXPECT().GetByID(gomock.Any(), id).Return(&models.User{ID: id}, nil)
	usersMock.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

	_, err := service.UpdateUser(context.Background(), id, models.UserUpdate{})

	assert.Error(t, err)
}

func TestDeleteUser_InUse(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)
	id := uuid.New()

	usersMock.EXPECT().Delete(gomock.Any(), id).Return(fmt.Errorf("user with id %s: %w", id, models.ErrUserInUse))

	err := service.DeleteUser(context.Background(), id)

	assert.ErrorIs(t, err, models.ErrUserInUse)
}

func TestDeleteUser_Success(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)
	id := uuid.New()

	usersMock.EXPECT().Delete(gomock.Any(), id).Return(nil)

	assert.NoError(t, service.DeleteUser(context.Background(), id))
}

func TestUserStats_Success(t *testing.T) {
	service, usersMock, _ := newTestUserService(t)
	midnight := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	usersMock.EXPECT().Count(gomock.Any(), models.UserFilter{}).Return(12, nil)
	usersMock.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.UserFilter) (int, error) {
			require.NotNil(t, filter.CreatedSince)
			assert.Equal(t, midnight, *filter.CreatedSince)
			return 2, nil
		})
	usersMock.EXPECT().CountByRole(gomock.Any()).Return(map[string]int{"civilian": 9, "admin": 3}, nil)

	stats, err := service.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 2, stats.NewToday)
	assert.Equal(t, 9, stats.ByRole["civilian"])
}
