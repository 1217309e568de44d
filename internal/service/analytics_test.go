package service

import (
	"bytes"
	"context"
	"errors"
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

func newTestAnalyticsService(t *testing.T) (*analyticsService, *mocks.MockIncidentAnalytics, *mocks.MockUserAnalytics) {
	ctrl := gomock.NewController(t)
	incidentsMock := mocks.NewMockIncidentAnalytics(ctrl)
	usersMock := mocks.NewMockUserAnalytics(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	service := NewAnalyticsService(incidentsMock, usersMock, logger).(*analyticsService)
	service.now = func() time.Time { return fixedNow }
	return service, incidentsMock, usersMock
}

func TestGetDashboard_Success(t *testing.T) {
	// Подготовка
	service, incidentsMock, usersMock := newTestAnalyticsService(t)
	midnight := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	monthAgo := midnight.Add(-30 * 24 * time.Hour)
	reporters := []models.ReporterCount{{UserID: uuid.New(), Username: "civilian1", Count: 4}}
	trends := []models.DailyCount{{Day: "2026-06-14", Count: 3}, {Day: "2026-06-15", Count: 1}}

	// Ожидания
	usersMock.EXPECT().Count(gomock.Any(), models.UserFilter{}).Return(20, nil)
	usersMock.EXPECT().Count(gomock.Any(), models.UserFilter{CreatedSince: &midnight}).Return(2, nil)
	usersMock.EXPECT().CountByRole(gomock.Any()).Return(map[string]int{"civilian": 15, "admin": 5}, nil)
	usersMock.EXPECT().DailyCounts(gomock.Any(), monthAgo).Return([]models.DailyCount{{Day: "2026-06-01", Count: 2}}, nil)

	incidentsMock.EXPECT().Count(gomock.Any(), models.IncidentFilter{}).Return(8, nil)
	incidentsMock.EXPECT().Count(gomock.Any(), models.IncidentFilter{CreatedSince: &midnight}).Return(1, nil)
	incidentsMock.EXPECT().CountGrouped(gomock.Any(), "type").Return(map[string]int{"fire": 8}, nil)
	incidentsMock.EXPECT().CountGrouped(gomock.Any(), "status").Return(map[string]int{"resolved": 3, "reported": 5}, nil)
	incidentsMock.EXPECT().CountGrouped(gomock.Any(), "severity").Return(map[string]int{"severe": 8}, nil)
	incidentsMock.EXPECT().DailyCounts(gomock.Any(), monthAgo).Return(trends, nil)
	incidentsMock.EXPECT().AverageResolutionHours(gomock.Any()).Return(2.6, nil)
	incidentsMock.EXPECT().TopReporters(gomock.Any(), topReportersLimit).Return(reporters, nil)

	// Действие
	dashboard, err := service.GetDashboard(context.Background())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 20, dashboard.Users.Total)
	assert.Equal(t, 2, dashboard.Users.Today)
	assert.Equal(t, 8, dashboard.Incidents.Total)
	assert.Equal(t, 3, dashboard.Incidents.Resolved)
	assert.Equal(t, trends, dashboard.Incidents.Trends)
	assert.Equal(t, 3.0, dashboard.Metrics.AvgResponseTime)
	assert.Equal(t, 37.5, dashboard.Metrics.ResolutionRate)
	assert.Equal(t, reporters, dashboard.TopReporters)
}

func TestGetDashboard_EmptyStoreHasZeroRate(t *testing.T) {
	service, incidentsMock, usersMock := newTestAnalyticsService(t)

	usersMock.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).Times(2)
	usersMock.EXPECT().CountByRole(gomock.Any()).Return(map[string]int{}, nil)
	usersMock.EXPECT().DailyCounts(gomock.Any(), gomock.Any()).Return(nil, nil)
	incidentsMock.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).Times(2)
	incidentsMock.EXPECT().CountGrouped(gomock.Any(), gomock.Any()).Return(map[string]int{}, nil).Times(3)
	incidentsMock.EXPECT().DailyCounts(gomock.Any(), gomock.Any()).Return(nil, nil)
	incidentsMock.EXPECT().AverageResolutionHours(gomock.Any()).Return(0.0, nil)
	incidentsMock.EXPECT().TopReporters(gomock.Any(), gomock.Any()).Return(nil, nil)

	dashboard, err := service.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Zero(t, dashboard.Metrics.ResolutionRate)
	assert.Zero(t, dashboard.Incidents.Resolved)
}

func TestGetDashboard_QueryError(t *testing.T) {
	service, incidentsMock, usersMock := newTestAnalyticsService(t)

	// после первой ошибки остальные запросы могут не выполниться
	usersMock.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
	usersMock.EXPECT().CountByRole(gomock.Any()).Return(map[string]int{}, nil).AnyTimes()
	usersMock.EXPECT().DailyCounts(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	incidentsMock.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
	incidentsMock.EXPECT().CountGrouped(gomock.Any(), gomock.Any()).Return(map[string]int{}, nil).AnyTimes()
	incidentsMock.EXPECT().DailyCounts(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	incidentsMock.EXPECT().AverageResolutionHours(gomock.Any()).Return(0.0, errors.New("db error"))
	incidentsMock.EXPECT().TopReporters(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	dashboard, err := service.GetDashboard(context.Background())

	assert.Nil(t, dashboard)
	assert.Error(t, err)
}
