package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/config"
	"github.com/shenikar/resqsphere/internal/metrics"
	"github.com/shenikar/resqsphere/internal/models"
	"github.com/shenikar/resqsphere/internal/service/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "test-api-key"

type testServices struct {
	incidents *mocks.MockIncidentService
	users     *mocks.MockUserService
	analytics *mocks.MockAnalyticsService
}

// newTestHandler создает новый экземпляр Handler с мокированным сервисом инцидентов
func newTestHandler(t *testing.T) (*Handler, *mocks.MockIncidentService, *gin.Engine) {
	handler, services, router := newTestHandlerWithServices(t)
	return handler, services.incidents, router
}

// newTestHandlerWithServices создает Handler, в котором замоканы все сервисы
func newTestHandlerWithServices(t *testing.T) (*Handler, testServices, *gin.Engine) {
	ctrl := gomock.NewController(t)
	services := testServices{
		incidents: mocks.NewMockIncidentService(ctrl),
		users:     mocks.NewMockUserService(ctrl),
		analytics: mocks.NewMockAnalyticsService(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{testAPIKey},
	}

	handler := NewHandler(services.incidents, services.users, services.analytics, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, services, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", testAPIKey)
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestCreateIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reporter := uuid.New()
	reqBody := CreateIncidentRequest{
		Title:       "Fire Alarm",
		Description: "Smoke on the third floor",
		Type:        "fire",
		Priority:    "high",
		Location:    LocationDTO{Latitude: 37.7749, Longitude: -122.4194, Address: "Market St"},
		ReportedBy:  reporter,
	}

	mockService.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, "Fire Alarm", inc.Title)
			assert.Equal(t, models.TypeFire, inc.Type)
			assert.Equal(t, reporter, inc.ReportedBy)
			inc.ID = uuid.New()
			inc.Status = models.StatusReported
			return nil
		}).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "reported", resp.Status)
	assert.Equal(t, 37.7749, resp.Location.Latitude)
}

func TestCreateIncident_ReporterFromHeader(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reporter := uuid.New()
	reqBody := CreateIncidentRequest{Title: "Flooded road", Description: "Water", Type: "flood"}

	mockService.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, reporter, inc.ReportedBy)
			return nil
		}).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody),
		map[string]string{UserIDHeader: reporter.String()})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateIncident_ValidationError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{Title: "X", Description: "d", Type: "volcano", ReportedBy: uuid.New()}

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIncident_MissingReporter(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{Title: "Fire", Description: "d", Type: "fire"}

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "reportedBy")
}

func TestCreateIncident_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{Title: "Fire", Description: "d", Type: "fire", ReportedBy: uuid.New()}

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Return(fmt.Errorf("db down")).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListIncidents_WithFilters(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	expected := []*models.Incident{{ID: uuid.New(), Title: "Инцидент 1", Status: models.StatusReported}}
	expectedFilter := models.IncidentFilter{
		Statuses: []models.IncidentStatus{models.StatusReported},
		Type:     models.TypeFire,
		Near:     &models.GeoRadius{Latitude: 37.77, Longitude: -122.41, RadiusMeters: 500},
	}

	mockService.EXPECT().ListIncidents(gomock.Any(), expectedFilter, 2, 10).Return(expected, 25, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?status=reported&type=fire&lat=37.77&lng=-122.41&radius=500&page=2&limit=10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp IncidentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, PaginationResponse{Page: 2, Limit: 10, Total: 25, Pages: 3}, resp.Pagination)
}

func TestListIncidents_InvalidFilter(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().ListIncidents(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for _, query := range []string{"status=archived", "lat=10", "lat=100&lng=10", "lat=10&lng=10&radius=-1"} {
		w := makeRequest(router, http.MethodGet, "/api/v1/incidents?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestGetIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	reporter := uuid.New()
	expected := &models.Incident{
		ID:         incidentID,
		Title:      "Medical Emergency",
		Status:     models.StatusInProgress,
		ReportedBy: reporter,
		LiveUpdates: []models.LiveUpdate{
			{Update: "Incident reported", UpdatedBy: &reporter, Timestamp: time.Now()},
		},
	}

	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).Return(expected, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+incidentID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.ID)
	require.Len(t, resp.LiveUpdates, 1)
	assert.Equal(t, "Incident reported", resp.LiveUpdates[0].Update)
}

func TestGetIncident_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()

	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).
		Return(nil, fmt.Errorf("service: %w", models.ErrNotFound)).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+incidentID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetIncident_InvalidID(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID, actor := uuid.New(), uuid.New()
	status := "resolved"

	mockService.EXPECT().
		UpdateIncident(gomock.Any(), incidentID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, update models.IncidentUpdate) (*models.Incident, error) {
			require.NotNil(t, update.Status)
			assert.Equal(t, models.StatusResolved, *update.Status)
			require.NotNil(t, update.UpdatedBy)
			assert.Equal(t, actor, *update.UpdatedBy)
			return &models.Incident{ID: incidentID, Status: models.StatusResolved}, nil
		}).Times(1)

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+incidentID.String(),
		jsonBody(t, UpdateIncidentRequest{Status: &status}), map[string]string{UserIDHeader: actor.String()})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"resolved"`)
}

func TestUpdateIncident_InvalidStatus(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	status := "archived"

	mockService.EXPECT().UpdateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+uuid.NewString(),
		jsonBody(t, UpdateIncidentRequest{Status: &status}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateIncident_InvalidActor(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().UpdateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+uuid.NewString(),
		jsonBody(t, UpdateIncidentRequest{}), map[string]string{UserIDHeader: "someone"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateIncident_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()

	mockService.EXPECT().UpdateIncident(gomock.Any(), incidentID, gomock.Any()).
		Return(nil, fmt.Errorf("service: %w", models.ErrNotFound)).Times(1)

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+incidentID.String(), jsonBody(t, UpdateIncidentRequest{}))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()

	mockService.EXPECT().DeleteIncident(gomock.Any(), incidentID).Return(nil).Times(1)

	w := makeRequest(router, http.MethodDelete, "/api/v1/incidents/"+incidentID.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteIncident_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()

	mockService.EXPECT().DeleteIncident(gomock.Any(), incidentID).Return(fmt.Errorf("db down")).Times(1)

	w := makeRequest(router, http.MethodDelete, "/api/v1/incidents/"+incidentID.String(), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetStats_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	stats := &models.IncidentStats{Total: 7, Resolved: 2, Today: 1, ByStatus: map[string]int{"resolved": 2, "reported": 5}}

	mockService.EXPECT().GetStats(gomock.Any()).Return(stats, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Stats.Total)
	assert.Equal(t, 2, resp.Stats.ByStatus["resolved"])
}

func TestAPIKeyAuth(t *testing.T) {
	_, _, router := newTestHandler(t)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", map[string]string{"X-API-Key": ""}, http.StatusUnauthorized},
		{"invalid key", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := makeRequest(router, http.MethodGet, "/api/v1/incidents/stats", nil, tt.headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAPIKeyAuth_BearerToken(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().GetStats(gomock.Any()).Return(&models.IncidentStats{}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/stats", nil,
		map[string]string{"X-API-Key": "", "Authorization": "Bearer " + testAPIKey})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck(t *testing.T) {
	_, _, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewRateLimiter(0.001, 2).Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// другой IP имеет собственный лимит
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "404")
	before := testutil.ToFloat64(counter)

	w := makeRequest(router, http.MethodGet, "/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
