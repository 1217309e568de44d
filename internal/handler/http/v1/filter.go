package v1

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/resqsphere/internal/models"
)

const defaultSearchRadiusMeters = 10000

var (
	validStatuses   = map[string]struct{}{"reported": {}, "in_progress": {}, "resolved": {}, "cancelled": {}}
	validTypes      = map[string]struct{}{"fire": {}, "flood": {}, "earthquake": {}, "medical": {}, "security": {}, "weather": {}, "other": {}}
	validPriorities = map[string]struct{}{"low": {}, "medium": {}, "high": {}, "critical": {}}
)

// parseIncidentFilter разбирает query-параметры списка инцидентов
func parseIncidentFilter(c *gin.Context) (models.IncidentFilter, error) {
	var filter models.IncidentFilter

	if status := c.Query("status"); status != "" {
		if _, ok := validStatuses[status]; !ok {
			return filter, fmt.Errorf("invalid status %q", status)
		}
		filter.Statuses = []models.IncidentStatus{models.IncidentStatus(status)}
	}
	if typ := c.Query("type"); typ != "" {
		if _, ok := validTypes[typ]; !ok {
			return filter, fmt.Errorf("invalid type %q", typ)
		}
		filter.Type = models.IncidentType(typ)
	}
	if priority := c.Query("priority"); priority != "" {
		if _, ok := validPriorities[priority]; !ok {
			return filter, fmt.Errorf("invalid priority %q", priority)
		}
		filter.Priority = models.Priority(priority)
	}

	lat, lng := c.Query("lat"), c.Query("lng")
	if lat == "" && lng == "" {
		return filter, nil
	}
	if lat == "" || lng == "" {
		return filter, fmt.Errorf("lat and lng must be provided together")
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil || latitude < -90 || latitude > 90 {
		return filter, fmt.Errorf("invalid lat %q", lat)
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil || longitude < -180 || longitude > 180 {
		return filter, fmt.Errorf("invalid lng %q", lng)
	}
	radius := float64(defaultSearchRadiusMeters)
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return filter, fmt.Errorf("invalid radius %q", raw)
		}
	}

	filter.Near = &models.GeoRadius{Latitude: latitude, Longitude: longitude, RadiusMeters: radius}
	return filter, nil
}
