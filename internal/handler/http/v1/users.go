package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/resqsphere/internal/models"
	"github.com/sirupsen/logrus"
)

// @Summary Get a list of users
// @Description Get a paginated list of users, newest first. Requires API key.
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param role query string false "Role filter"
// @Param search query string false "Substring of username, email, first or last name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page" default(10)
// @Success 200 {object} UserListResponse
// @Failure 400 {object} map[string]string "Invalid role"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users [get]
func (h *Handler) listUsers(c *gin.Context) {
	log := h.logger.WithField("method", "listUsers")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := models.UserFilter{Search: c.Query("search")}
	if role := c.Query("role"); role != "" {
		filter.Role = models.Role(role)
		if !filter.Role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), filter, page, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list users from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	c.JSON(http.StatusOK, UserListResponse{
		Data: ModelsToUserResponses(users),
		Pagination: PaginationResponse{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	})
}

// @Summary Get user statistics
// @Description Get total users, users registered today and counts by role. Requires API key.
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} UserStatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users/stats [get]
func (h *Handler) getUserStats(c *gin.Context) {
	stats, err := h.userService.GetStats(c.Request.Context())
	if err != nil {
		h.logger.WithField("method", "getUserStats").WithError(err).Error("Failed to get user stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, UserStatsResponse{Stats: stats})
}

// @Summary Get user by ID
// @Description Get a user together with the last incidents they reported. Requires API key.
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserDetailsResponse
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	log := h.logger.WithField("method", "getUser").WithField("id", id)

	details, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.writeUserError(c, log, err, "Failed to get user from service")
		return
	}
	c.JSON(http.StatusOK, UserDetailsResponse{
		User:      ModelToUserResponse(details.User),
		Incidents: ModelsToIncidentResponses(details.Incidents),
	})
}

// @Summary Update a user
// @Description Update a user's profile or role. Requires API key.
// @Tags Users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "User update request"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Invalid user ID or request body"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	log := h.logger.WithField("method", "updateUser").WithField("id", id)

	var input UpdateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, UpdateUserRequestToModel(input))
	if err != nil {
		h.writeUserError(c, log, err, "Failed to update user in service")
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Delete a user
// @Description Delete a user. Users who reported incidents cannot be deleted. Requires API key.
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 409 {object} map[string]string "User is referenced by incidents"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	log := h.logger.WithField("method", "deleteUser").WithField("id", id)

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeUserError(c, log, err, "Failed to delete user in service")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get dashboard analytics
// @Description Get user and incident totals, breakdowns, 30 day trends, resolution metrics and top reporters. Requires API key.
// @Tags Analytics
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /analytics/dashboard [get]
func (h *Handler) getDashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.GetDashboard(c.Request.Context())
	if err != nil {
		h.logger.WithField("method", "getDashboard").WithError(err).Error("Failed to get dashboard from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{Analytics: dashboard})
}

func (h *Handler) writeUserError(c *gin.Context, log *logrus.Entry, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.WithError(err).Warn(msg)
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, models.ErrUserInUse):
		log.WithError(err).Warn(msg)
		c.JSON(http.StatusConflict, gin.H{"error": "user has reported incidents"})
	default:
		log.WithError(err).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
