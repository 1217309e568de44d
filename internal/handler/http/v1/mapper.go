package v1

import (
	"github.com/shenikar/resqsphere/internal/models"
)

// CreateRequestToModel преобразует DTO создания в доменную модель
func CreateRequestToModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:       dto.Title,
		Description: dto.Description,
		Type:        models.IncidentType(dto.Type),
		Priority:    models.Priority(dto.Priority),
		Severity:    models.Severity(dto.Severity),
		Location: models.Location{
			Latitude:  dto.Location.Latitude,
			Longitude: dto.Location.Longitude,
			Address:   dto.Location.Address,
		},
		ReportedBy: dto.ReportedBy,
		AffectedPeople: models.AffectedPeople{
			Estimated: dto.AffectedPeople.Estimated,
			Confirmed: dto.AffectedPeople.Confirmed,
		},
		RequiredResources: resourcesToModel(dto.RequiredResources),
	}
}

// UpdateRequestToModel преобразует DTO обновления в частичное изменение
func UpdateRequestToModel(dto UpdateIncidentRequest) models.IncidentUpdate {
	update := models.IncidentUpdate{
		Title:             dto.Title,
		Description:       dto.Description,
		AssignedTeam:      dto.AssignedTeam,
		RequiredResources: resourcesToModel(dto.RequiredResources),
	}
	if dto.Status != nil {
		status := models.IncidentStatus(*dto.Status)
		update.Status = &status
	}
	if dto.Priority != nil {
		priority := models.Priority(*dto.Priority)
		update.Priority = &priority
	}
	if dto.Severity != nil {
		severity := models.Severity(*dto.Severity)
		update.Severity = &severity
	}
	if dto.AffectedPeople != nil {
		update.AffectedPeople = &models.AffectedPeople{
			Estimated: dto.AffectedPeople.Estimated,
			Confirmed: dto.AffectedPeople.Confirmed,
		}
	}
	return update
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	updates := make([]LiveUpdateResponse, len(model.LiveUpdates))
	for i, u := range model.LiveUpdates {
		updates[i] = LiveUpdateResponse{Update: u.Update, UpdatedBy: u.UpdatedBy, Timestamp: u.Timestamp}
	}

	var resources []RequiredResourceDTO
	if len(model.RequiredResources) > 0 {
		resources = make([]RequiredResourceDTO, len(model.RequiredResources))
		for i, r := range model.RequiredResources {
			resources[i] = RequiredResourceDTO{Resource: r.Resource, Quantity: r.Quantity, Status: string(r.Status)}
		}
	}

	return &IncidentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Type:        string(model.Type),
		Status:      string(model.Status),
		Priority:    string(model.Priority),
		Severity:    string(model.Severity),
		Location: LocationDTO{
			Latitude:  model.Location.Latitude,
			Longitude: model.Location.Longitude,
			Address:   model.Location.Address,
		},
		ReportedBy:        model.ReportedBy,
		AssignedTeam:      model.AssignedTeam,
		LiveUpdates:       updates,
		AffectedPeople:    AffectedPeopleDTO{Estimated: model.AffectedPeople.Estimated, Confirmed: model.AffectedPeople.Confirmed},
		RequiredResources: resources,
		ResolvedAt:        model.ResolvedAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func resourcesToModel(dtos []RequiredResourceDTO) []models.RequiredResource {
	if dtos == nil {
		return nil
	}
	resources := make([]models.RequiredResource, len(dtos))
	for i, dto := range dtos {
		status := models.ResourceStatus(dto.Status)
		if status == "" {
			status = models.ResourceRequested
		}
		resources[i] = models.RequiredResource{Resource: dto.Resource, Quantity: dto.Quantity, Status: status}
	}
	return resources
}

// ModelToUserResponse преобразует пользователя в DTO для ответа
func ModelToUserResponse(model *models.User) *UserResponse {
	return &UserResponse{
		ID:       model.ID,
		Username: model.Username,
		Email:    model.Email,
		Role:     string(model.Role),
		Profile: ProfileDTO{
			FirstName: model.Profile.FirstName,
			LastName:  model.Profile.LastName,
			Phone:     model.Profile.Phone,
		},
		CreatedAt: model.CreatedAt,
	}
}

// ModelsToUserResponses преобразует слайс пользователей в слайс DTO
func ModelsToUserResponses(users []*models.User) []*UserResponse {
	responses := make([]*UserResponse, len(users))
	for i, user := range users {
		responses[i] = ModelToUserResponse(user)
	}
	return responses
}

// UpdateUserRequestToModel преобразует DTO изменения пользователя
func UpdateUserRequestToModel(dto UpdateUserRequest) models.UserUpdate {
	var update models.UserUpdate
	if dto.Profile != nil {
		update.Profile = &models.Profile{
			FirstName: dto.Profile.FirstName,
			LastName:  dto.Profile.LastName,
			Phone:     dto.Profile.Phone,
		}
	}
	if dto.Role != nil {
		role := models.Role(*dto.Role)
		update.Role = &role
	}
	return update
}
