package mappers

import (
	"bizhub/internal/domain/session"
	"bizhub/internal/infrastructure/persistence/models"
)

// UserSessionMapper handles the conversion between session entities and rows.
type UserSessionMapper interface {
	ToModel(entity *session.UserSession) *models.UserSessionModel
	ToDomain(model *models.UserSessionModel) *session.UserSession
	ToDomainList(models []*models.UserSessionModel) []*session.UserSession
}

type UserSessionMapperImpl struct{}

func NewUserSessionMapper() UserSessionMapper {
	return &UserSessionMapperImpl{}
}

func (m *UserSessionMapperImpl) ToModel(entity *session.UserSession) *models.UserSessionModel {
	if entity == nil {
		return nil
	}
	var location *string
	if entity.Location != "" {
		loc := entity.Location
		location = &loc
	}
	return &models.UserSessionModel{
		ID:           entity.ID,
		SessionID:    entity.SessionID,
		UserID:       entity.UserID,
		IPAddress:    entity.IPAddress,
		UserAgent:    entity.UserAgent,
		DeviceType:   string(entity.DeviceType),
		DeviceName:   entity.DeviceName,
		Browser:      entity.Browser,
		Platform:     entity.Platform,
		Location:     location,
		IsCurrent:    entity.IsCurrent,
		LastActivity: entity.LastActivity,
		LoggedOutAt:  entity.LoggedOutAt,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func (m *UserSessionMapperImpl) ToDomain(model *models.UserSessionModel) *session.UserSession {
	if model == nil {
		return nil
	}
	s := &session.UserSession{
		ID:           model.ID,
		SessionID:    model.SessionID,
		UserID:       model.UserID,
		IPAddress:    model.IPAddress,
		UserAgent:    model.UserAgent,
		DeviceType:   session.DeviceType(model.DeviceType),
		DeviceName:   model.DeviceName,
		Browser:      model.Browser,
		Platform:     model.Platform,
		IsCurrent:    model.IsCurrent,
		LastActivity: model.LastActivity.UTC(),
		LoggedOutAt:  model.LoggedOutAt,
		CreatedAt:    model.CreatedAt.UTC(),
		UpdatedAt:    model.UpdatedAt.UTC(),
	}
	if model.Location != nil {
		s.Location = *model.Location
	}
	return s
}

func (m *UserSessionMapperImpl) ToDomainList(list []*models.UserSessionModel) []*session.UserSession {
	out := make([]*session.UserSession, 0, len(list))
	for _, model := range list {
		out = append(out, m.ToDomain(model))
	}
	return out
}
