package service

import (
	"context"

	"worknow/internal/domain"
	"worknow/internal/models"

	"github.com/rs/zerolog"
)

// StateService tracks where each booking session is in the selection flow.
type StateService struct {
	stateRepo domain.SessionRepository
	logger    *zerolog.Logger
}

func NewStateService(stateRepo domain.SessionRepository, logger *zerolog.Logger) *StateService {
	return &StateService{stateRepo: stateRepo, logger: logger}
}

func (s *StateService) GetSessionState(ctx context.Context, sessionID string) (*models.SessionState, error) {
	state, err := s.stateRepo.GetState(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get session state")
		return nil, err
	}
	return state, nil
}

func (s *StateService) SetSessionState(ctx context.Context, sessionID string, step string, data map[string]interface{}) error {
	return s.stateRepo.SetState(ctx, &models.SessionState{
		SessionID:   sessionID,
		CurrentStep: step,
		TempData:    data,
	})
}

func (s *StateService) ClearSessionState(ctx context.Context, sessionID string) error {
	return s.stateRepo.ClearState(ctx, sessionID)
}
