package service

import (
	"context"
	"strings"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/dto"
	"hanna-ai/internal/model"
	"hanna-ai/internal/repository"
)

type ProfileService struct {
	users repository.UserRepository
}

func NewProfileService(users repository.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// Get 没有资料时返回只有 uid 的空资料
func (s *ProfileService) Get(ctx context.Context, uid string) (*dto.ProfileResp, error) {
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return &dto.ProfileResp{UID: uid}, nil
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load profile", err)
	}
	return toProfileResp(u), nil
}

func (s *ProfileService) Update(ctx context.Context, uid string, req dto.UpdateProfileReq) (*dto.ProfileResp, error) {
	agentID := strings.TrimSpace(req.AgentID)
	if agentID != "" && (len(agentID) > maxAgentIDLen || !agentIDPattern.MatchString(agentID)) {
		return nil, apperr.New(apperr.ErrValidation, "Invalid agent ID format")
	}

	u := &model.User{
		UID:         uid,
		Email:       strings.TrimSpace(req.Email),
		DisplayName: strings.TrimSpace(req.DisplayName),
		AgentID:     agentID,
		FolderID:    strings.TrimSpace(req.FolderID),
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "save profile", err)
	}
	return toProfileResp(u), nil
}

func toProfileResp(u *model.User) *dto.ProfileResp {
	return &dto.ProfileResp{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AgentID:     u.AgentID,
		FolderID:    u.FolderID,
	}
}
