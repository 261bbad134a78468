package service

import (
	"context"
	"strings"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/dto"
	"hanna-ai/internal/knowledge"
	"hanna-ai/internal/repository"
)

// ChatService 把用户的一条消息转发给知识库智能体
type ChatService struct {
	kb           knowledge.Provider
	users        repository.UserRepository
	defaultAgent string
}

func NewChatService(kb knowledge.Provider, users repository.UserRepository, defaultAgent string) *ChatService {
	return &ChatService{kb: kb, users: users, defaultAgent: defaultAgent}
}

func (s *ChatService) Chat(ctx context.Context, userID string, req dto.ChatReq) (*dto.ChatResp, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, apperr.New(apperr.ErrValidation, "message is required")
	}

	// 1. 确定智能体：请求 > 个人资料 > 默认
	agentID := strings.TrimSpace(req.AgentID)
	if agentID == "" {
		if u, err := s.users.Get(ctx, userID); err == nil {
			agentID = u.AgentID
		} else if !apperr.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Wrap(apperr.ErrInternal, "load profile", err)
		}
	}
	if agentID == "" {
		agentID = s.defaultAgent
	}
	if agentID == "" {
		return nil, apperr.New(apperr.ErrValidation, "no agent configured, set agent_id in your profile")
	}

	// 2. 转发
	answer, err := s.kb.Chat(ctx, agentID, msg)
	if err != nil {
		return nil, err
	}
	return &dto.ChatResp{Message: answer}, nil
}
