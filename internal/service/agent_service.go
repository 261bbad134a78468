package service

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/dto"
	"hanna-ai/internal/knowledge"
)

const maxAgentIDLen = 50

var agentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// AgentService 检查智能体 ID 是否存在
type AgentService struct {
	kb     knowledge.Provider
	logger *zap.Logger
}

func NewAgentService(kb knowledge.Provider, logger *zap.Logger) *AgentService {
	return &AgentService{kb: kb, logger: logger.Named("agent")}
}

// Check 格式不对返回 VALIDATION_ERROR；探测失败不算错误，结果里 is_valid=false
func (s *AgentService) Check(ctx context.Context, req dto.CheckAgentReq) (*dto.CheckAgentResp, error) {
	if req.AgentID == "" {
		return nil, apperr.New(apperr.ErrValidation, "Agent ID is required")
	}
	// 只允许字母数字和 -_，拼出来的 URL 才不会指向别处
	if len(req.AgentID) > maxAgentIDLen || !agentIDPattern.MatchString(req.AgentID) {
		return nil, apperr.New(apperr.ErrValidation, "Invalid agent ID format")
	}

	res, err := s.kb.CheckAgent(ctx, req.AgentID)
	if err != nil {
		s.logger.Warn("check agent id", zap.String("agent_id", req.AgentID), zap.Error(err))
		return &dto.CheckAgentResp{IsValid: false, Error: "Network error checking agent ID"}, nil
	}
	return &dto.CheckAgentResp{IsValid: res.Valid, Error: res.Reason}, nil
}
