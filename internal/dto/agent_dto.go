package dto

type CheckAgentReq struct {
	AgentID string `json:"agent_id"`
}

type CheckAgentResp struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}
