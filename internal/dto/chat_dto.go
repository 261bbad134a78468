package dto

// ChatReq 前端发送的一条消息
type ChatReq struct {
	Message string `json:"message" binding:"required"`
	// 不传则用个人资料里的智能体，再不行用默认智能体
	AgentID string `json:"agent_id"`
}

type ChatResp struct {
	Message string `json:"message"`
}
