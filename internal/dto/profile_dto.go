package dto

type UpdateProfileReq struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AgentID     string `json:"agent_id"`
	FolderID    string `json:"folder_id"`
}

type ProfileResp struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AgentID     string `json:"agent_id"`
	FolderID    string `json:"folder_id"`
}
