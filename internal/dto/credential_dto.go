package dto

// GoogleCredentialReq 二选一：直接给 refresh token，或给 OAuth 授权码由后端换取
type GoogleCredentialReq struct {
	RefreshToken string `json:"refresh_token"`
	Code         string `json:"code"`
}
