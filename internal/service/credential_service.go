package service

import (
	"context"
	"strings"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/dto"
	"hanna-ai/internal/model"
	"hanna-ai/internal/repository"
	"hanna-ai/internal/utils"
)

// CodeExchanger 用 OAuth 授权码换 refresh token
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}

// CredentialService 管理用户的 Google Drive 授权
type CredentialService struct {
	repo      repository.CredentialRepository
	sealer    *utils.Sealer
	exchanger CodeExchanger
}

func NewCredentialService(repo repository.CredentialRepository, sealer *utils.Sealer, exchanger CodeExchanger) *CredentialService {
	return &CredentialService{repo: repo, sealer: sealer, exchanger: exchanger}
}

// Save 保存授权：refresh_token 和 code 二选一
func (s *CredentialService) Save(ctx context.Context, userID string, req dto.GoogleCredentialReq) error {
	// 1. 取得 refresh token
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		code := strings.TrimSpace(req.Code)
		if code == "" {
			return apperr.New(apperr.ErrValidation, "refresh_token or code is required")
		}
		if s.exchanger == nil {
			return apperr.New(apperr.ErrValidation, "authorization code exchange is not configured, send refresh_token")
		}
		var err error
		if token, err = s.exchanger.Exchange(ctx, code); err != nil {
			return err
		}
	}

	// 2. 加密
	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "seal refresh token", err)
	}

	// 3. 落库
	if err := s.repo.Save(ctx, &model.UserCredential{UserID: userID, SealedRefreshToken: sealed}); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "save credential", err)
	}
	return nil
}

// Resolve 取出明文 refresh token。没有授权或解不开都算 AUTH_ERROR
func (s *CredentialService) Resolve(ctx context.Context, userID string) (string, error) {
	cred, err := s.repo.Get(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return "", apperr.Wrap(apperr.ErrAuth, "google drive is not connected", err)
		}
		return "", apperr.Wrap(apperr.ErrInternal, "load credential", err)
	}
	token, err := s.sealer.Open(cred.SealedRefreshToken)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrAuth, "stored google credential is unreadable, reconnect google drive", err)
	}
	return token, nil
}
