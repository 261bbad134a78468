// Package identity 校验前端带来的身份令牌，得到稳定的用户 ID。
package identity

import (
	"context"
	"fmt"

	"hanna-ai/internal/conf"
)

// Verifier token 无效或过期时返回 apperr.ErrAuth
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// New 按 auth.mode 选择实现
func New(ctx context.Context, cfg conf.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case "firebase":
		return NewFirebaseVerifier(ctx, cfg)
	case "jwt":
		return NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
