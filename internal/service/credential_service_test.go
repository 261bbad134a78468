package service

import (
	"context"
	"testing"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/dto"
	"hanna-ai/internal/model"
	"hanna-ai/internal/repository"
	"hanna-ai/internal/utils"
)

type stubExchanger struct {
	codes map[string]string
}

func (s stubExchanger) Exchange(ctx context.Context, code string) (string, error) {
	if tok, ok := s.codes[code]; ok {
		return tok, nil
	}
	return "", apperr.New(apperr.ErrAuth, "exchange google authorization code")
}

func newCredentialService(t *testing.T) (*CredentialService, repository.CredentialRepository) {
	t.Helper()
	repo := repository.NewCredentialRepository(newTestDB(t))
	sealer, err := utils.NewSealer("test-key")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	ex := stubExchanger{codes: map[string]string{"4/good-code": "1//from-code"}}
	return NewCredentialService(repo, sealer, ex), repo
}

func TestCredentialService_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCredentialService(t)

	if err := svc.Save(ctx, "u1", dto.GoogleCredentialReq{RefreshToken: " 1//direct "}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stored, _ := repo.Get(ctx, "u1")
	if stored.SealedRefreshToken == "1//direct" {
		t.Error("refresh token stored in plain text")
	}

	tok, err := svc.Resolve(ctx, "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tok != "1//direct" {
		t.Errorf("Resolve = %q", tok)
	}
}

func TestCredentialService_SaveCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCredentialService(t)

	if err := svc.Save(ctx, "u1", dto.GoogleCredentialReq{Code: "4/good-code"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tok, _ := svc.Resolve(ctx, "u1"); tok != "1//from-code" {
		t.Errorf("Resolve = %q", tok)
	}

	if err := svc.Save(ctx, "u1", dto.GoogleCredentialReq{Code: "bad"}); !apperr.Is(err, apperr.ErrAuth) {
		t.Errorf("bad code err = %v", err)
	}
	if err := svc.Save(ctx, "u1", dto.GoogleCredentialReq{}); !apperr.Is(err, apperr.ErrValidation) {
		t.Errorf("empty request err = %v", err)
	}
}

func TestCredentialService_ResolveFailures(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCredentialService(t)

	if _, err := svc.Resolve(ctx, "nobody"); !apperr.Is(err, apperr.ErrAuth) {
		t.Errorf("missing credential err = %v, want AUTH_ERROR", err)
	}

	_ = repo.Save(ctx, &model.UserCredential{UserID: "u2", SealedRefreshToken: "sealed-with-another-key"})
	if _, err := svc.Resolve(ctx, "u2"); !apperr.Is(err, apperr.ErrAuth) {
		t.Errorf("unreadable credential err = %v, want AUTH_ERROR", err)
	}
}

func TestCredentialService_NoExchanger(t *testing.T) {
	sealer, _ := utils.NewSealer("k")
	svc := NewCredentialService(repository.NewCredentialRepository(newTestDB(t)), sealer, nil)
	if err := svc.Save(context.Background(), "u1", dto.GoogleCredentialReq{Code: "c"}); !apperr.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}
