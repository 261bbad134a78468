package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/model"
)

type CredentialRepository interface {
	Get(ctx context.Context, userID string) (*model.UserCredential, error)
	Save(ctx context.Context, cred *model.UserCredential) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Get(ctx context.Context, userID string) (*model.UserCredential, error) {
	var cred model.UserCredential
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "google drive is not connected", err)
		}
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Save(ctx context.Context, cred *model.UserCredential) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sealed_refresh_token", "updated_at"}),
	}).Create(cred).Error
}
