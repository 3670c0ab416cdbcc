package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/models"
)

type AuthLinkStore struct {
	db *gorm.DB
}

func NewAuthLinkStore(db *gorm.DB) *AuthLinkStore {
	return &AuthLinkStore{db: db}
}

func (s *AuthLinkStore) Insert(ctx context.Context, link *models.AuthLink) error {
	return s.db.WithContext(ctx).Create(link).Error
}

func (s *AuthLinkStore) FindByCode(ctx context.Context, code string) (*models.AuthLink, error) {
	var link models.AuthLink
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *AuthLinkStore) Delete(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Where("code = ?", code).Delete(&models.AuthLink{}).Error
}
