package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/models"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "email = ?", email)
}

// FindByEmailAndRole narrows FindByEmail to one kind of user.
func (s *UserStore) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	return s.findOne(ctx, "email = ? AND role = ?", email, role)
}

// RegisterCustomer creates a customer, refusing e-mails already in use.
func (s *UserStore) RegisterCustomer(ctx context.Context, name, email string, phone *string) (*models.User, error) {
	user := models.User{Name: name, Email: email, Phone: phone, Role: models.RoleCustomer}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email); err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureEmailFree(tx *gorm.DB, email string) error {
	var n int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return core.ErrEmailTaken
	}
	return nil
}
