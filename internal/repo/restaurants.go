package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/models"
)

type RegisterRestaurantInput struct {
	ManagerName    string
	RestaurantName string
	Email          string
	Phone          *string
}

type RestaurantStore struct {
	db *gorm.DB
}

func NewRestaurantStore(db *gorm.DB) *RestaurantStore {
	return &RestaurantStore{db: db}
}

// Register creates the manager and the restaurant they run, or neither.
func (s *RestaurantStore) Register(ctx context.Context, in RegisterRestaurantInput) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, in.Email); err != nil {
			return err
		}
		manager := models.User{
			Name:  in.ManagerName,
			Email: in.Email,
			Phone: in.Phone,
			Role:  models.RoleManager,
		}
		if err := tx.Create(&manager).Error; err != nil {
			return err
		}
		restaurant = models.Restaurant{Name: in.RestaurantName, ManagerID: &manager.ID}
		return tx.Create(&restaurant).Error
	})
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (s *RestaurantStore) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *RestaurantStore) GetByManagerID(ctx context.Context, managerID string) (*models.Restaurant, error) {
	return s.findOne(ctx, "manager_id = ?", managerID)
}

func (s *RestaurantStore) UpdateProfile(ctx context.Context, id, name string, description *string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Restaurant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "description": description})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *RestaurantStore) findOne(ctx context.Context, query string, args ...interface{}) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.WithContext(ctx).Where(query, args...).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
