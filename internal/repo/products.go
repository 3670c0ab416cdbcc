package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/models"
)

type ProductInput struct {
	Name         string
	Description  *string
	PriceInCents int64
	Available    bool
}

type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Create(ctx context.Context, restaurantID string, in ProductInput) (*models.Product, error) {
	product := models.Product{
		RestaurantID: restaurantID,
		Name:         in.Name,
		Description:  in.Description,
		PriceInCents: in.PriceInCents,
		Available:    in.Available,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductStore) List(ctx context.Context, restaurantID string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("name").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) Get(ctx context.Context, productID, restaurantID string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", productID, restaurantID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update changes catalogue data only; prices already on orders are snapshots.
func (s *ProductStore) Update(ctx context.Context, productID, restaurantID string, in ProductInput) (*models.Product, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND restaurant_id = ?", productID, restaurantID).
		Updates(map[string]interface{}{
			"name":           in.Name,
			"description":    in.Description,
			"price_in_cents": in.PriceInCents,
			"available":      in.Available,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, core.ErrNotFound
	}
	return s.Get(ctx, productID, restaurantID)
}

// Delete removes the product and detaches it from past order items, which
// keep their price snapshot.
func (s *ProductStore) Delete(ctx context.Context, productID, restaurantID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.Where("id = ? AND restaurant_id = ?", productID, restaurantID).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&models.OrderItem{}).
			Where("product_id = ?", product.ID).
			Update("product_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
}
