package repo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/models"
)

// MaxItemQuantity caps the quantity of a single order line.
const MaxItemQuantity = 10000

type ItemInput struct {
	ProductID string
	Quantity  int
}

type OrderFilter struct {
	OrderID      string
	CustomerName string
	Status       models.OrderStatus
}

// OrderSummary is one row of the order listing.
type OrderSummary struct {
	OrderID      string             `json:"orderId"`
	CreatedAt    time.Time          `json:"createdAt"`
	Status       models.OrderStatus `json:"status"`
	Total        int64              `json:"total"`
	CustomerName string             `json:"customerName"`
}

type CustomerSummary struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email string  `json:"email"`
}

type ProductSummary struct {
	Name string `json:"name"`
}

type OrderItemDetail struct {
	ID           string          `json:"id"`
	PriceInCents int64           `json:"priceInCents"`
	Quantity     int             `json:"quantity"`
	Product      *ProductSummary `json:"product"`
}

type OrderDetails struct {
	ID           string             `json:"id"`
	Status       models.OrderStatus `json:"status"`
	TotalInCents int64              `json:"totalInCents"`
	CreatedAt    time.Time          `json:"createdAt"`
	Customer     *CustomerSummary   `json:"customer"`
	OrderItems   []OrderItemDetail  `json:"orderItems"`
}

type OrderStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db, now: time.Now}
}

// WithClock replaces the creation-time source; used by tests.
func (s *OrderStore) WithClock(now func() time.Time) *OrderStore {
	s.now = now
	return s
}

// CreateOrder prices every item from the restaurant's current catalogue and
// inserts the order with its items in a single transaction.
func (s *OrderStore) CreateOrder(ctx context.Context, restaurantID string, customerID *string, items []ItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, core.ErrInvalidOrder
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 || it.Quantity > MaxItemQuantity {
			return nil, core.ErrInvalidOrder
		}
		ids = append(ids, it.ProductID)
	}

	order := models.Order{
		RestaurantID: restaurantID,
		CustomerID:   customerID,
		Status:       models.StatusPending,
		CreatedAt:    s.now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if customerID != nil {
			var n int64
			if err := tx.Model(&models.User{}).Where("id = ?", *customerID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("customer %s: %w", *customerID, core.ErrNotFound)
			}
		}

		var products []models.Product
		if err := tx.Where("restaurant_id = ? AND id IN ?", restaurantID, ids).Find(&products).Error; err != nil {
			return err
		}
		prices := make(map[string]int64, len(products))
		for _, p := range products {
			prices[p.ID] = p.PriceInCents
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		var total int64
		for _, it := range items {
			price, ok := prices[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: %s", core.ErrProductNotFound, it.ProductID)
			}
			productID := it.ProductID
			orderItems = append(orderItems, models.OrderItem{
				ProductID:    &productID,
				PriceInCents: price,
				Quantity:     it.Quantity,
			})
			qty := int64(it.Quantity)
			if price < 0 || price > math.MaxInt64/qty {
				return fmt.Errorf("%w: line total out of range", core.ErrInvalidOrder)
			}
			line := price * qty
			if total > math.MaxInt64-line {
				return fmt.Errorf("%w: order total out of range", core.ErrInvalidOrder)
			}
			total += line
		}
		order.TotalInCents = total

		if err := tx.Omit("Items").Create(&order).Error; err != nil {
			return err
		}
		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.CreateInBatches(&orderItems, len(orderItems)).Error; err != nil {
			return err
		}
		order.Items = orderItems
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) FindByOrderIDAndRestaurantID(ctx context.Context, orderID, restaurantID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) GetOrderWithDetails(ctx context.Context, orderID, restaurantID string) (*OrderDetails, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	details := &OrderDetails{
		ID:           order.ID,
		Status:       order.Status,
		TotalInCents: order.TotalInCents,
		CreatedAt:    order.CreatedAt,
		OrderItems:   make([]OrderItemDetail, 0, len(order.Items)),
	}
	if order.Customer != nil {
		details.Customer = &CustomerSummary{
			Name:  order.Customer.Name,
			Phone: order.Customer.Phone,
			Email: order.Customer.Email,
		}
	}
	for _, it := range order.Items {
		item := OrderItemDetail{ID: it.ID, PriceInCents: it.PriceInCents, Quantity: it.Quantity}
		if it.Product != nil {
			item.Product = &ProductSummary{Name: it.Product.Name}
		}
		details.OrderItems = append(details.OrderItems, item)
	}
	return details, nil
}

// UpdateStatusIf moves the order to `to` only if its current status is one of
// `from`. The check and the write are one statement, so of two concurrent
// callers starting from the same status only one can win.
func (s *OrderStore) UpdateStatusIf(ctx context.Context, orderID, restaurantID string, from []models.OrderStatus, to models.OrderStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND restaurant_id = ? AND status IN ?", orderID, restaurantID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *OrderStore) filtered(ctx context.Context, restaurantID string, f OrderFilter) *gorm.DB {
	q := s.db.WithContext(ctx).
		Table("orders").
		Joins("INNER JOIN users ON users.id = orders.customer_id").
		Where("orders.restaurant_id = ?", restaurantID)
	if f.OrderID != "" {
		q = q.Where("orders.id = ?", f.OrderID)
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.CustomerName != "" {
		q = q.Where(`LOWER(users.name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.CustomerName))+"%")
	}
	return q
}

const statusRank = `CASE orders.status
	WHEN 'pending' THEN 1
	WHEN 'processing' THEN 2
	WHEN 'delivering' THEN 3
	WHEN 'delivered' THEN 4
	WHEN 'canceled' THEN 99
END`

// ListOrders returns one page of the filtered orders, open statuses first and
// newest first within a status.
func (s *OrderStore) ListOrders(ctx context.Context, restaurantID string, f OrderFilter, limit, offset int) ([]OrderSummary, error) {
	rows := make([]OrderSummary, 0, limit)
	err := s.filtered(ctx, restaurantID, f).
		Select("orders.id AS order_id, orders.created_at AS created_at, orders.status AS status, orders.total_in_cents AS total, users.name AS customer_name").
		Order(statusRank).
		Order("orders.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *OrderStore) CountOrders(ctx context.Context, restaurantID string, f OrderFilter) (int64, error) {
	var n int64
	if err := s.filtered(ctx, restaurantID, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
