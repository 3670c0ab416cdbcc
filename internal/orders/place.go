package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/logging"
	"github.com/pedro5g/forfly/internal/models"
	"github.com/pedro5g/forfly/internal/repo"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, restaurantID string, customerID *string, items []repo.ItemInput) (*models.Order, error)
	FindByOrderIDAndRestaurantID(ctx context.Context, orderID, restaurantID string) (*models.Order, error)
}

// IdempotencyStore remembers which order an idempotency key produced.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	Forget(ctx context.Context, scope, key string) error
}

type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.Order)
}

type PlaceOrderInput struct {
	RestaurantID   string
	CustomerID     *string
	Items          []repo.ItemInput
	IdempotencyKey string
}

type PlaceOrder struct {
	store  OrderCreator
	idem   IdempotencyStore
	notify Notifier
	log    *slog.Logger
}

// NewPlaceOrder wires order creation. idem and notify may be nil.
func NewPlaceOrder(store OrderCreator, idem IdempotencyStore, notify Notifier) *PlaceOrder {
	return &PlaceOrder{store: store, idem: idem, notify: notify, log: logging.New("orders")}
}

// Execute creates the order. With an idempotency key, a repeated request
// returns the order the first one created (replayed = true).
func (p *PlaceOrder) Execute(ctx context.Context, in PlaceOrderInput) (order *models.Order, replayed bool, err error) {
	useIdem := p.idem != nil && in.IdempotencyKey != ""

	if useIdem {
		id, ok, err := p.idem.Recall(ctx, in.RestaurantID, in.IdempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("idempotency recall: %w", err)
		}
		if ok {
			order, err := p.store.FindByOrderIDAndRestaurantID(ctx, id, in.RestaurantID)
			if err != nil {
				return nil, false, err
			}
			return order, true, nil
		}
		locked, err := p.idem.TryLock(ctx, in.RestaurantID, in.IdempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("idempotency lock: %w", err)
		}
		if !locked {
			return nil, false, core.ErrDuplicateRequest
		}
	}

	order, err = p.store.CreateOrder(ctx, in.RestaurantID, in.CustomerID, in.Items)
	if err != nil {
		if useIdem {
			_ = p.idem.Forget(ctx, in.RestaurantID, in.IdempotencyKey)
		}
		return nil, false, err
	}

	if useIdem {
		if err := p.idem.Remember(ctx, in.RestaurantID, in.IdempotencyKey, order.ID); err != nil {
			p.log.Warn("idempotency remember failed", "order_id", order.ID, "error", err)
		}
	}

	p.log.Info("order placed", "order_id", order.ID, "restaurant_id", order.RestaurantID, "total_in_cents", order.TotalInCents)

	if p.notify != nil && order.CustomerID != nil {
		go p.notify.OrderPlaced(context.WithoutCancel(ctx), order)
	}
	return order, false, nil
}
