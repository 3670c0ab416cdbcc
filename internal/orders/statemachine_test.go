package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/dbtest"
	"github.com/pedro5g/forfly/internal/models"
	"github.com/pedro5g/forfly/internal/orders"
	"github.com/pedro5g/forfly/internal/repo"
)

func statusOf(t *testing.T, store *repo.OrderStore, orderID, restaurantID string) models.OrderStatus {
	t.Helper()
	o, err := store.FindByOrderIDAndRestaurantID(context.Background(), orderID, restaurantID)
	require.NoError(t, err)
	return o.Status
}

func TestStateMachineHappyPath(t *testing.T) {
	testDB := dbtest.Open(t)
	ctx := context.Background()
	store := repo.NewOrderStore(testDB)
	sm := orders.NewStateMachine(store)

	_, restaurant := dbtest.SeedManager(t, testDB, "Maria", "maria@example.com")
	order := dbtest.SeedOrder(t, testDB, models.Order{RestaurantID: restaurant.ID})

	require.NoError(t, sm.ApproveOrder(ctx, order.ID, restaurant.ID))
	assert.Equal(t, models.StatusProcessing, statusOf(t, store, order.ID, restaurant.ID))

	require.NoError(t, sm.DispatchOrder(ctx, order.ID, restaurant.ID))
	assert.Equal(t, models.StatusDelivering, statusOf(t, store, order.ID, restaurant.ID))

	require.NoError(t, sm.DeliverOrder(ctx, order.ID, restaurant.ID))
	assert.Equal(t, models.StatusDelivered, statusOf(t, store, order.ID, restaurant.ID))

	t.Run("Delivered is terminal", func(t *testing.T) {
		for _, action := range []orders.Action{orders.ActionApprove, orders.ActionDispatch, orders.ActionDeliver, orders.ActionCancel} {
			err := sm.Apply(ctx, action, order.ID, restaurant.ID)
			assert.ErrorIs(t, err, core.ErrInvalidTransition, string(action))
		}
		assert.Equal(t, models.StatusDelivered, statusOf(t, store, order.ID, restaurant.ID))
	})
}

func TestStateMachineRejectsOutOfOrder(t *testing.T) {
	testDB := dbtest.Open(t)
	ctx := context.Background()
	store := repo.NewOrderStore(testDB)
	sm := orders.NewStateMachine(store)

	_, restaurant := dbtest.SeedManager(t, testDB, "Maria", "maria@example.com")

	cases := []struct {
		name    string
		from    models.OrderStatus
		action  orders.Action
		message string
	}{
		{"dispatch pending", models.StatusPending, orders.ActionDispatch, `You cannot dispatch orders that are not in "processing" status`},
		{"deliver processing", models.StatusProcessing, orders.ActionDeliver, `You cannot deliver orders that are not in "delivering" status`},
		{"approve processing", models.StatusProcessing, orders.ActionApprove, "You can only approve pending orders"},
		{"cancel delivering", models.StatusDelivering, orders.ActionCancel, "You cannot cancel orders after dispatch"},
		{"approve canceled", models.StatusCanceled, orders.ActionApprove, "You can only approve pending orders"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := dbtest.SeedOrder(t, testDB, models.Order{RestaurantID: restaurant.ID, Status: tc.from})

			err := sm.Apply(ctx, tc.action, order.ID, restaurant.ID)
			require.ErrorIs(t, err, core.ErrInvalidTransition)

			var te *orders.TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.message, te.Message)
			assert.Equal(t, tc.from, te.Current)
			assert.Equal(t, tc.from, statusOf(t, store, order.ID, restaurant.ID))
		})
	}
}

func TestCancelOrder(t *testing.T) {
	testDB := dbtest.Open(t)
	ctx := context.Background()
	store := repo.NewOrderStore(testDB)
	sm := orders.NewStateMachine(store)

	_, restaurant := dbtest.SeedManager(t, testDB, "Maria", "maria@example.com")

	for _, from := range []models.OrderStatus{models.StatusPending, models.StatusProcessing} {
		order := dbtest.SeedOrder(t, testDB, models.Order{RestaurantID: restaurant.ID, Status: from})
		require.NoError(t, sm.CancelOrder(ctx, order.ID, restaurant.ID), string(from))
		assert.Equal(t, models.StatusCanceled, statusOf(t, store, order.ID, restaurant.ID))
	}

	for _, from := range []models.OrderStatus{models.StatusDelivering, models.StatusDelivered, models.StatusCanceled} {
		order := dbtest.SeedOrder(t, testDB, models.Order{RestaurantID: restaurant.ID, Status: from})
		assert.ErrorIs(t, sm.CancelOrder(ctx, order.ID, restaurant.ID), core.ErrInvalidTransition, string(from))
		assert.Equal(t, from, statusOf(t, store, order.ID, restaurant.ID))
	}
}

func TestStateMachineNotFound(t *testing.T) {
	testDB := dbtest.Open(t)
	ctx := context.Background()
	store := repo.NewOrderStore(testDB)
	sm := orders.NewStateMachine(store)

	_, restaurant := dbtest.SeedManager(t, testDB, "Maria", "maria@example.com")
	_, other := dbtest.SeedManager(t, testDB, "John", "john@example.com")
	order := dbtest.SeedOrder(t, testDB, models.Order{RestaurantID: restaurant.ID})

	t.Run("Unknown order", func(t *testing.T) {
		err := sm.ApproveOrder(ctx, "00000000-0000-0000-0000-000000000000", restaurant.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Order of another restaurant is untouched", func(t *testing.T) {
		err := sm.ApproveOrder(ctx, order.ID, other.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, models.StatusPending, statusOf(t, store, order.ID, restaurant.ID))
	})

	t.Run("Unknown action", func(t *testing.T) {
		err := sm.Apply(ctx, orders.Action("refund"), order.ID, restaurant.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestStaleApproveLoses(t *testing.T) {
	testDB := dbtest.Open(t)
	ctx := context.Background()
	store := repo.NewOrderStore(testDB)
	sm := orders.NewStateMachine(store)

	_, restaurant := dbtest.SeedManager(t, testDB, "Maria", "maria@example.com")
	order := dbtest.SeedOrder(t, testDB, models.Order{RestaurantID: restaurant.ID})

	// a cancel lands between a reader seeing "pending" and its approve
	require.NoError(t, sm.CancelOrder(ctx, order.ID, restaurant.ID))
	assert.ErrorIs(t, sm.ApproveOrder(ctx, order.ID, restaurant.ID), core.ErrInvalidTransition)
	assert.Equal(t, models.StatusCanceled, statusOf(t, store, order.ID, restaurant.ID))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, orders.CanTransition(orders.ActionApprove, models.StatusPending))
	assert.True(t, orders.CanTransition(orders.ActionCancel, models.StatusProcessing))
	assert.False(t, orders.CanTransition(orders.ActionCancel, models.StatusDelivering))
	assert.False(t, orders.CanTransition(orders.ActionDeliver, models.StatusProcessing))
	assert.False(t, orders.CanTransition(orders.Action("refund"), models.StatusPending))
}
