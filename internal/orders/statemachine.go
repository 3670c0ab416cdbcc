package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/models"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionDispatch Action = "dispatch"
	ActionDeliver  Action = "deliver"
	ActionCancel   Action = "cancel"
)

type transition struct {
	from    []models.OrderStatus
	to      models.OrderStatus
	message string
}

var transitions = map[Action]transition{
	ActionApprove: {
		from:    []models.OrderStatus{models.StatusPending},
		to:      models.StatusProcessing,
		message: "You can only approve pending orders",
	},
	ActionDispatch: {
		from:    []models.OrderStatus{models.StatusProcessing},
		to:      models.StatusDelivering,
		message: `You cannot dispatch orders that are not in "processing" status`,
	},
	ActionDeliver: {
		from:    []models.OrderStatus{models.StatusDelivering},
		to:      models.StatusDelivered,
		message: `You cannot deliver orders that are not in "delivering" status`,
	},
	ActionCancel: {
		from:    []models.OrderStatus{models.StatusPending, models.StatusProcessing},
		to:      models.StatusCanceled,
		message: "You cannot cancel orders after dispatch",
	},
}

var statusTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transition attempts by action and result",
	},
	[]string{"action", "result"},
)

// TransitionError is returned when the order exists but is not in a status
// the action can start from. It matches core.ErrInvalidTransition.
type TransitionError struct {
	Action  Action
	Current models.OrderStatus
	Message string
}

func (e *TransitionError) Error() string { return e.Message }

func (e *TransitionError) Unwrap() error { return core.ErrInvalidTransition }

// StatusUpdater is the part of the order store the state machine needs.
type StatusUpdater interface {
	UpdateStatusIf(ctx context.Context, orderID, restaurantID string, from []models.OrderStatus, to models.OrderStatus) (bool, error)
	FindByOrderIDAndRestaurantID(ctx context.Context, orderID, restaurantID string) (*models.Order, error)
}

type StateMachine struct {
	store StatusUpdater
}

func NewStateMachine(store StatusUpdater) *StateMachine {
	return &StateMachine{store: store}
}

func (m *StateMachine) ApproveOrder(ctx context.Context, orderID, restaurantID string) error {
	return m.apply(ctx, ActionApprove, orderID, restaurantID)
}

func (m *StateMachine) DispatchOrder(ctx context.Context, orderID, restaurantID string) error {
	return m.apply(ctx, ActionDispatch, orderID, restaurantID)
}

func (m *StateMachine) DeliverOrder(ctx context.Context, orderID, restaurantID string) error {
	return m.apply(ctx, ActionDeliver, orderID, restaurantID)
}

func (m *StateMachine) CancelOrder(ctx context.Context, orderID, restaurantID string) error {
	return m.apply(ctx, ActionCancel, orderID, restaurantID)
}

// Apply runs the named action; unknown actions are reported as not found.
func (m *StateMachine) Apply(ctx context.Context, action Action, orderID, restaurantID string) error {
	if _, ok := transitions[action]; !ok {
		return fmt.Errorf("action %q: %w", action, core.ErrNotFound)
	}
	return m.apply(ctx, action, orderID, restaurantID)
}

func (m *StateMachine) apply(ctx context.Context, action Action, orderID, restaurantID string) error {
	tr := transitions[action]

	changed, err := m.store.UpdateStatusIf(ctx, orderID, restaurantID, tr.from, tr.to)
	if err != nil {
		statusTransitions.WithLabelValues(string(action), "error").Inc()
		return fmt.Errorf("%s order %s: %w", action, orderID, err)
	}
	if changed {
		statusTransitions.WithLabelValues(string(action), "ok").Inc()
		return nil
	}

	// Nothing matched: either the order is not ours or its status was wrong.
	order, err := m.store.FindByOrderIDAndRestaurantID(ctx, orderID, restaurantID)
	if errors.Is(err, core.ErrNotFound) {
		statusTransitions.WithLabelValues(string(action), "not_found").Inc()
		return err
	}
	if err != nil {
		statusTransitions.WithLabelValues(string(action), "error").Inc()
		return err
	}
	statusTransitions.WithLabelValues(string(action), "rejected").Inc()
	return &TransitionError{Action: action, Current: order.Status, Message: tr.message}
}

// CanTransition reports whether action may start from status.
func CanTransition(action Action, status models.OrderStatus) bool {
	tr, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range tr.from {
		if s == status {
			return true
		}
	}
	return false
}
