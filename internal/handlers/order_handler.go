package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedro5g/forfly/internal/auth"
	"github.com/pedro5g/forfly/internal/models"
	"github.com/pedro5g/forfly/internal/orders"
	"github.com/pedro5g/forfly/internal/repo"
)

const orderNotFound = "Order not found"

type OrderHandler struct {
	place   *orders.PlaceOrder
	store   *repo.OrderStore
	machine *orders.StateMachine
	query   *orders.QueryService
}

func NewOrderHandler(place *orders.PlaceOrder, store *repo.OrderStore, machine *orders.StateMachine, query *orders.QueryService) *OrderHandler {
	return &OrderHandler{place: place, store: store, machine: machine, query: query}
}

type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=10000"`
}

type CreateOrderRequest struct {
	CustomerID *string            `json:"customerId" binding:"omitempty,uuid"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]repo.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, repo.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, replayed, err := h.place.Execute(c.Request.Context(), orders.PlaceOrderInput{
		RestaurantID:   auth.RestaurantID(c),
		CustomerID:     req.CustomerID,
		Items:          items,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err, "Customer not found")
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"orderId": order.ID, "totalInCents": order.TotalInCents})
}

type listOrdersQuery struct {
	OrderID      string `form:"orderId"`
	CustomerName string `form:"customerName"`
	Status       string `form:"status"`
	PageIndex    int    `form:"pageIndex"`
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := models.OrderStatus(q.Status)
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	page := q.PageIndex
	if page < 1 {
		page = 1
	}

	res, err := h.query.ListOrders(c.Request.Context(), auth.RestaurantID(c), orders.ListParams{
		OrderID:      q.OrderID,
		CustomerName: q.CustomerName,
		Status:       status,
		PageIndex:    page,
	})
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": res.Orders,
		"meta": gin.H{
			"pageIndex":  page,
			"perPage":    orders.PageSize,
			"totalCount": res.TotalCount,
		},
	})
}

// GET /orders/:orderId
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("orderId")
	if !validID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": orderNotFound})
		return
	}
	details, err := h.store.GetOrderWithDetails(c.Request.Context(), id, auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Transition returns the handler for PATCH /orders/:orderId/<action>.
func (h *OrderHandler) Transition(action orders.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderId")
		if !validID(id) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		if err := h.machine.Apply(c.Request.Context(), action, id, auth.RestaurantID(c)); err != nil {
			respondError(c, err, orderNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
