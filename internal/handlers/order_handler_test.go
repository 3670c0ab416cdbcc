package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedro5g/forfly/internal/dbtest"
	"github.com/pedro5g/forfly/internal/models"
)

func TestCreateOrderHandler(t *testing.T) {
	srv := setupTestRouter(t)

	manager, restaurant := dbtest.SeedManager(t, srv.db, "Maria", "maria@example.com")
	customer := dbtest.SeedCustomer(t, srv.db, "Ana", "ana@example.com")
	pizza := dbtest.SeedProduct(t, srv.db, restaurant.ID, "Pizza", 490)
	soda := dbtest.SeedProduct(t, srv.db, restaurant.ID, "Soda", 300)

	t.Run("Successfully creates an order", func(t *testing.T) {
		body := map[string]interface{}{
			"customerId": customer.ID,
			"items": []map[string]interface{}{
				{"productId": pizza.ID, "quantity": 2},
				{"productId": soda.ID, "quantity": 1},
			},
		}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPost, "/orders", body, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		var response struct {
			OrderID      string `json:"orderId"`
			TotalInCents int64  `json:"totalInCents"`
		}
		decode(t, recorder, &response)
		assert.Equal(t, int64(1280), response.TotalInCents)

		var stored models.Order
		srv.db.Preload("Items").First(&stored, "id = ?", response.OrderID)
		assert.Equal(t, restaurant.ID, stored.RestaurantID)
		assert.Len(t, stored.Items, 2)
	})

	t.Run("Returns 401 without a session", func(t *testing.T) {
		recorder := srv.performRequest(createRequest(http.MethodPost, "/orders", map[string]interface{}{}))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Returns 400 for an empty item list", func(t *testing.T) {
		body := map[string]interface{}{"items": []interface{}{}}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPost, "/orders", body, manager.ID, restaurant.ID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Returns 400 for a quantity above the cap", func(t *testing.T) {
		body := map[string]interface{}{
			"items": []map[string]interface{}{{"productId": pizza.ID, "quantity": 10001}},
		}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPost, "/orders", body, manager.ID, restaurant.ID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Returns 400 for an unknown product and stores nothing", func(t *testing.T) {
		var before int64
		srv.db.Model(&models.Order{}).Count(&before)

		body := map[string]interface{}{
			"items": []map[string]interface{}{
				{"productId": pizza.ID, "quantity": 1},
				{"productId": "00000000-0000-0000-0000-000000000000", "quantity": 1},
			},
		}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPost, "/orders", body, manager.ID, restaurant.ID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var after int64
		srv.db.Model(&models.Order{}).Count(&after)
		assert.Equal(t, before, after)
	})
}

func TestOrderTransitionHandlers(t *testing.T) {
	srv := setupTestRouter(t)

	manager, restaurant := dbtest.SeedManager(t, srv.db, "Maria", "maria@example.com")
	_, other := dbtest.SeedManager(t, srv.db, "John", "john@example.com")
	order := dbtest.SeedOrder(t, srv.db, models.Order{RestaurantID: restaurant.ID})

	patch := func(action string, restaurantID string) (int, map[string]string) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodPatch, "/orders/"+order.ID+"/"+action, nil, manager.ID, restaurantID)
		var body map[string]string
		if recorder.Body.Len() > 0 {
			decode(t, recorder, &body)
		}
		return recorder.Code, body
	}

	code, body := patch("dispatch", restaurant.ID)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, `You cannot dispatch orders that are not in "processing" status`, body["error"])

	code, _ = patch("approve", other.ID)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = patch("approve", restaurant.ID)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = patch("approve", restaurant.ID)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You can only approve pending orders", body["error"])

	code, _ = patch("dispatch", restaurant.ID)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = patch("cancel", restaurant.ID)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You cannot cancel orders after dispatch", body["error"])

	code, _ = patch("deliver", restaurant.ID)
	assert.Equal(t, http.StatusNoContent, code)

	var stored models.Order
	srv.db.First(&stored, "id = ?", order.ID)
	assert.Equal(t, models.StatusDelivered, stored.Status)

	t.Run("Malformed id", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodPatch, "/orders/123/approve", nil, manager.ID, restaurant.ID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestGetOrderHandler(t *testing.T) {
	srv := setupTestRouter(t)

	manager, restaurant := dbtest.SeedManager(t, srv.db, "Maria", "maria@example.com")
	_, other := dbtest.SeedManager(t, srv.db, "John", "john@example.com")
	customer := dbtest.SeedCustomer(t, srv.db, "Ana", "ana@example.com")
	order := dbtest.SeedOrder(t, srv.db, models.Order{RestaurantID: restaurant.ID, CustomerID: &customer.ID, TotalInCents: 0})

	t.Run("Returns the order with its customer", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodGet, "/orders/"+order.ID, nil, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			Customer struct {
				Name string `json:"name"`
			} `json:"customer"`
			OrderItems []interface{} `json:"orderItems"`
		}
		decode(t, recorder, &response)
		assert.Equal(t, order.ID, response.ID)
		assert.Equal(t, "pending", response.Status)
		assert.Equal(t, "Ana", response.Customer.Name)
		assert.NotNil(t, response.OrderItems)
	})

	t.Run("Other restaurant gets Order not found", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodGet, "/orders/"+order.ID, nil, manager.ID, other.ID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)

		var response map[string]string
		decode(t, recorder, &response)
		assert.Equal(t, "Order not found", response["error"])
	})
}

func TestListOrdersHandler(t *testing.T) {
	srv := setupTestRouter(t)

	manager, restaurant := dbtest.SeedManager(t, srv.db, "Maria", "maria@example.com")
	ana := dbtest.SeedCustomer(t, srv.db, "Ana", "ana@example.com")
	john := dbtest.SeedCustomer(t, srv.db, "John", "john@example.com")
	dbtest.SeedOrder(t, srv.db, models.Order{RestaurantID: restaurant.ID, CustomerID: &ana.ID})
	dbtest.SeedOrder(t, srv.db, models.Order{RestaurantID: restaurant.ID, CustomerID: &john.ID, Status: models.StatusCanceled})

	type listResponse struct {
		Orders []struct {
			OrderID      string `json:"orderId"`
			CustomerName string `json:"customerName"`
			Status       string `json:"status"`
		} `json:"orders"`
		Meta struct {
			PageIndex  int   `json:"pageIndex"`
			PerPage    int   `json:"perPage"`
			TotalCount int64 `json:"totalCount"`
		} `json:"meta"`
	}

	t.Run("Lists with paging meta", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodGet, "/orders", nil, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusOK, recorder.Code)

		var response listResponse
		decode(t, recorder, &response)
		require.Len(t, response.Orders, 2)
		assert.Equal(t, "pending", response.Orders[0].Status)
		assert.Equal(t, 1, response.Meta.PageIndex)
		assert.Equal(t, 10, response.Meta.PerPage)
		assert.Equal(t, int64(2), response.Meta.TotalCount)
	})

	t.Run("Filters by customer name", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodGet, "/orders?customerName=JOH", nil, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusOK, recorder.Code)

		var response listResponse
		decode(t, recorder, &response)
		require.Len(t, response.Orders, 1)
		assert.Equal(t, "John", response.Orders[0].CustomerName)
	})

	t.Run("Huge page index is an empty page", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodGet, "/orders?pageIndex=922337203685477582", nil, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusOK, recorder.Code)

		var response listResponse
		decode(t, recorder, &response)
		assert.Empty(t, response.Orders)
		assert.Equal(t, int64(2), response.Meta.TotalCount)
	})

	t.Run("Rejects an unknown status", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodGet, "/orders?status=lost", nil, manager.ID, restaurant.ID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
