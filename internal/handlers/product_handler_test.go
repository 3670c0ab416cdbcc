package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedro5g/forfly/internal/dbtest"
	"github.com/pedro5g/forfly/internal/models"
)

func TestProductHandlers(t *testing.T) {
	srv := setupTestRouter(t)

	manager, restaurant := dbtest.SeedManager(t, srv.db, "Maria", "maria@example.com")
	_, other := dbtest.SeedManager(t, srv.db, "John", "john@example.com")

	var created models.Product

	t.Run("Creates a product", func(t *testing.T) {
		body := map[string]interface{}{"name": "Pizza", "priceInCents": 4990}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPost, "/products", body, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		decode(t, recorder, &created)
		assert.Equal(t, "Pizza", created.Name)
		assert.Equal(t, int64(4990), created.PriceInCents)
		assert.True(t, created.Available)
		assert.Equal(t, restaurant.ID, created.RestaurantID)
	})

	t.Run("Returns 400 for a non-positive price", func(t *testing.T) {
		body := map[string]interface{}{"name": "Free", "priceInCents": 0}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPost, "/products", body, manager.ID, restaurant.ID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Lists only the session restaurant's products", func(t *testing.T) {
		dbtest.SeedProduct(t, srv.db, other.ID, "Sushi", 100)

		recorder := srv.performAuthenticatedRequest(t, http.MethodGet, "/products", nil, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusOK, recorder.Code)

		var products []models.Product
		decode(t, recorder, &products)
		require.Len(t, products, 1)
		assert.Equal(t, "Pizza", products[0].Name)
	})

	t.Run("Updates a product", func(t *testing.T) {
		body := map[string]interface{}{"name": "Pizza Grande", "priceInCents": 5990, "available": false}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPut, "/products/"+created.ID, body, manager.ID, restaurant.ID)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		var updated models.Product
		decode(t, recorder, &updated)
		assert.Equal(t, "Pizza Grande", updated.Name)
		assert.False(t, updated.Available)
	})

	t.Run("Another restaurant cannot touch it", func(t *testing.T) {
		body := map[string]interface{}{"name": "Hijack", "priceInCents": 1}
		recorder := srv.performAuthenticatedRequest(t, http.MethodPut, "/products/"+created.ID, body, manager.ID, other.ID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)

		recorder = srv.performAuthenticatedRequest(t, http.MethodDelete, "/products/"+created.ID, nil, manager.ID, other.ID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Deletes a product", func(t *testing.T) {
		recorder := srv.performAuthenticatedRequest(t, http.MethodDelete, "/products/"+created.ID, nil, manager.ID, restaurant.ID)
		assert.Equal(t, http.StatusNoContent, recorder.Code)

		var count int64
		srv.db.Model(&models.Product{}).Where("id = ?", created.ID).Count(&count)
		assert.Zero(t, count)
	})
}
