package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedro5g/forfly/internal/auth"
	"github.com/pedro5g/forfly/internal/repo"
)

type ProductHandler struct {
	products *repo.ProductStore
}

func NewProductHandler(products *repo.ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

type ProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  *string `json:"description"`
	PriceInCents int64   `json:"priceInCents" binding:"required,gt=0"`
	Available    *bool   `json:"available"`
}

func (r ProductRequest) input() repo.ProductInput {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return repo.ProductInput{
		Name:         r.Name,
		Description:  r.Description,
		PriceInCents: r.PriceInCents,
		Available:    available,
	}
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.products.Create(c.Request.Context(), auth.RestaurantID(c), req.input())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, products)
}

// PUT /products/:productId
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("productId")
	if !validID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, auth.RestaurantID(c), req.input())
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DELETE /products/:productId
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("productId")
	if !validID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err := h.products.Delete(c.Request.Context(), id, auth.RestaurantID(c)); err != nil {
		respondError(c, err, "Product not found")
		return
	}
	c.Status(http.StatusNoContent)
}
