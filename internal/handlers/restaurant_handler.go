package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedro5g/forfly/internal/auth"
	"github.com/pedro5g/forfly/internal/repo"
)

type RestaurantHandler struct {
	restaurants *repo.RestaurantStore
	users       *repo.UserStore
}

func NewRestaurantHandler(restaurants *repo.RestaurantStore, users *repo.UserStore) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants, users: users}
}

type RegisterRestaurantRequest struct {
	ManagerName    string `json:"managerName" binding:"required,min=3,max=30"`
	RestaurantName string `json:"restaurantName" binding:"required,min=3,max=30"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required"`
}

// POST /restaurants
func (h *RestaurantHandler) RegisterRestaurant(c *gin.Context) {
	var req RegisterRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validPhone(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone"})
		return
	}

	_, err := h.restaurants.Register(c.Request.Context(), repo.RegisterRestaurantInput{
		ManagerName:    req.ManagerName,
		RestaurantName: req.RestaurantName,
		Email:          req.Email,
		Phone:          &req.Phone,
	})
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /managed-restaurant
func (h *RestaurantHandler) GetManagedRestaurant(c *gin.Context) {
	restaurant, err := h.restaurants.GetByID(c.Request.Context(), auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

type UpdateProfileRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=30"`
	Description *string `json:"description"`
}

// PUT /profile
func (h *RestaurantHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.restaurants.UpdateProfile(c.Request.Context(), auth.RestaurantID(c), req.Name, req.Description); err != nil {
		respondError(c, err, "Restaurant not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /me
func (h *RestaurantHandler) GetProfile(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

type RegisterCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// POST /customers
func (h *RestaurantHandler) RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validPhone(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone"})
		return
	}

	customer, err := h.users.RegisterCustomer(c.Request.Context(), req.Name, req.Email, &req.Phone)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": customer.ID})
}
