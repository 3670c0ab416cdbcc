package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pedro5g/forfly/internal/auth"
	"github.com/pedro5g/forfly/internal/metrics"
	"github.com/pedro5g/forfly/internal/utils"
)

type MetricsHandler struct {
	engine *metrics.Engine
}

func NewMetricsHandler(engine *metrics.Engine) *MetricsHandler {
	return &MetricsHandler{engine: engine}
}

// GET /metrics/month-receipt
func (h *MetricsHandler) MonthReceipt(c *gin.Context) {
	res, err := h.engine.MonthlyReceipt(c.Request.Context(), auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /metrics/month-orders-amount
func (h *MetricsHandler) MonthOrdersAmount(c *gin.Context) {
	res, err := h.engine.MonthlyOrderCount(c.Request.Context(), auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /metrics/month-canceled-orders-amount
func (h *MetricsHandler) MonthCanceledOrdersAmount(c *gin.Context) {
	res, err := h.engine.MonthlyCanceledOrderCount(c.Request.Context(), auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /metrics/day-orders-amount
func (h *MetricsHandler) DayOrdersAmount(c *gin.Context) {
	res, err := h.engine.DailyOrderCount(c.Request.Context(), auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, res)
}

func optionalDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + " date"})
		return nil, false
	}
	return &t, true
}

// GET /metrics/daily-receipt-in-period?from=..&to=..
func (h *MetricsHandler) DailyReceiptInPeriod(c *gin.Context) {
	from, ok := optionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := optionalDate(c, "to")
	if !ok {
		return
	}

	res, err := h.engine.DailyReceiptSeries(c.Request.Context(), auth.RestaurantID(c), from, to)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /metrics/popular-products
func (h *MetricsHandler) PopularProducts(c *gin.Context) {
	res, err := h.engine.PopularProducts(c.Request.Context(), auth.RestaurantID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, res)
}
