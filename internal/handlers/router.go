package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pedro5g/forfly/configs"
	"github.com/pedro5g/forfly/internal/auth"
	"github.com/pedro5g/forfly/internal/logging"
	"github.com/pedro5g/forfly/internal/metrics"
	"github.com/pedro5g/forfly/internal/middleware"
	"github.com/pedro5g/forfly/internal/orders"
	"github.com/pedro5g/forfly/internal/repo"
)

// Deps is everything the HTTP layer is built from. SSO may be nil.
type Deps struct {
	Config       config.Config
	Tokens       *auth.TokenIssuer
	MagicLink    *auth.MagicLink
	SSO          *auth.SSO
	Users        *repo.UserStore
	Restaurants  *repo.RestaurantStore
	Products     *repo.ProductStore
	Orders       *repo.OrderStore
	PlaceOrder   *orders.PlaceOrder
	StateMachine *orders.StateMachine
	Query        *orders.QueryService
	Metrics      *metrics.Engine
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(logging.New("http")))

	store := cookie.NewStore([]byte(d.Config.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(d.Config.Security.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   d.Config.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(d.Config.Session.Name, store))

	authH := NewAuthHandler(d.MagicLink, d.Config.App.AuthRedirectURL)
	restaurantH := NewRestaurantHandler(d.Restaurants, d.Users)
	productH := NewProductHandler(d.Products)
	orderH := NewOrderHandler(d.PlaceOrder, d.Orders, d.StateMachine, d.Query)
	metricsH := NewMetricsHandler(d.Metrics)

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics/prometheus", gin.WrapH(promhttp.Handler()))
	r.POST("/restaurants", restaurantH.RegisterRestaurant)
	r.POST("/authenticate", authH.Authenticate)
	r.GET("/auth-links/authenticate", authH.RedeemAuthLink)
	r.POST("/sign-out", authH.SignOut)
	if d.SSO != nil {
		r.GET("/auth/oidc/login", d.SSO.Login)
		r.GET("/auth/oidc/callback", d.SSO.Callback)
	}

	// ── session required ──
	api := r.Group("/")
	api.Use(auth.RequireAuth(d.Tokens))
	{
		api.GET("/me", restaurantH.GetProfile)
		api.GET("/managed-restaurant", restaurantH.GetManagedRestaurant)
		api.PUT("/profile", restaurantH.UpdateProfile)
		api.POST("/customers", restaurantH.RegisterCustomer)

		api.POST("/products", productH.CreateProduct)
		api.GET("/products", productH.ListProducts)
		api.PUT("/products/:productId", productH.UpdateProduct)
		api.DELETE("/products/:productId", productH.DeleteProduct)

		api.POST("/orders", orderH.CreateOrder)
		api.GET("/orders", orderH.ListOrders)
		api.GET("/orders/:orderId", orderH.GetOrder)
		api.PATCH("/orders/:orderId/approve", orderH.Transition(orders.ActionApprove))
		api.PATCH("/orders/:orderId/dispatch", orderH.Transition(orders.ActionDispatch))
		api.PATCH("/orders/:orderId/deliver", orderH.Transition(orders.ActionDeliver))
		api.PATCH("/orders/:orderId/cancel", orderH.Transition(orders.ActionCancel))

		api.GET("/metrics/month-receipt", metricsH.MonthReceipt)
		api.GET("/metrics/month-orders-amount", metricsH.MonthOrdersAmount)
		api.GET("/metrics/month-canceled-orders-amount", metricsH.MonthCanceledOrdersAmount)
		api.GET("/metrics/day-orders-amount", metricsH.DayOrdersAmount)
		api.GET("/metrics/daily-receipt-in-period", metricsH.DailyReceiptInPeriod)
		api.GET("/metrics/popular-products", metricsH.PopularProducts)
	}

	return r
}
