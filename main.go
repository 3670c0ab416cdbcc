package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pedro5g/forfly/configs"
	"github.com/pedro5g/forfly/internal/auth"
	"github.com/pedro5g/forfly/internal/cache"
	"github.com/pedro5g/forfly/internal/db"
	"github.com/pedro5g/forfly/internal/handlers"
	"github.com/pedro5g/forfly/internal/logging"
	"github.com/pedro5g/forfly/internal/metrics"
	"github.com/pedro5g/forfly/internal/notifier"
	"github.com/pedro5g/forfly/internal/orders"
	"github.com/pedro5g/forfly/internal/repo"
)

func main() {
	cfg, err := config.Load(getEnv("FORFLY_CONFIG_DIR", "./configs"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Init("forfly", cfg.App.LogFile, logging.ParseLevel(cfg.App.LogLevel))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.Postgres)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database: %v", err)
	}

	// ── stores ──
	users := repo.NewUserStore(conn)
	restaurants := repo.NewRestaurantStore(conn)
	orderStore := repo.NewOrderStore(conn)

	// ── notifications ──
	var mailer notifier.EmailSender = notifier.NewLogMailer()
	if cfg.IsProduction() {
		ses, err := notifier.NewSESMailer(ctx, cfg.Email)
		if err != nil {
			log.Fatalf("email: %v", err)
		}
		mailer = ses
	}
	var sms notifier.SMSSender
	if cfg.SMS.APIKey != "" {
		sms = notifier.NewAfricasTalking(cfg.SMS)
	}
	notify := notifier.New(mailer, sms, users)

	// ── idempotency (optional) ──
	var idem orders.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		idem = cache.NewRedisIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
	}

	// ── auth ──
	tokens := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	magic := auth.NewMagicLink(users, repo.NewAuthLinkStore(conn), restaurants, tokens, notify, auth.MagicLinkConfig{
		APIBaseURL:  cfg.App.APIBaseURL,
		RedirectURL: cfg.App.AuthRedirectURL,
		LinkTTL:     cfg.Security.LinkTTL,
	})
	var sso *auth.SSO
	if cfg.OIDC.Enabled() {
		sso, err = auth.NewSSO(ctx, cfg.OIDC, users, restaurants, tokens, cfg.App.AuthRedirectURL)
		if err != nil {
			log.Fatalf("oidc: %v", err)
		}
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:       cfg,
		Tokens:       tokens,
		MagicLink:    magic,
		SSO:          sso,
		Users:        users,
		Restaurants:  restaurants,
		Products:     repo.NewProductStore(conn),
		Orders:       orderStore,
		PlaceOrder:   orders.NewPlaceOrder(orderStore, idem, notify),
		StateMachine: orders.NewStateMachine(orderStore),
		Query:        orders.NewQueryService(orderStore),
		Metrics:      metrics.NewEngine(conn),
	})

	srv := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.App.HTTPAddr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("http server stopped")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
