package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pedro5g/forfly/configs"
	"github.com/pedro5g/forfly/internal/auth"
	"github.com/pedro5g/forfly/internal/dbtest"
	"github.com/pedro5g/forfly/internal/handlers"
	"github.com/pedro5g/forfly/internal/metrics"
	"github.com/pedro5g/forfly/internal/orders"
	"github.com/pedro5g/forfly/internal/repo"
)

const testSessionSecret = "test-secret-key"

type sentLinks struct{ links []string }

func (s *sentLinks) SendAuthLink(_ context.Context, _, _, link string) error {
	s.links = append(s.links, link)
	return nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *auth.TokenIssuer
	links  *sentLinks
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.App.APIBaseURL = "http://localhost:3333"
	cfg.App.AuthRedirectURL = "http://localhost:5173"
	cfg.Session.Secret = testSessionSecret
	cfg.Session.Name = "auth"
	cfg.Security.TokenTTL = time.Hour
	cfg.Security.LinkTTL = 7 * 24 * time.Hour
	return cfg
}

func setupTestRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB := dbtest.Open(t)
	cfg := testConfig()

	users := repo.NewUserStore(testDB)
	restaurants := repo.NewRestaurantStore(testDB)
	orderStore := repo.NewOrderStore(testDB)
	tokens := auth.NewTokenIssuer("jwt-secret", cfg.Security.TokenTTL)
	links := &sentLinks{}

	router := handlers.NewRouter(handlers.Deps{
		Config: cfg,
		Tokens: tokens,
		MagicLink: auth.NewMagicLink(users, repo.NewAuthLinkStore(testDB), restaurants, tokens, links, auth.MagicLinkConfig{
			APIBaseURL:  cfg.App.APIBaseURL,
			RedirectURL: cfg.App.AuthRedirectURL,
			LinkTTL:     cfg.Security.LinkTTL,
		}),
		Users:        users,
		Restaurants:  restaurants,
		Products:     repo.NewProductStore(testDB),
		Orders:       orderStore,
		PlaceOrder:   orders.NewPlaceOrder(orderStore, nil, nil),
		StateMachine: orders.NewStateMachine(orderStore),
		Query:        orders.NewQueryService(orderStore),
		Metrics:      metrics.NewEngine(testDB),
	})

	return &testServer{router: router, db: testDB, tokens: tokens, links: links}
}

func createRequest(method, path string, body interface{}) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (s *testServer) performRequest(req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

// sessionCookie signs a session token the same way the sign-in routes do.
func (s *testServer) sessionCookie(t *testing.T, userID, restaurantID string) string {
	t.Helper()
	token, err := s.tokens.Issue(userID, restaurantID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	sessions.Sessions("auth", cookie.NewStore([]byte(testSessionSecret)))(tempC)
	if err := auth.SignIn(tempC, token); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return tempW.Header().Get("Set-Cookie")
}

func (s *testServer) performAuthenticatedRequest(t *testing.T, method, path string, body interface{}, userID, restaurantID string) *httptest.ResponseRecorder {
	req := createRequest(method, path, body)
	req.Header.Set("Cookie", s.sessionCookie(t, userID, restaurantID))
	return s.performRequest(req)
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", recorder.Body.String(), err)
	}
}
