package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/pedro5g/forfly/configs"
	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/logging"
	"github.com/pedro5g/forfly/internal/models"
)

const stateKey = "oidc_state"

// SSO signs managers in through an external OpenID Connect provider. The
// provider's verified e-mail must belong to a registered manager.
type SSO struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	managers     ManagerFinder
	restaurants  ManagedRestaurants
	tokens       *TokenIssuer
	redirectURL  string
	log          *slog.Logger
}

func NewSSO(ctx context.Context, cfg config.OIDCConfig, managers ManagerFinder, restaurants ManagedRestaurants, tokens *TokenIssuer, redirectURL string) (*SSO, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("OIDC provider init: %w", err)
	}

	return &SSO{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		managers:    managers,
		restaurants: restaurants,
		tokens:      tokens,
		redirectURL: redirectURL,
		log:         logging.New("auth.oidc"),
	}, nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GET /auth/oidc/login
func (s *SSO) Login(c *gin.Context) {
	state, err := newState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start sign-in"})
		return
	}
	sess := sessions.Default(c)
	sess.Set(stateKey, state)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start sign-in"})
		return
	}
	c.Redirect(http.StatusFound, s.oauth2Config.AuthCodeURL(state))
}

// GET /auth/oidc/callback
func (s *SSO) Callback(c *gin.Context) {
	sess := sessions.Default(c)
	want, _ := sess.Get(stateKey).(string)
	sess.Delete(stateKey)
	if want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no id_token in token response"})
		return
	}
	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claims parse error"})
		return
	}
	if claims.Email == "" || !claims.EmailVerified {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "verified e-mail required"})
		return
	}

	token, err := s.sessionToken(ctx, claims.Email)
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err != nil {
		s.log.Error("oidc sign-in failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}

	sess.Set(tokenKey, token)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}
	c.Redirect(http.StatusFound, s.redirectURL)
}

func (s *SSO) sessionToken(ctx context.Context, email string) (string, error) {
	manager, err := s.managers.FindByEmailAndRole(ctx, email, models.RoleManager)
	if err != nil {
		return "", err
	}
	restaurant, err := s.restaurants.GetByManagerID(ctx, manager.ID)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(manager.ID, restaurant.ID)
}
