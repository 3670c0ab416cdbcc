package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pedro5g/forfly/internal/auth"
)

type AuthHandler struct {
	magic       *auth.MagicLink
	redirectURL string
}

func NewAuthHandler(magic *auth.MagicLink, redirectURL string) *AuthHandler {
	return &AuthHandler{magic: magic, redirectURL: redirectURL}
}

type AuthenticateRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /authenticate
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.magic.RequestLink(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.Status(http.StatusOK)
}

// GET /auth-links/authenticate?code=..&redirect=..
func (h *AuthHandler) RedeemAuthLink(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}

	token, err := h.magic.Redeem(c.Request.Context(), code)
	if err != nil {
		respondError(c, err, "Auth link not found")
		return
	}
	if err := auth.SignIn(c, token); err != nil {
		respondError(c, err, "")
		return
	}
	c.Redirect(http.StatusFound, h.safeRedirect(c.Query("redirect")))
}

// safeRedirect only follows redirects into the configured front end: same
// scheme and host, and a path at or below the configured one.
func (h *AuthHandler) safeRedirect(target string) string {
	if target == "" || h.redirectURL == "" {
		return h.redirectURL
	}
	allowed, err := url.Parse(h.redirectURL)
	if err != nil {
		return h.redirectURL
	}
	u, err := url.Parse(target)
	if err != nil || u.User != nil {
		return h.redirectURL
	}
	if !strings.EqualFold(u.Scheme, allowed.Scheme) || !strings.EqualFold(u.Host, allowed.Host) {
		return h.redirectURL
	}
	base := strings.TrimSuffix(allowed.Path, "/")
	if u.Path != base && !strings.HasPrefix(u.Path, base+"/") {
		return h.redirectURL
	}
	return u.String()
}

// POST /sign-out
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := auth.SignOut(c); err != nil {
		respondError(c, err, "")
		return
	}
	c.Status(http.StatusOK)
}
