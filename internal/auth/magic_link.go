package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/logging"
	"github.com/pedro5g/forfly/internal/models"
	"github.com/pedro5g/forfly/internal/utils"
)

type ManagerFinder interface {
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)
}

type AuthLinks interface {
	Insert(ctx context.Context, link *models.AuthLink) error
	FindByCode(ctx context.Context, code string) (*models.AuthLink, error)
	Delete(ctx context.Context, code string) error
}

type ManagedRestaurants interface {
	GetByManagerID(ctx context.Context, managerID string) (*models.Restaurant, error)
}

type LinkSender interface {
	SendAuthLink(ctx context.Context, to, name, link string) error
}

// MagicLink signs managers in with single-use links sent by e-mail.
type MagicLink struct {
	managers    ManagerFinder
	links       AuthLinks
	restaurants ManagedRestaurants
	tokens      *TokenIssuer
	sender      LinkSender
	apiBaseURL  string
	redirectURL string
	linkTTLDays int
	now         func() time.Time
	log         *slog.Logger
}

type MagicLinkConfig struct {
	APIBaseURL  string
	RedirectURL string
	LinkTTL     time.Duration
}

func NewMagicLink(managers ManagerFinder, links AuthLinks, restaurants ManagedRestaurants, tokens *TokenIssuer, sender LinkSender, cfg MagicLinkConfig) *MagicLink {
	return &MagicLink{
		managers:    managers,
		links:       links,
		restaurants: restaurants,
		tokens:      tokens,
		sender:      sender,
		apiBaseURL:  cfg.APIBaseURL,
		redirectURL: cfg.RedirectURL,
		linkTTLDays: int(cfg.LinkTTL / (24 * time.Hour)),
		now:         time.Now,
		log:         logging.New("auth"),
	}
}

func (m *MagicLink) WithClock(now func() time.Time) *MagicLink {
	m.now = now
	return m
}

// RequestLink stores a fresh code for the manager with this e-mail and sends
// them the link that redeems it. It returns the link.
func (m *MagicLink) RequestLink(ctx context.Context, email string) (string, error) {
	manager, err := m.managers.FindByEmailAndRole(ctx, email, models.RoleManager)
	if err != nil {
		return "", err
	}

	code := uuid.NewString()
	if err := m.links.Insert(ctx, &models.AuthLink{Code: code, UserID: manager.ID, CreatedAt: m.now().UTC()}); err != nil {
		return "", fmt.Errorf("store auth link: %w", err)
	}

	link, err := url.Parse(m.apiBaseURL)
	if err != nil {
		return "", fmt.Errorf("api base url: %w", err)
	}
	link = link.JoinPath("/auth-links/authenticate")
	q := link.Query()
	q.Set("code", code)
	q.Set("redirect", m.redirectURL)
	link.RawQuery = q.Encode()

	if err := m.sender.SendAuthLink(ctx, manager.Email, manager.Name, link.String()); err != nil {
		return "", err
	}
	m.log.Info("auth link issued", "user_id", manager.ID)
	return link.String(), nil
}

// Redeem trades a code for a session token. The code is consumed.
func (m *MagicLink) Redeem(ctx context.Context, code string) (string, error) {
	link, err := m.links.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if utils.WholeDaysBetween(link.CreatedAt, m.now()) > m.linkTTLDays {
		return "", core.ErrAuthLinkExpired
	}

	restaurant, err := m.restaurants.GetByManagerID(ctx, link.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return "", fmt.Errorf("restaurant: %w", core.ErrUnauthorized)
	}
	if err != nil {
		return "", err
	}

	token, err := m.tokens.Issue(link.UserID, restaurant.ID)
	if err != nil {
		return "", err
	}
	if err := m.links.Delete(ctx, code); err != nil {
		return "", err
	}
	return token, nil
}
