// Package notifier tells people about things: sign-in links by e-mail and
// order confirmations by e-mail and SMS.
package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pedro5g/forfly/internal/logging"
	"github.com/pedro5g/forfly/internal/models"
)

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type Notifier struct {
	email EmailSender
	sms   SMSSender
	users UserFinder
	log   *slog.Logger
}

// New builds a Notifier. sms may be nil to disable text messages.
func New(email EmailSender, sms SMSSender, users UserFinder) *Notifier {
	return &Notifier{email: email, sms: sms, users: users, log: logging.New("notifier")}
}

// SendAuthLink mails the one-time sign-in link.
func (n *Notifier) SendAuthLink(ctx context.Context, to, name, link string) error {
	return n.email.SendEmail(ctx, Email{
		To:      to,
		Subject: "Your sign-in link",
		HTML: fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p><a href="%s">Click here to sign in</a>. The link can be used once.</p>
</body></html>`, html.EscapeString(name), html.EscapeString(link)),
		Text: fmt.Sprintf("Hi %s,\n\nUse this link to sign in: %s\nThe link can be used once.", name, link),
	})
}

// FormatCents renders an amount in cents as "12.80".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// OrderPlaced confirms a new order to its customer. Delivery failures are
// logged and otherwise ignored.
func (n *Notifier) OrderPlaced(ctx context.Context, order *models.Order) {
	if order.CustomerID == nil {
		return
	}
	customer, err := n.users.FindByID(ctx, *order.CustomerID)
	if err != nil {
		n.log.Warn("order placed: customer lookup failed", "order_id", order.ID, "error", err)
		return
	}

	total := FormatCents(order.TotalInCents)
	ref := shortID(order.ID)

	err = n.email.SendEmail(ctx, Email{
		To:      customer.Email,
		Subject: fmt.Sprintf("Order #%s confirmation", ref),
		HTML: fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>Thank you for your order! Your order #%s has been placed.</p>
<ul><li>Order ID: %s</li><li>Total: R$ %s</li></ul>
<p>We will let you know when it is on its way.</p>
</body></html>`, html.EscapeString(customer.Name), ref, html.EscapeString(order.ID), total),
		Text: fmt.Sprintf("Dear %s,\n\nThank you for your order! Your order #%s has been placed.\n\nOrder ID: %s\nTotal: R$ %s\n",
			customer.Name, ref, order.ID, total),
	})
	if err != nil {
		n.log.Warn("order placed: email failed", "order_id", order.ID, "error", err)
	}

	if n.sms == nil || customer.Phone == nil || *customer.Phone == "" {
		return
	}
	msg := fmt.Sprintf("Your order #%s has been placed! Total: R$ %s. Thank you!", ref, total)
	if err := n.sms.SendSMS(ctx, *customer.Phone, msg); err != nil {
		n.log.Warn("order placed: sms failed", "order_id", order.ID, "error", err)
	}
}
