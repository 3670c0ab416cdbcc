package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pedro5g/forfly/configs"
	"github.com/pedro5g/forfly/internal/logging"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// AfricasTalking sends SMS through the Africa's Talking messaging API.
type AfricasTalking struct {
	cfg    config.AfricaTalkingConfig
	client *http.Client
	log    *slog.Logger
}

func NewAfricasTalking(cfg config.AfricaTalkingConfig) *AfricasTalking {
	return &AfricasTalking{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logging.New("notifier.sms"),
	}
}

func (s *AfricasTalking) SendSMS(ctx context.Context, to, message string) error {
	data := url.Values{}
	data.Set("username", s.cfg.Username)
	data.Set("to", to)
	data.Set("message", message)
	if s.cfg.SenderID != "" {
		data.Set("from", s.cfg.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("sms send failed", "to", to, "error", err)
		return fmt.Errorf("SMS send failed: %w", err)
	}
	defer resp.Body.Close()

	var smsResp SMSResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		s.log.Error("sms api rejected message", "to", to, "status", resp.StatusCode, "message", smsResp.SMSMessageData.Message)
		return fmt.Errorf("SMS API returned non-success status: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode SMS response: %w", decodeErr)
	}

	s.log.Info("sms sent", "to", to, "message", smsResp.SMSMessageData.Message)
	return nil
}
