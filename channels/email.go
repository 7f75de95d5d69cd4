package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aswathylr-builds/order-confirmation/models"
)

// DefaultEmailJSURL is the EmailJS send endpoint
const DefaultEmailJSURL = "https://api.emailjs.com/api/v1.0/email/send"

// EmailConfig identifies the EmailJS service, template and account to use
type EmailConfig struct {
	ServiceID  string
	TemplateID string
	UserID     string
	URL        string
	Timeout    time.Duration
}

// EmailChannel delivers confirmations through EmailJS
type EmailChannel struct {
	HTTPClient *http.Client
	cfg        EmailConfig
	logger     *slog.Logger
}

type emailRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	ToName     string `json:"to_name"`
	ToEmail    string `json:"to_email"`
	OrderID    string `json:"order_id"`
	OrderTotal string `json:"order_total"`
	Items      string `json:"items"`
}

// NewEmailChannel creates an EmailJS channel
func NewEmailChannel(cfg EmailConfig, logger *slog.Logger) *EmailChannel {
	if cfg.URL == "" {
		cfg.URL = DefaultEmailJSURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailChannel{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Name returns the channel name
func (e *EmailChannel) Name() string {
	return NameEmail
}

// Send makes exactly one provider call. Only HTTP 200 counts as delivered.
func (e *EmailChannel) Send(ctx context.Context, payload models.OrderPayload) models.ChannelResult {
	body, err := json.Marshal(emailRequest{
		ServiceID:  e.cfg.ServiceID,
		TemplateID: e.cfg.TemplateID,
		UserID:     e.cfg.UserID,
		TemplateParams: templateParams{
			ToName:     payload.CustomerName,
			ToEmail:    payload.Email,
			OrderID:    payload.OrderID,
			OrderTotal: FormatINR(decimal.NewFromFloat(payload.OrderTotal)),
			Items:      FormatItems(payload.Items),
		},
	})
	if err != nil {
		return failed(fmt.Errorf("failed to marshal email request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return failed(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	e.logger.InfoContext(ctx, "sending confirmation email", "order_id", payload.OrderID, "email", payload.Email)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.logger.ErrorContext(ctx, "email provider call failed", "order_id", payload.OrderID, "error", err)
		return failed(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		e.logger.ErrorContext(ctx, "email provider rejected message",
			"order_id", payload.OrderID, "status", resp.StatusCode, "body", string(respBody))
		return models.ChannelResult{Success: false, Error: string(respBody)}
	}

	e.logger.InfoContext(ctx, "confirmation email accepted", "order_id", payload.OrderID)
	return models.ChannelResult{Success: true}
}

// FormatItems renders one "name x qty - total" line per item
func FormatItems(items []models.LineItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lineTotal := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, fmt.Sprintf("%s x %d - %s", item.Name, item.Quantity, FormatINR(lineTotal)))
	}
	return strings.Join(lines, "\n")
}
