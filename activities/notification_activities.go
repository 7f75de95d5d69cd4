package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/aswathylr-builds/order-confirmation/models"
	"github.com/aswathylr-builds/order-confirmation/store"
)

// ErrDispatchRejected is returned when the dispatcher answers with a non-200 status
var ErrDispatchRejected = errors.New("dispatcher rejected request")

// NotificationActivities calls the order-confirmation dispatcher and records
// delivery state in the session store
type NotificationActivities struct {
	HTTPClient    *http.Client
	DispatcherURL string
	Sessions      store.Sessions
}

// NewNotificationActivities creates a new instance of NotificationActivities
func NewNotificationActivities(dispatcherURL string, sessions store.Sessions) *NotificationActivities {
	return &NotificationActivities{
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		DispatcherURL: dispatcherURL,
		Sessions:      sessions,
	}
}

// SendOrderConfirmation posts one payload to the dispatcher. Channel failures
// come back inside the response; an error means the call itself failed.
func (a *NotificationActivities) SendOrderConfirmation(ctx context.Context, payload models.OrderPayload) (*models.DispatchResponse, error) {
	// Try to get activity logger, but don't panic if not in activity context
	if activity.IsActivity(ctx) {
		logger := activity.GetLogger(ctx)
		logger.Info("Sending order confirmation", "order_id", payload.OrderID, "email", payload.Email)
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.DispatcherURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call dispatcher: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var rejected models.ErrorResponse
		msg := string(body)
		if json.Unmarshal(body, &rejected) == nil && rejected.Error != "" {
			msg = rejected.Error
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrDispatchRejected, resp.StatusCode, msg)
	}

	var dispatchResp models.DispatchResponse
	if err := json.Unmarshal(body, &dispatchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dispatcher response: %w", err)
	}

	if activity.IsActivity(ctx) {
		logger := activity.GetLogger(ctx)
		logger.Info("Order confirmation dispatched", "order_id", payload.OrderID,
			"email_success", dispatchResp.Email.Success, "whatsapp_success", dispatchResp.WhatsApp.Success)
	}
	return &dispatchResp, nil
}

// RecordLastOrder stores the primary payload for a later resend
func (a *NotificationActivities) RecordLastOrder(ctx context.Context, sessionID string, payload models.OrderPayload) error {
	orders := store.NewOrders(a.Sessions.Session(sessionID))
	if err := orders.SaveLastOrder(ctx, payload); err != nil {
		return fmt.Errorf("failed to record last order: %w", err)
	}
	return nil
}

// RecordOrderStatus replaces the session's delivery status
func (a *NotificationActivities) RecordOrderStatus(ctx context.Context, sessionID string, status models.OrderStatus) error {
	if activity.IsActivity(ctx) {
		logger := activity.GetLogger(ctx)
		logger.Info("Recording order status", "order_id", status.OrderID,
			"email_status", status.EmailStatus, "whatsapp_status", status.WhatsAppStatus)
	}

	orders := store.NewOrders(a.Sessions.Session(sessionID))
	if err := orders.SaveStatus(ctx, status); err != nil {
		return fmt.Errorf("failed to record order status: %w", err)
	}
	return nil
}
