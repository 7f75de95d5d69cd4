// Package dispatcher serves the order-confirmation endpoint: it validates a
// payload, always attempts email, attempts WhatsApp when a phone number is
// present, and reports both outcomes in one response.
package dispatcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aswathylr-builds/order-confirmation/channels"
	"github.com/aswathylr-builds/order-confirmation/events"
	"github.com/aswathylr-builds/order-confirmation/metrics"
	"github.com/aswathylr-builds/order-confirmation/models"
)

// WhatsAppNotRequested is the WhatsApp error when no phone number was given
const WhatsAppNotRequested = "WhatsApp notification not requested"

// Dispatcher is stateless across requests
type Dispatcher struct {
	email     channels.Channel
	whatsapp  channels.Channel
	logger    *slog.Logger
	metrics   *metrics.ServerMetrics
	publisher events.Publisher
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics instruments requests and channel outcomes
func WithMetrics(m *metrics.ServerMetrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithPublisher emits a notification event after each dispatch
func WithPublisher(p events.Publisher) Option {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

// New creates a dispatcher over the two channels
func New(email, whatsapp channels.Channel, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		email:    email,
		whatsapp: whatsapp,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one validated payload. Channel failures are reported in the
// response; they never stop the other channel.
func (d *Dispatcher) Dispatch(ctx context.Context, payload models.OrderPayload) models.DispatchResponse {
	logger := d.logger.With("order_id", payload.OrderID)

	logger.InfoContext(ctx, "sending email confirmation")
	emailResult := d.email.Send(ctx, payload)
	d.metrics.ObserveChannel(d.email.Name(), emailResult.Success, false)
	logger.InfoContext(ctx, "email result", "success", emailResult.Success, "error", emailResult.Error)

	whatsappResult := models.ChannelResult{Success: false, Error: WhatsAppNotRequested}
	if strings.TrimSpace(payload.PhoneNumber) != "" {
		logger.InfoContext(ctx, "sending whatsapp notification")
		whatsappResult = d.whatsapp.Send(ctx, payload)
		d.metrics.ObserveChannel(d.whatsapp.Name(), whatsappResult.Success, false)
		logger.InfoContext(ctx, "whatsapp result", "success", whatsappResult.Success, "error", whatsappResult.Error)
	} else {
		d.metrics.ObserveChannel(d.whatsapp.Name(), false, true)
	}

	resp := models.DispatchResponse{
		Success:  true,
		Email:    emailResult,
		WhatsApp: whatsappResult,
	}
	d.publish(ctx, payload, resp)
	return resp
}

func (d *Dispatcher) publish(ctx context.Context, payload models.OrderPayload, resp models.DispatchResponse) {
	if d.publisher == nil {
		return
	}
	evt := events.NewEvent(events.EventNotificationDispatched, payload.OrderID, map[string]any{
		"email_success":      resp.Email.Success,
		"whatsapp_success":   resp.WhatsApp.Success,
		"whatsapp_requested": resp.WhatsApp.Error != WhatsAppNotRequested,
		"item_count":         len(payload.Items),
	})
	if err := d.publisher.Publish(ctx, evt); err != nil {
		d.logger.WarnContext(ctx, "failed to publish notification event", "order_id", payload.OrderID, "error", err)
	}
}
