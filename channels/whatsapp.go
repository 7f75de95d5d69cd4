package channels

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aswathylr-builds/order-confirmation/models"
)

// WhatsAppChannel simulates a WhatsApp provider. It never makes a network
// call and always reports the message as queued, so its result does not
// reflect real delivery. Swap in another Channel for a real integration.
type WhatsAppChannel struct {
	logger *slog.Logger
}

// NewWhatsAppChannel creates the simulated WhatsApp channel
func NewWhatsAppChannel(logger *slog.Logger) *WhatsAppChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &WhatsAppChannel{logger: logger}
}

// Name returns the channel name
func (w *WhatsAppChannel) Name() string {
	return NameWhatsApp
}

// Send queues a simulated message
func (w *WhatsAppChannel) Send(ctx context.Context, payload models.OrderPayload) models.ChannelResult {
	messageID := "whatsapp-msg-" + uuid.NewString()
	w.logger.InfoContext(ctx, "simulating whatsapp message",
		"order_id", payload.OrderID, "phone", payload.PhoneNumber, "message_id", messageID)

	return models.ChannelResult{
		Success: true,
		Data: map[string]any{
			"messageId": messageID,
			"status":    "queued",
		},
	}
}
