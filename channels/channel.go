// Package channels holds the notification media an order confirmation can be
// delivered through.
package channels

import (
	"context"

	"github.com/aswathylr-builds/order-confirmation/models"
)

// Channel names
const (
	NameEmail    = "email"
	NameWhatsApp = "whatsapp"
)

// Channel sends one confirmation for one payload. Failures are reported in
// the result and never as a Go error, so one channel cannot abort another.
type Channel interface {
	Name() string
	Send(ctx context.Context, payload models.OrderPayload) models.ChannelResult
}

func failed(err error) models.ChannelResult {
	return models.ChannelResult{Success: false, Error: err.Error()}
}
