package checkout

import (
	"context"
	"errors"

	"github.com/aswathylr-builds/order-confirmation/models"
	"github.com/aswathylr-builds/order-confirmation/store"
)

// ErrNoOrder means the session holds no order status
var ErrNoOrder = errors.New("no order found")

// LineState is how a notification line is presented
type LineState string

const (
	LineSent    LineState = "sent"
	LinePending LineState = "pending"
	LineFailed  LineState = "failed"
)

// NoticeLine is one notification row on the confirmation page
type NoticeLine struct {
	Recipient string
	State     LineState
	Message   string
	// CanResend is set on a failed email line
	CanResend bool
}

// ConfirmationView is what the thank-you page renders
type ConfirmationView struct {
	OrderID   string
	OrderDate string
	Email     *NoticeLine
	WhatsApp  *NoticeLine
}

// Confirmation builds the thank-you page from the session's stored status.
// The email line turns into a failure banner when the status says failed or
// the latest resend failed. The WhatsApp line appears only with a number.
func Confirmation(ctx context.Context, orders *store.Orders, resender *Resender) (*ConfirmationView, error) {
	status, ok, err := orders.Status(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		if resender != nil {
			resender.notifier.Notify(ctx, NoticeError, "No order found",
				"We couldn't find your order details. Please check your order history.")
		}
		return nil, ErrNoOrder
	}

	view := &ConfirmationView{
		OrderID:   status.OrderID,
		OrderDate: status.OrderDate,
	}

	if status.Email != "" {
		resendFailed := resender != nil && resender.LastFailed()
		view.Email = emailLine(status, resendFailed)
	}
	if status.WhatsAppNumber != "" {
		view.WhatsApp = whatsAppLine(status)
	}
	return view, nil
}

func emailLine(status models.OrderStatus, resendFailed bool) *NoticeLine {
	line := &NoticeLine{Recipient: status.Email}
	switch {
	case status.EmailStatus == models.DeliveryFailed || resendFailed:
		line.State = LineFailed
		line.Message = "Order confirmation email could not be sent to: " + status.Email
		line.CanResend = true
	case status.EmailStatus == models.DeliverySent:
		line.State = LineSent
		line.Message = "Order confirmation email sent to: " + status.Email
	default:
		line.State = LinePending
		line.Message = "Order confirmation email is on its way to: " + status.Email
	}
	return line
}

func whatsAppLine(status models.OrderStatus) *NoticeLine {
	line := &NoticeLine{Recipient: status.WhatsAppNumber}
	switch status.WhatsAppStatus {
	case models.DeliverySent:
		line.State = LineSent
		line.Message = "WhatsApp notification sent to: " + status.WhatsAppNumber
	case models.DeliveryFailed:
		line.State = LineFailed
		line.Message = "WhatsApp notification could not be sent to: " + status.WhatsAppNumber
	default:
		line.State = LinePending
		line.Message = "WhatsApp notification will be sent to: " + status.WhatsAppNumber
	}
	return line
}
