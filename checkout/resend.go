package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/aswathylr-builds/order-confirmation/models"
	"github.com/aswathylr-builds/order-confirmation/store"
)

var (
	ErrResendInProgress = errors.New("resend already in progress")
	ErrMissingOrderData = errors.New("missing order information")
)

// ResendResult is the outcome of one resend attempt
type ResendResult struct {
	OrderID   string
	Email     string
	Delivered bool
	Error     string
}

// Resender re-sends the stored primary confirmation from the confirmation page
type Resender struct {
	sender Sender
	orders *store.Orders
	settings
	busy       atomic.Bool
	attempted  atomic.Bool
	lastFailed atomic.Bool
}

// NewResender creates a resender for one session's orders
func NewResender(sender Sender, orders *store.Orders, opts ...Option) *Resender {
	return &Resender{
		sender:   sender,
		orders:   orders,
		settings: newSettings(opts),
	}
}

// Resend sends the stored primary payload again, unchanged. Only the email
// status is updated, and only on success. Without a stored status it returns
// ErrNoOrder and tells the shopper nothing.
func (r *Resender) Resend(ctx context.Context) (*ResendResult, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrResendInProgress
	}
	defer r.busy.Store(false)

	payload, err := r.loadPayload(ctx)
	if err != nil {
		if errors.Is(err, ErrMissingOrderData) {
			r.notifier.Notify(ctx, NoticeError, "Missing order information",
				"We couldn't find the complete order information needed to resend confirmation.")
		}
		return nil, err
	}

	logger := r.logger.With("order_id", payload.OrderID)
	r.attempted.Store(true)
	result := &ResendResult{OrderID: payload.OrderID, Email: payload.Email}

	resp, err := r.sender.SendOrderConfirmation(ctx, payload)
	switch {
	case err != nil:
		result.Error = err.Error()
	case !resp.Success || !resp.Email.Success:
		result.Error = resp.Email.Error
	default:
		result.Delivered = true
	}

	if !result.Delivered {
		r.lastFailed.Store(true)
		logger.WarnContext(ctx, "failed to resend confirmation", "email", payload.Email, "error", result.Error)
		r.notifier.Notify(ctx, NoticeError, "Failed to resend confirmation",
			"We couldn't resend your order confirmation. Please try again later.")
		return result, nil
	}

	r.lastFailed.Store(false)
	if _, err := r.orders.UpdateStatus(ctx, func(s *models.OrderStatus) {
		s.EmailStatus = models.DeliverySent
	}); err != nil {
		logger.WarnContext(ctx, "failed to update order status", "error", err)
	}
	logger.InfoContext(ctx, "confirmation resent", "email", payload.Email)
	r.notifier.Notify(ctx, NoticeSuccess, "Confirmation resent!",
		fmt.Sprintf("Order confirmation has been resent to %s", payload.Email))
	return result, nil
}

func (r *Resender) loadPayload(ctx context.Context) (models.OrderPayload, error) {
	if _, ok, err := r.orders.Status(ctx); err != nil {
		return models.OrderPayload{}, err
	} else if !ok {
		return models.OrderPayload{}, ErrNoOrder
	}

	payload, ok, err := r.orders.LastOrder(ctx)
	if err != nil {
		return models.OrderPayload{}, err
	}
	if !ok || strings.TrimSpace(payload.CustomerName) == "" || strings.TrimSpace(payload.Email) == "" {
		return models.OrderPayload{}, ErrMissingOrderData
	}
	return payload, nil
}

// Attempted reports whether Resend reached the dispatcher in this session
func (r *Resender) Attempted() bool {
	return r.attempted.Load()
}

// LastFailed reports whether the most recent resend failed
func (r *Resender) LastFailed() bool {
	return r.lastFailed.Load()
}
