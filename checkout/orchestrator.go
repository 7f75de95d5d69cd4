// Package checkout turns a cart into order-confirmation requests, tracks
// per-channel delivery in the session store and drives the confirmation page.
// Notification is best effort: no delivery failure blocks order completion.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/aswathylr-builds/order-confirmation/models"
	"github.com/aswathylr-builds/order-confirmation/store"
)

// ConfirmationPath is where the shopper lands after checkout
const ConfirmationPath = "/thank-you"

var (
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrEmptyCart          = errors.New("cart is empty")
)

// Sender delivers one payload to the dispatcher
type Sender interface {
	SendOrderConfirmation(ctx context.Context, payload models.OrderPayload) (*models.DispatchResponse, error)
}

// Cart is the snapshot source checkout reads and clears
type Cart interface {
	Items() []models.CartItem
	Clear()
}

// Outcome summarises one checkout's notifications
type Outcome struct {
	OrderID          string
	OrderDate        string
	PrimaryEmail     string
	WhatsAppNumber   string
	PrimaryDelivered bool
	// Delivered and Failed list recipient emails, primary first, then cart order
	Delivered []string
	Failed    []string
	Next      string
}

// Partial reports that at least one extra recipient was not reached
func (o *Outcome) Partial() bool {
	return len(o.Failed) > 0
}

type settings struct {
	notifier        Notifier
	logger          *slog.Logger
	now             func() time.Time
	newOrderID      func() string
	taxRate         decimal.Decimal
	itemConcurrency int
}

// Option configures an Orchestrator or a Resender
type Option func(*settings)

// WithNotifier sets where user-facing notices go
func WithNotifier(n Notifier) Option {
	return func(s *settings) { s.notifier = n }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithOrderIDs overrides order number generation
func WithOrderIDs(gen func() string) Option {
	return func(s *settings) { s.newOrderID = gen }
}

// WithTaxRate adds tax to the primary total, e.g. 0.08
func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *settings) { s.taxRate = rate }
}

// WithItemConcurrency sends per-item payloads n at a time. The default of 1
// sends them one after another.
func WithItemConcurrency(n int) Option {
	return func(s *settings) { s.itemConcurrency = n }
}

func newSettings(opts []Option) settings {
	s := settings{
		notifier:        NopNotifier{},
		logger:          slog.Default(),
		now:             time.Now,
		newOrderID:      NewOrderID,
		taxRate:         decimal.Zero,
		itemConcurrency: 1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Orchestrator runs checkouts for one session. It is not re-entrant.
type Orchestrator struct {
	sender Sender
	orders *store.Orders
	settings
	busy atomic.Bool
}

// New creates an orchestrator writing to orders
func New(sender Sender, orders *store.Orders, opts ...Option) *Orchestrator {
	return &Orchestrator{
		sender:   sender,
		orders:   orders,
		settings: newSettings(opts),
	}
}

// Checkout sends the primary confirmation, then every per-item confirmation,
// and clears the cart whatever the channels report.
func (o *Orchestrator) Checkout(ctx context.Context, c Cart, customer models.Customer) (*Outcome, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer o.busy.Store(false)

	items := c.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	orderID := o.newOrderID()
	plan := BuildPlan(items, customer, orderID, o.taxRate)
	outcome := &Outcome{
		OrderID:        orderID,
		OrderDate:      FormatOrderDate(o.now()),
		PrimaryEmail:   plan.Primary.Email,
		WhatsAppNumber: plan.Primary.PhoneNumber,
		Next:           ConfirmationPath,
	}
	logger := o.logger.With("order_id", orderID)

	// Persisted before any network call so the confirmation page always has
	// something to show.
	if err := o.recordStart(ctx, plan.Primary, outcome.OrderDate); err != nil {
		logger.ErrorContext(ctx, "checkout failed", "error", err)
		o.notifier.Notify(ctx, NoticeError, "Checkout failed", "There was an error processing your order. Please try again.")
		return nil, fmt.Errorf("failed to record order %s: %w", orderID, err)
	}

	outcome.PrimaryDelivered = o.sendPrimary(ctx, logger, plan.Primary)
	if outcome.PrimaryDelivered {
		outcome.Delivered = append(outcome.Delivered, plan.Primary.Email)
	}

	for i, ok := range o.sendItems(ctx, logger, plan.Items) {
		if ok {
			outcome.Delivered = append(outcome.Delivered, plan.Items[i].Payload.Email)
		} else {
			outcome.Failed = append(outcome.Failed, plan.Items[i].Payload.Email)
		}
	}

	o.announce(ctx, outcome)
	c.Clear()
	logger.InfoContext(ctx, "checkout complete",
		"primary_delivered", outcome.PrimaryDelivered, "delivered", len(outcome.Delivered), "failed", len(outcome.Failed))
	return outcome, nil
}

func (o *Orchestrator) recordStart(ctx context.Context, primary models.OrderPayload, orderDate string) error {
	if err := o.orders.SaveLastOrder(ctx, primary); err != nil {
		return err
	}
	return o.orders.SaveStatus(ctx, models.OrderStatus{
		OrderID:        primary.OrderID,
		Email:          primary.Email,
		EmailStatus:    models.DeliveryPending,
		WhatsAppNumber: primary.PhoneNumber,
		WhatsAppStatus: models.DeliveryPending,
		OrderDate:      orderDate,
	})
}

func (o *Orchestrator) sendPrimary(ctx context.Context, logger *slog.Logger, primary models.OrderPayload) bool {
	resp, err := o.sender.SendOrderConfirmation(ctx, primary)
	if err != nil {
		logger.ErrorContext(ctx, "error sending primary confirmation", "error", err)
		o.updateStatus(ctx, logger, func(s *models.OrderStatus) {
			s.EmailStatus = models.DeliveryFailed
		})
		return false
	}

	o.updateStatus(ctx, logger, func(s *models.OrderStatus) {
		s.EmailStatus = models.DeliveryStatusFrom(resp.Email.Success)
		s.WhatsAppStatus = models.DeliveryStatusFrom(resp.WhatsApp.Success)
	})
	return resp.Email.Success
}

// sendItems returns one delivered flag per payload, in payload order
func (o *Orchestrator) sendItems(ctx context.Context, logger *slog.Logger, items []ItemPayload) []bool {
	results := make([]bool, len(items))
	send := func(i int) {
		item := items[i]
		resp, err := o.sender.SendOrderConfirmation(ctx, item.Payload)
		if err != nil {
			logger.ErrorContext(ctx, "failed to send item confirmation",
				"product_id", item.ProductID, "email", item.Payload.Email, "error", err)
			return
		}
		results[i] = resp.Email.Success
	}

	if o.itemConcurrency <= 1 {
		for i := range items {
			send(i)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(o.itemConcurrency)
	for i := range items {
		g.Go(func() error {
			send(i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) updateStatus(ctx context.Context, logger *slog.Logger, fn func(*models.OrderStatus)) {
	if _, err := o.orders.UpdateStatus(ctx, fn); err != nil {
		logger.WarnContext(ctx, "failed to update order status", "error", err)
	}
}

func (o *Orchestrator) announce(ctx context.Context, outcome *Outcome) {
	if outcome.Partial() {
		o.notifier.Notify(ctx, NoticeWarning, "Order placed with some notification issues",
			fmt.Sprintf("We couldn't send confirmation to all email addresses. %d succeeded, %d failed.",
				len(outcome.Delivered), len(outcome.Failed)))
		return
	}

	n := len(outcome.Delivered)
	if n == 0 {
		o.notifier.Notify(ctx, NoticeSuccess, "Order placed successfully!",
			"We couldn't send your confirmation yet. You can resend it from the order page.")
		return
	}
	msg := fmt.Sprintf("Order confirmation sent to %d email", n)
	if n > 1 {
		msg += "s"
	}
	if outcome.WhatsAppNumber != "" {
		msg += " and WhatsApp notification is on its way."
	} else {
		msg += "."
	}
	o.notifier.Notify(ctx, NoticeSuccess, "Order placed successfully!", msg)
}
