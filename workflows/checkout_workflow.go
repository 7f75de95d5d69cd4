package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/aswathylr-builds/order-confirmation/checkout"
	"github.com/aswathylr-builds/order-confirmation/models"
)

// RetryPolicy configuration
type RetryPolicy = temporal.RetryPolicy

const (
	CheckoutWorkflowName = "CheckoutNotificationWorkflow"

	QueryStatus  = "getStatus"
	SignalResend = "resend"

	DefaultResendWindow = 30 * time.Minute
)

// CheckoutInput starts a durable checkout notification run
type CheckoutInput struct {
	SessionID    string        `json:"session_id"`
	OrderDate    string        `json:"order_date"`
	Plan         checkout.Plan `json:"plan"`
	ResendWindow time.Duration `json:"resend_window"`
}

// CheckoutState is returned by the getStatus query and as the workflow result
type CheckoutState struct {
	Status    models.OrderStatus `json:"status"`
	Delivered []string           `json:"delivered"`
	Failed    []string           `json:"failed"`
	Resends   int                `json:"resends"`
}

// CheckoutNotificationWorkflow records the order, sends the primary and
// per-item confirmations once each, then accepts resend signals until the
// resend window closes.
func CheckoutNotificationWorkflow(ctx workflow.Context, input CheckoutInput) (*CheckoutState, error) {
	primary := input.Plan.Primary
	logger := workflow.GetLogger(ctx)
	logger.Info("Checkout workflow started", "order_id", primary.OrderID)

	state := &CheckoutState{
		Status: models.OrderStatus{
			OrderID:        primary.OrderID,
			Email:          primary.Email,
			EmailStatus:    models.DeliveryPending,
			WhatsAppNumber: primary.PhoneNumber,
			WhatsAppStatus: models.DeliveryPending,
			OrderDate:      input.OrderDate,
		},
	}

	err := workflow.SetQueryHandler(ctx, QueryStatus, func() (*CheckoutState, error) {
		return state, nil
	})
	if err != nil {
		logger.Error("Failed to register query handler", "error", err)
		return nil, err
	}

	// Store writes are retried, sends happen exactly once per request
	storeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})
	sendCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Second,
		RetryPolicy: &RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	err = workflow.ExecuteActivity(storeCtx, "RecordLastOrder", input.SessionID, primary).Get(ctx, nil)
	if err != nil {
		logger.Error("Failed to record order", "order_id", primary.OrderID, "error", err)
		return nil, err
	}
	err = workflow.ExecuteActivity(storeCtx, "RecordOrderStatus", input.SessionID, state.Status).Get(ctx, nil)
	if err != nil {
		logger.Error("Failed to record order status", "order_id", primary.OrderID, "error", err)
		return nil, err
	}

	// Step 1: primary confirmation
	var resp models.DispatchResponse
	err = workflow.ExecuteActivity(sendCtx, "SendOrderConfirmation", primary).Get(ctx, &resp)
	if err != nil {
		logger.Error("Primary confirmation failed", "order_id", primary.OrderID, "error", err)
		state.Status.EmailStatus = models.DeliveryFailed
	} else {
		state.Status.EmailStatus = models.DeliveryStatusFrom(resp.Email.Success)
		state.Status.WhatsAppStatus = models.DeliveryStatusFrom(resp.WhatsApp.Success)
		if resp.Email.Success {
			state.Delivered = append(state.Delivered, primary.Email)
		}
	}
	recordStatus(ctx, storeCtx, input.SessionID, state.Status)

	// Step 2: per-item confirmations, in cart order
	for _, item := range input.Plan.Items {
		var itemResp models.DispatchResponse
		err := workflow.ExecuteActivity(sendCtx, "SendOrderConfirmation", item.Payload).Get(ctx, &itemResp)
		if err != nil || !itemResp.Email.Success {
			logger.Warn("Item confirmation failed", "order_id", item.Payload.OrderID, "email", item.Payload.Email, "error", err)
			state.Failed = append(state.Failed, item.Payload.Email)
			continue
		}
		state.Delivered = append(state.Delivered, item.Payload.Email)
	}

	// Step 3: resend window
	window := input.ResendWindow
	if window <= 0 {
		window = DefaultResendWindow
	}
	resendCh := workflow.GetSignalChannel(ctx, SignalResend)
	timer := workflow.NewTimer(ctx, window)
	for expired := false; !expired; {
		resendRequested := false
		selector := workflow.NewSelector(ctx)
		selector.AddFuture(timer, func(workflow.Future) { expired = true })
		selector.AddReceive(resendCh, func(c workflow.ReceiveChannel, _ bool) {
			c.Receive(ctx, nil)
			resendRequested = true
		})
		selector.Select(ctx)
		if !resendRequested {
			continue
		}

		logger.Info("Resend signal received", "order_id", primary.OrderID)
		state.Resends++
		var resendResp models.DispatchResponse
		err := workflow.ExecuteActivity(sendCtx, "SendOrderConfirmation", primary).Get(ctx, &resendResp)
		if err != nil || !resendResp.Success || !resendResp.Email.Success {
			logger.Warn("Resend failed", "order_id", primary.OrderID, "error", err)
			continue
		}
		state.Status.EmailStatus = models.DeliverySent
		recordStatus(ctx, storeCtx, input.SessionID, state.Status)
	}

	logger.Info("Checkout workflow completed", "order_id", primary.OrderID,
		"email_status", state.Status.EmailStatus, "delivered", len(state.Delivered), "failed", len(state.Failed))
	return state, nil
}

// recordStatus persists status; a failed write only loses the page view
func recordStatus(ctx, storeCtx workflow.Context, sessionID string, status models.OrderStatus) {
	err := workflow.ExecuteActivity(storeCtx, "RecordOrderStatus", sessionID, status).Get(ctx, nil)
	if err != nil {
		workflow.GetLogger(ctx).Warn("Failed to record order status", "order_id", status.OrderID, "error", err)
	}
}
