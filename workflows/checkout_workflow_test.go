package workflows

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/aswathylr-builds/order-confirmation/activities"
	"github.com/aswathylr-builds/order-confirmation/checkout"
	"github.com/aswathylr-builds/order-confirmation/models"
	"github.com/aswathylr-builds/order-confirmation/store"
)

func testInput() CheckoutInput {
	primary := models.OrderPayload{
		OrderID:      "48213377",
		CustomerName: "Asha Rao",
		Email:        "a@x.com",
		PhoneNumber:  "+919800000000",
		OrderTotal:   2000,
		Items:        []models.LineItem{{Name: "Widget", Quantity: 2, Price: 1000}},
	}
	item := primary
	item.OrderID = "48213377-p1"
	item.Email = "b@y.com"
	item.PhoneNumber = ""

	return CheckoutInput{
		SessionID: "session-1",
		OrderDate: "March 4, 2025",
		Plan: checkout.Plan{
			Primary: primary,
			Items:   []checkout.ItemPayload{{ProductID: "p1", Payload: item}},
		},
		ResendWindow: 10 * time.Minute,
	}
}

func sentTo(email string) any {
	return mock.MatchedBy(func(p models.OrderPayload) bool { return p.Email == email })
}

func newTestEnv(t *testing.T) (*testsuite.TestWorkflowEnvironment, *activities.NotificationActivities) {
	t.Helper()
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()

	notificationActivities := activities.NewNotificationActivities("http://mock-url", store.NewMemorySessions())
	env.RegisterActivity(notificationActivities.SendOrderConfirmation)
	env.RegisterActivity(notificationActivities.RecordLastOrder)
	env.RegisterActivity(notificationActivities.RecordOrderStatus)
	env.RegisterWorkflow(CheckoutNotificationWorkflow)

	env.OnActivity(notificationActivities.RecordLastOrder, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return env, notificationActivities
}

func TestCheckoutWorkflow_DeliversAndCompletes(t *testing.T) {
	env, a := newTestEnv(t)

	var recorded []models.OrderStatus
	env.OnActivity(a.RecordOrderStatus, mock.Anything, "session-1", mock.Anything).
		Run(func(args mock.Arguments) { recorded = append(recorded, args.Get(2).(models.OrderStatus)) }).
		Return(nil)
	env.OnActivity(a.SendOrderConfirmation, mock.Anything, sentTo("a@x.com")).Return(&models.DispatchResponse{
		Success:  true,
		Email:    models.ChannelResult{Success: true},
		WhatsApp: models.ChannelResult{Success: true},
	}, nil).Once()
	env.OnActivity(a.SendOrderConfirmation, mock.Anything, sentTo("b@y.com")).Return(&models.DispatchResponse{
		Success: true,
		Email:   models.ChannelResult{Success: true},
	}, nil).Once()

	env.ExecuteWorkflow(CheckoutNotificationWorkflow, testInput())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var state CheckoutState
	require.NoError(t, env.GetWorkflowResult(&state))
	assert.Equal(t, models.DeliverySent, state.Status.EmailStatus)
	assert.Equal(t, models.DeliverySent, state.Status.WhatsAppStatus)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, state.Delivered)
	assert.Empty(t, state.Failed)
	assert.Zero(t, state.Resends)

	require.Len(t, recorded, 2)
	assert.Equal(t, models.DeliveryPending, recorded[0].EmailStatus)
	assert.Equal(t, models.DeliverySent, recorded[1].EmailStatus)
}

func TestCheckoutWorkflow_ResendSignal(t *testing.T) {
	env, a := newTestEnv(t)

	env.OnActivity(a.RecordOrderStatus, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(a.SendOrderConfirmation, mock.Anything, sentTo("a@x.com")).
		Return((*models.DispatchResponse)(nil), errors.New("dispatcher unavailable")).Once()
	env.OnActivity(a.SendOrderConfirmation, mock.Anything, sentTo("b@y.com")).Return(&models.DispatchResponse{
		Success: true,
		Email:   models.ChannelResult{Success: false, Error: "quota exceeded"},
	}, nil).Once()
	env.OnActivity(a.SendOrderConfirmation, mock.Anything, sentTo("a@x.com")).Return(&models.DispatchResponse{
		Success: true,
		Email:   models.ChannelResult{Success: true},
	}, nil).Once()

	env.RegisterDelayedCallback(func() {
		encoded, err := env.QueryWorkflow(QueryStatus)
		require.NoError(t, err)
		var state CheckoutState
		require.NoError(t, encoded.Get(&state))
		assert.Equal(t, models.DeliveryFailed, state.Status.EmailStatus)
		assert.Equal(t, models.DeliveryPending, state.Status.WhatsAppStatus)
		assert.Equal(t, []string{"b@y.com"}, state.Failed)

		env.SignalWorkflow(SignalResend, nil)
	}, time.Minute)

	env.ExecuteWorkflow(CheckoutNotificationWorkflow, testInput())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var state CheckoutState
	require.NoError(t, env.GetWorkflowResult(&state))
	assert.Equal(t, models.DeliverySent, state.Status.EmailStatus)
	assert.Equal(t, 1, state.Resends)
	env.AssertExpectations(t)
}

func TestCheckoutWorkflow_RecordFailureFailsWorkflow(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := activities.NewNotificationActivities("http://mock-url", store.NewMemorySessions())
	env.RegisterActivity(a.SendOrderConfirmation)
	env.RegisterActivity(a.RecordLastOrder)
	env.RegisterActivity(a.RecordOrderStatus)
	env.RegisterWorkflow(CheckoutNotificationWorkflow)

	env.OnActivity(a.RecordLastOrder, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	env.ExecuteWorkflow(CheckoutNotificationWorkflow, testInput())

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
