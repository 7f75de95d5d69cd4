package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/aswathylr-builds/order-confirmation/activities"
	"github.com/aswathylr-builds/order-confirmation/cart"
	"github.com/aswathylr-builds/order-confirmation/checkout"
	"github.com/aswathylr-builds/order-confirmation/codec"
	"github.com/aswathylr-builds/order-confirmation/config"
	"github.com/aswathylr-builds/order-confirmation/logging"
	"github.com/aswathylr-builds/order-confirmation/models"
	"github.com/aswathylr-builds/order-confirmation/store"
	"github.com/aswathylr-builds/order-confirmation/workflows"
)

// catalog is the demo product list carts are built from
var catalog = map[string]models.Product{
	"p1": {ID: "p1", Name: "Widget", Price: 1000, Stock: 10},
	"p2": {ID: "p2", Name: "Desk Lamp", Price: 2499, Discount: 10, Stock: 5},
	"p3": {ID: "p3", Name: "Ceramic Mug", Price: 349, Stock: 25},
}

type options struct {
	action     string
	workflowID string
	sessionID  string
	items      string
	itemEmails string
	customer   models.Customer
	retry      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.action, "action", "checkout", "Action to perform: checkout, resend, query, local")
	flag.StringVar(&opts.workflowID, "workflow-id", "", "Workflow ID for resend/query operations")
	flag.StringVar(&opts.sessionID, "session-id", "", "Session ID (generated if not provided)")
	flag.StringVar(&opts.items, "items", "p1:2", "Cart lines as productID:quantity, comma-separated")
	flag.StringVar(&opts.itemEmails, "item-emails", "", "Extra recipients as productID=email, comma-separated")
	flag.StringVar(&opts.customer.FirstName, "first-name", "Asha", "Customer first name")
	flag.StringVar(&opts.customer.LastName, "last-name", "Rao", "Customer last name")
	flag.StringVar(&opts.customer.Email, "email", "", "Customer email")
	flag.StringVar(&opts.customer.Phone, "phone", "", "Customer phone")
	flag.StringVar(&opts.customer.WhatsAppNumber, "whatsapp", "", "WhatsApp number, if different from phone")
	flag.BoolVar(&opts.customer.UsePhoneForWhatsApp, "phone-for-whatsapp", false, "Send WhatsApp to the phone number")
	flag.BoolVar(&opts.retry, "retry", false, "With -action=local, resend once if the email failed")
	flag.Parse()

	logger := logging.New("order-confirmation-starter")
	cfg := config.LoadStarter()
	ctx := context.Background()

	if opts.sessionID == "" {
		opts.sessionID = uuid.NewString()
	}

	if opts.action == "local" {
		if err := runLocal(ctx, logger, cfg, opts); err != nil {
			logger.Error("Local checkout failed", "error", err)
			os.Exit(1)
		}
		return
	}

	c, err := dialTemporal(logger, cfg)
	if err != nil {
		logger.Error("Unable to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	switch opts.action {
	case "checkout":
		err = startCheckout(ctx, logger, c, cfg, opts)
	case "resend":
		err = sendResend(ctx, logger, c, opts.workflowID)
	case "query":
		err = queryCheckout(ctx, c, opts.workflowID)
	default:
		err = fmt.Errorf("unknown action: %s", opts.action)
	}
	if err != nil {
		logger.Error("Starter failed", "action", opts.action, "error", err)
		os.Exit(1)
	}
}

func dialTemporal(logger *slog.Logger, cfg config.Starter) (client.Client, error) {
	clientOptions := client.Options{
		HostPort: cfg.Host,
		Logger:   logging.Temporal(logger),
	}

	if cfg.EncryptionEnabled {
		key, _, err := codec.LoadOrCreateKey(cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		dataConverter, err := codec.NewEncryptionDataConverter(key)
		if err != nil {
			return nil, err
		}
		clientOptions.DataConverter = dataConverter
		logger.Info("Encryption enabled for starter")
	}

	return client.Dial(clientOptions)
}

func buildCart(opts options) (*cart.Cart, models.Customer, error) {
	c := cart.New()
	for _, line := range splitList(opts.items) {
		id, qtyStr, _ := strings.Cut(line, ":")
		product, ok := catalog[id]
		if !ok {
			return nil, models.Customer{}, fmt.Errorf("unknown product %q", id)
		}
		qty := 1
		if qtyStr != "" {
			n, err := strconv.Atoi(qtyStr)
			if err != nil {
				return nil, models.Customer{}, fmt.Errorf("invalid quantity for %s: %w", id, err)
			}
			qty = n
		}
		if err := c.Add(product, qty); err != nil {
			return nil, models.Customer{}, fmt.Errorf("failed to add %s: %w", id, err)
		}
	}

	customer := opts.customer
	customer.ItemEmails = map[string]string{}
	for _, pair := range splitList(opts.itemEmails) {
		id, email, _ := strings.Cut(pair, "=")
		customer.ItemEmails[id] = email
	}
	if strings.TrimSpace(customer.Email) == "" {
		return nil, models.Customer{}, fmt.Errorf("-email is required")
	}
	return c, customer, nil
}

func startCheckout(ctx context.Context, logger *slog.Logger, c client.Client, cfg config.Starter, opts options) error {
	shoppingCart, customer, err := buildCart(opts)
	if err != nil {
		return err
	}

	orderID := checkout.NewOrderID()
	input := workflows.CheckoutInput{
		SessionID:    opts.sessionID,
		OrderDate:    checkout.FormatOrderDate(time.Now()),
		Plan:         checkout.BuildPlan(shoppingCart.Items(), customer, orderID, cfg.TaxRate),
		ResendWindow: cfg.ResendWindow,
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("checkout-%s", orderID),
		TaskQueue: config.TaskQueue,
	}

	we, err := c.ExecuteWorkflow(ctx, workflowOptions, workflows.CheckoutNotificationWorkflow, input)
	if err != nil {
		return fmt.Errorf("unable to execute workflow: %w", err)
	}
	shoppingCart.Clear()

	logger.Info("Started checkout workflow",
		"workflow_id", we.GetID(), "run_id", we.GetRunID(), "order_id", orderID,
		"session_id", opts.sessionID, "item_payloads", len(input.Plan.Items))
	fmt.Println("To query the checkout status, run:")
	fmt.Printf("  go run ./starter -action=query -workflow-id=%s\n", we.GetID())
	fmt.Println("To resend the confirmation, run:")
	fmt.Printf("  go run ./starter -action=resend -workflow-id=%s\n", we.GetID())
	return nil
}

func sendResend(ctx context.Context, logger *slog.Logger, c client.Client, workflowID string) error {
	if workflowID == "" {
		return fmt.Errorf("workflow-id is required for resend")
	}
	if err := c.SignalWorkflow(ctx, workflowID, "", workflows.SignalResend, nil); err != nil {
		return fmt.Errorf("unable to signal workflow: %w", err)
	}
	logger.Info("Resend signal sent", "workflow_id", workflowID)
	return nil
}

func queryCheckout(ctx context.Context, c client.Client, workflowID string) error {
	if workflowID == "" {
		return fmt.Errorf("workflow-id is required for query")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	response, err := c.QueryWorkflow(queryCtx, workflowID, "", workflows.QueryStatus)
	if err != nil {
		return fmt.Errorf("unable to query workflow: %w", err)
	}

	var state workflows.CheckoutState
	if err := response.Get(&state); err != nil {
		return fmt.Errorf("unable to decode query result: %w", err)
	}
	return printJSON(state)
}

// runLocal checks out in-process against the dispatcher, without Temporal
func runLocal(ctx context.Context, logger *slog.Logger, cfg config.Starter, opts options) error {
	shoppingCart, customer, err := buildCart(opts)
	if err != nil {
		return err
	}

	var sessions store.Sessions = store.NewMemorySessions()
	if cfg.SessionDB != "" {
		sqlite, err := store.OpenSQLite(ctx, cfg.SessionDB)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		sessions = sqlite
	}

	orders := store.NewOrders(sessions.Session(opts.sessionID))
	sender := activities.NewNotificationActivities(cfg.DispatcherURL, sessions)
	notifier := checkout.LogNotifier{Logger: logger}

	orchestrator := checkout.New(sender, orders,
		checkout.WithNotifier(notifier),
		checkout.WithLogger(logger),
		checkout.WithTaxRate(cfg.TaxRate),
		checkout.WithItemConcurrency(cfg.ItemConcurrency),
	)
	outcome, err := orchestrator.Checkout(ctx, shoppingCart, customer)
	if err != nil {
		return err
	}

	resender := checkout.NewResender(sender, orders, checkout.WithNotifier(notifier), checkout.WithLogger(logger))
	view, err := checkout.Confirmation(ctx, orders, resender)
	if err != nil {
		return err
	}
	if opts.retry && view.Email != nil && view.Email.CanResend {
		if _, err := resender.Resend(ctx); err != nil {
			return err
		}
		if view, err = checkout.Confirmation(ctx, orders, resender); err != nil {
			return err
		}
	}

	return printJSON(map[string]any{
		"session_id":   opts.sessionID,
		"outcome":      outcome,
		"confirmation": view,
	})
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
