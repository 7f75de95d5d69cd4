package checkout

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aswathylr-builds/order-confirmation/models"
)

// ItemPayload is a single-line confirmation for an extra recipient
type ItemPayload struct {
	ProductID string              `json:"productId"`
	Payload   models.OrderPayload `json:"payload"`
}

// Plan is every payload one checkout sends, primary first
type Plan struct {
	Primary models.OrderPayload `json:"primary"`
	Items   []ItemPayload       `json:"items,omitempty"`
}

// BuildPlan turns a cart snapshot into the primary payload and one payload
// per line whose override email is set and differs from the primary email.
// Item payloads follow cart order and never carry a phone number.
func BuildPlan(items []models.CartItem, customer models.Customer, orderID string, taxRate decimal.Decimal) Plan {
	name := customer.Name()
	primaryEmail := strings.TrimSpace(customer.Email)

	lines := make([]models.LineItem, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		lines = append(lines, lineItem(item))
		subtotal = subtotal.Add(item.LineTotal())
	}
	total := subtotal.Mul(decimal.NewFromInt(1).Add(taxRate))

	plan := Plan{
		Primary: models.OrderPayload{
			OrderID:      orderID,
			CustomerName: name,
			Email:        primaryEmail,
			PhoneNumber:  strings.TrimSpace(customer.WhatsAppRecipient()),
			OrderTotal:   total.InexactFloat64(),
			Items:        lines,
		},
	}

	for _, item := range items {
		override := strings.TrimSpace(customer.ItemEmails[item.Product.ID])
		if override == "" || override == primaryEmail {
			continue
		}
		plan.Items = append(plan.Items, ItemPayload{
			ProductID: item.Product.ID,
			Payload: models.OrderPayload{
				OrderID:      orderID + "-" + item.Product.ID,
				CustomerName: name,
				Email:        override,
				OrderTotal:   item.LineTotal().InexactFloat64(),
				Items:        []models.LineItem{lineItem(item)},
			},
		})
	}
	return plan
}

func lineItem(item models.CartItem) models.LineItem {
	return models.LineItem{
		Name:     item.Product.Name,
		Quantity: item.Quantity,
		Price:    item.Product.UnitPrice().InexactFloat64(),
	}
}

// NewOrderID returns a random 8-digit order number. Collisions between
// concurrent checkouts are not detected.
func NewOrderID() string {
	return strconv.Itoa(10000000 + rand.IntN(90000000))
}

// FormatOrderDate renders the date shown on the confirmation page
func FormatOrderDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
