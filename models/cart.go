package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the catalog view of a sellable item
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	// Discount is a percentage, zero means full price
	Discount float64 `json:"discount,omitempty"`
	Stock    int     `json:"stock"`
}

// UnitPrice returns the price after discount
func (p Product) UnitPrice() decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	if p.Discount == 0 {
		return price
	}
	off := decimal.NewFromFloat(p.Discount).Div(decimal.NewFromInt(100))
	return price.Mul(decimal.NewFromInt(1).Sub(off))
}

// CartItem is one cart line
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns the discounted price times quantity
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.UnitPrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Customer holds the contact fields captured at checkout
type Customer struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	WhatsAppNumber      string `json:"whatsappNumber,omitempty"`
	UsePhoneForWhatsApp bool   `json:"usePhoneForWhatsapp"`
	// ItemEmails maps product IDs to an extra recipient for that line
	ItemEmails map[string]string `json:"itemEmails,omitempty"`
}

// Name returns the display name used in confirmations
func (c Customer) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// WhatsAppRecipient returns the number WhatsApp notifications go to
func (c Customer) WhatsAppRecipient() string {
	if c.UsePhoneForWhatsApp {
		return c.Phone
	}
	return c.WhatsAppNumber
}
