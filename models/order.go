package models

import "encoding/json"

// LineItem is one line of an order as it appears in a confirmation
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderPayload asks for one recipient to be notified about one order or sub-order
type OrderPayload struct {
	OrderID      string     `json:"orderId"`
	CustomerName string     `json:"customerName"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	OrderTotal   float64    `json:"orderTotal"`
	Items        []LineItem `json:"items"`
}

// ChannelResult is the outcome of a single channel attempt
type ChannelResult struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// DispatchResponse is the body of a handled dispatcher request
type DispatchResponse struct {
	Success  bool          `json:"success"`
	Email    ChannelResult `json:"email"`
	WhatsApp ChannelResult `json:"whatsapp"`
}

// ErrorResponse is the body of a rejected dispatcher request
type ErrorResponse struct {
	Success      bool            `json:"success"`
	Error        string          `json:"error"`
	ReceivedData json.RawMessage `json:"receivedData,omitempty"`
}

// DeliveryStatus tracks one channel for the last order
type DeliveryStatus string

// Delivery statuses
const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryStatusFrom maps a channel outcome onto a stored status
func DeliveryStatusFrom(success bool) DeliveryStatus {
	if success {
		return DeliverySent
	}
	return DeliveryFailed
}

// OrderStatus is the per-channel delivery state of the last order in a session
type OrderStatus struct {
	OrderID        string         `json:"orderId"`
	Email          string         `json:"email"`
	EmailStatus    DeliveryStatus `json:"emailStatus"`
	WhatsAppNumber string         `json:"whatsappNumber,omitempty"`
	WhatsAppStatus DeliveryStatus `json:"whatsappStatus"`
	OrderDate      string         `json:"orderDate"`
}
