package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aswathylr-builds/order-confirmation/models"
)

// Session keys shared by checkout and the confirmation page
const (
	KeyLastOrder   = "lastOrderData"
	KeyOrderStatus = "orderDetails"
)

// Orders reads and writes the last order and its delivery status in one
// session. Last write wins.
type Orders struct {
	kv KV
}

// NewOrders wraps a session KV
func NewOrders(kv KV) *Orders {
	return &Orders{kv: kv}
}

// SaveLastOrder stores the primary payload so it can be resent later
func (o *Orders) SaveLastOrder(ctx context.Context, payload models.OrderPayload) error {
	return o.put(ctx, KeyLastOrder, payload)
}

// LastOrder returns the stored primary payload
func (o *Orders) LastOrder(ctx context.Context) (models.OrderPayload, bool, error) {
	var payload models.OrderPayload
	ok, err := o.get(ctx, KeyLastOrder, &payload)
	return payload, ok, err
}

// SaveStatus replaces the stored delivery status
func (o *Orders) SaveStatus(ctx context.Context, status models.OrderStatus) error {
	return o.put(ctx, KeyOrderStatus, status)
}

// Status returns the stored delivery status
func (o *Orders) Status(ctx context.Context) (models.OrderStatus, bool, error) {
	var status models.OrderStatus
	ok, err := o.get(ctx, KeyOrderStatus, &status)
	return status, ok, err
}

// UpdateStatus applies fn to the stored status (or a zero status) and saves it
func (o *Orders) UpdateStatus(ctx context.Context, fn func(*models.OrderStatus)) (models.OrderStatus, error) {
	status, _, err := o.Status(ctx)
	if err != nil {
		return status, err
	}
	fn(&status)
	return status, o.SaveStatus(ctx, status)
}

func (o *Orders) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return o.kv.Set(ctx, key, string(data))
}

func (o *Orders) get(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := o.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}
