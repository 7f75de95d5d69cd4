package validation

import (
	"errors"
	"strings"

	"github.com/aswathylr-builds/order-confirmation/models"
)

// Messages are returned verbatim to dispatcher clients.
var (
	ErrMissingFields = errors.New("Missing required order details")
	ErrEmptyItems    = errors.New("Order must contain at least one item")
)

// Result reports whether a payload may be sent
type Result struct {
	Valid bool
	Err   error
}

// Error returns the rejection message, empty when valid
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Validate checks the minimum fields a confirmation needs before any send
func Validate(p models.OrderPayload) Result {
	if blank(p.OrderID) || blank(p.CustomerName) || blank(p.Email) {
		return Result{Err: ErrMissingFields}
	}
	if len(p.Items) == 0 {
		return Result{Err: ErrEmptyItems}
	}
	return Result{Valid: true}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
