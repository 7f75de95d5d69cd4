package dispatcher

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/aswathylr-builds/order-confirmation/models"
)

// orderRequest is the request body as clients actually send it. Scalars take
// either a string or a number; other JSON kinds decode as absent and are left
// to validation.
type orderRequest struct {
	OrderID      looseString     `json:"orderId"`
	CustomerName looseString     `json:"customerName"`
	Email        looseString     `json:"email"`
	PhoneNumber  looseString     `json:"phoneNumber"`
	OrderTotal   looseNumber     `json:"orderTotal"`
	Items        json.RawMessage `json:"items"`
}

type requestItem struct {
	Name     looseString `json:"name"`
	Quantity looseNumber `json:"quantity"`
	Price    looseNumber `json:"price"`
}

// decodeOrder reads a syntactically valid body. A body that is not an object,
// or an items value that is not an array, yields empty fields rather than an
// error so validation reports it in its usual order.
func decodeOrder(body []byte) (models.OrderPayload, error) {
	var req orderRequest
	var typeErr *json.UnmarshalTypeError
	if err := json.Unmarshal(body, &req); err != nil && !errors.As(err, &typeErr) {
		return models.OrderPayload{}, err
	}

	payload := models.OrderPayload{
		OrderID:      string(req.OrderID),
		CustomerName: string(req.CustomerName),
		Email:        string(req.Email),
		PhoneNumber:  string(req.PhoneNumber),
		OrderTotal:   float64(req.OrderTotal),
	}

	if len(req.Items) == 0 || req.Items[0] != '[' {
		return payload, nil
	}
	var items []requestItem
	if err := json.Unmarshal(req.Items, &items); err != nil && !errors.As(err, &typeErr) {
		return models.OrderPayload{}, err
	}
	payload.Items = make([]models.LineItem, 0, len(items))
	for _, item := range items {
		payload.Items = append(payload.Items, models.LineItem{
			Name:     string(item.Name),
			Quantity: int(item.Quantity),
			Price:    float64(item.Price),
		})
	}
	return payload, nil
}

// looseString accepts a JSON string or the literal text of a number
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) == 0:
	case data[0] == '"':
		var v string
		if json.Unmarshal(data, &v) == nil {
			*s = looseString(v)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*s = looseString(data)
	}
	return nil
}

// looseNumber accepts a JSON number or a numeric string; anything else is 0
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if json.Unmarshal(data, &v) == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				*n = looseNumber(f)
			}
		}
		return nil
	}
	var f float64
	if json.Unmarshal(data, &f) == nil {
		*n = looseNumber(f)
	}
	return nil
}
