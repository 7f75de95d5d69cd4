package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathylr-builds/order-confirmation/models"
)

func TestDecodeOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.OrderPayload
	}{
		{
			name: "well typed",
			body: `{"orderId":"1","customerName":"A","email":"a@x.com","phoneNumber":"+91","orderTotal":10.5,"items":[{"name":"W","quantity":1,"price":10.5}]}`,
			want: models.OrderPayload{OrderID: "1", CustomerName: "A", Email: "a@x.com", PhoneNumber: "+91", OrderTotal: 10.5,
				Items: []models.LineItem{{Name: "W", Quantity: 1, Price: 10.5}}},
		},
		{
			name: "numbers as strings and strings as numbers",
			body: `{"orderId":42,"orderTotal":" 99 ","items":[{"quantity":"3","price":"7.25"}]}`,
			want: models.OrderPayload{OrderID: "42", OrderTotal: 99, Items: []models.LineItem{{Quantity: 3, Price: 7.25}}},
		},
		{
			name: "items not an array keeps other fields",
			body: `{"orderId":"1","customerName":"A","email":"a@x.com","items":"Widget"}`,
			want: models.OrderPayload{OrderID: "1", CustomerName: "A", Email: "a@x.com"},
		},
		{
			name: "unsupported kinds are absent",
			body: `{"orderId":true,"email":["a@x.com"],"orderTotal":"lots","items":["Widget"]}`,
			want: models.OrderPayload{Items: []models.LineItem{{}}},
		},
		{name: "array body", body: `[1,2]`},
		{name: "null body", body: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeOrder([]byte(tt.body))

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
