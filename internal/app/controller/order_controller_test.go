package controller

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createOrder(t *testing.T, number, phone string, status model.OrderStatus) *model.Order {
	t.Helper()
	order := &model.Order{
		OrderNumber:     number,
		CustomerName:    "Nasrin Akter",
		CustomerPhone:   phone,
		CustomerAddress: "Mirpur 10, Dhaka",
		InternalNotes:   stringPtr("call before delivery"),
		DeliveryZone:    model.ZoneInsideCity,
		Status:          status,
		Subtotal:        1500,
		DeliveryCharge:  60,
		Total:           1560,
		PaymentMethod:   model.PaymentCashOnDelivery,
		OrderItems: []model.OrderItem{
			{TitleSnapshot: "Jute Wall Hanging", PriceSnapshot: 1500, Qty: 1},
		},
	}
	require.NoError(t, repository.NewOrderRepository(e.db).CreateWithItems(order))
	return order
}

func trackPath(number, phone string) string {
	q := url.Values{}
	if number != "" {
		q.Set("order", number)
	}
	if phone != "" {
		q.Set("phone", phone)
	}
	return "/api/v1/orders/track?" + q.Encode()
}

func TestOrderController_TrackOrder(t *testing.T) {
	env := setupControllerTest(t)
	env.createOrder(t, "ACS-261016-K7M4QX", "01812345678", model.OrderStatusProcessing)

	w := env.request(t, http.MethodGet, trackPath("ACS-261016-K7M4QX", "01812345678"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, "ACS-261016-K7M4QX", order["order_number"])
	assert.NotContains(t, order, "internal_notes")
	assert.Len(t, order["order_items"], 1)

	timeline := body["timeline"].(map[string]interface{})
	assert.Equal(t, false, timeline["terminal"])
	steps := timeline["steps"].([]interface{})
	require.Len(t, steps, 5)
	for i, raw := range steps {
		step := raw.(map[string]interface{})
		assert.Equal(t, i <= 2, step["completed"], "step %d", i)
		assert.Equal(t, i == 2, step["current"], "step %d", i)
	}
}

func TestOrderController_TrackOrder_Terminal(t *testing.T) {
	env := setupControllerTest(t)
	env.createOrder(t, "ACS-261016-CANCEL", "01812345678", model.OrderStatusCancelled)

	w := env.request(t, http.MethodGet, trackPath("ACS-261016-CANCEL", "01812345678"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	timeline := decode(t, w)["timeline"].(map[string]interface{})
	assert.Equal(t, true, timeline["terminal"])
	assert.Empty(t, timeline["steps"])
}

func TestOrderController_TrackOrder_Mismatch(t *testing.T) {
	env := setupControllerTest(t)
	env.createOrder(t, "ACS-261016-K7M4QX", "01812345678", model.OrderStatusPending)

	tests := []struct {
		name   string
		number string
		phone  string
	}{
		{name: "wrong phone", number: "ACS-261016-K7M4QX", phone: "01999999999"},
		{name: "wrong number", number: "ACS-261016-ZZZZZZ", phone: "01812345678"},
		{name: "both wrong", number: "ACS-000000-AAAAAA", phone: "01700000000"},
		{name: "lowercase number", number: "acs-261016-k7m4qx", phone: "01812345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, http.MethodGet, trackPath(tt.number, tt.phone), nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, errors.OrderNotFound, decode(t, w)["error"])
		})
	}
}

func TestOrderController_TrackOrder_MissingParams(t *testing.T) {
	env := setupControllerTest(t)

	w := env.request(t, http.MethodGet, trackPath("ACS-261016-K7M4QX", ""), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "phone")
	assert.NotContains(t, fields, "order")
}

func TestOrderController_GetConfirmation(t *testing.T) {
	env := setupControllerTest(t)
	env.createOrder(t, "ACS-261016-K7M4QX", "01812345678", model.OrderStatusPending)

	w := env.request(t, http.MethodGet, "/api/v1/orders/ACS-261016-K7M4QX", nil)
	require.Equal(t, http.StatusOK, w.Code)
	order := decode(t, w)["order"].(map[string]interface{})
	assert.EqualValues(t, 1560, order["total"])
	assert.NotContains(t, order, "internal_notes")

	w = env.request(t, http.MethodGet, "/api/v1/orders/ACS-000000-NOPE00", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
