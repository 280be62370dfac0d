package service

import (
	"testing"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumberGenerator_Format(t *testing.T) {
	repo := repository.NewOrderRepository(setupTestDB(t))
	gen := NewOrderNumberGenerator(" acs ", repo)
	gen.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }

	number, err := gen.Next()
	require.NoError(t, err)
	assert.Regexp(t, `^ACS-261016-[A-Z2-9]{6}$`, number)
	assert.NotContains(t, number[len(number)-6:], "0")
	assert.NotContains(t, number[len(number)-6:], "O")
}

func TestOrderNumberGenerator_SkipsTakenNumbers(t *testing.T) {
	testDB := setupTestDB(t)
	repo := repository.NewOrderRepository(testDB)
	require.NoError(t, repo.CreateWithItems(&model.Order{
		OrderNumber:     "HC-261016-AAAAAA",
		CustomerName:    "Existing",
		CustomerPhone:   "01700000000",
		CustomerAddress: "Somewhere",
		DeliveryZone:    model.ZoneInsideCity,
		Status:          model.OrderStatusPending,
		PaymentMethod:   model.PaymentCashOnDelivery,
		OrderItems:      []model.OrderItem{{TitleSnapshot: "Item", PriceSnapshot: 1, Qty: 1}},
	}))

	gen := NewOrderNumberGenerator("HC", repo)
	gen.now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }
	tokens := []string{"AAAAAA", "BBBBBB"}
	gen.token = func() (string, error) {
		next := tokens[0]
		tokens = tokens[1:]
		return next, nil
	}

	number, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, "HC-261016-BBBBBB", number)
}

func TestOrderNumberGenerator_Exhausted(t *testing.T) {
	testDB := setupTestDB(t)
	repo := repository.NewOrderRepository(testDB)
	require.NoError(t, repo.CreateWithItems(&model.Order{
		OrderNumber:     "ACS-261016-AAAAAA",
		CustomerName:    "Existing",
		CustomerPhone:   "01700000000",
		CustomerAddress: "Somewhere",
		DeliveryZone:    model.ZoneInsideCity,
		Status:          model.OrderStatusPending,
		PaymentMethod:   model.PaymentCashOnDelivery,
		OrderItems:      []model.OrderItem{{TitleSnapshot: "Item", PriceSnapshot: 1, Qty: 1}},
	}))

	gen := NewOrderNumberGenerator("", repo)
	gen.now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }
	gen.token = func() (string, error) { return "AAAAAA", nil }

	_, err := gen.Next()
	assert.ErrorIs(t, err, ErrOrderNumberExhausted)
}
