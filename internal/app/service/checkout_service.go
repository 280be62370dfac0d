package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/pkg/logger"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidDeliveryZone  = errors.New("invalid delivery zone")
	ErrMissingCustomerField = errors.New("customer name, phone and address are required")
)

type CheckoutInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CustomerEmail   *string
	Notes           *string
	DeliveryZone    model.DeliveryZone
}

// CalculateDeliveryCharge is free at or above the free shipping threshold and the
// zone charge otherwise. A zero threshold makes every order ship free.
func CalculateDeliveryCharge(subtotal float64, zone model.DeliveryZone, charges model.DeliveryCharges) float64 {
	if subtotal >= charges.FreeShippingThreshold {
		return 0
	}
	return charges.ChargeFor(zone)
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, sessionID string, input CheckoutInput, settings model.Settings) (*model.Order, error)
}

type checkoutService struct {
	cartService CartService
	orderRepo   repository.OrderRepository
	numbers     *OrderNumberGenerator
	events      OrderEvents
}

func NewCheckoutService(
	cartService CartService,
	orderRepo repository.OrderRepository,
	numbers *OrderNumberGenerator,
	events OrderEvents,
) CheckoutService {
	return &checkoutService{
		cartService: cartService,
		orderRepo:   orderRepo,
		numbers:     numbers,
		events:      events,
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func (in CheckoutInput) normalized() (CheckoutInput, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerAddress = strings.TrimSpace(in.CustomerAddress)
	in.CustomerEmail = trimOptional(in.CustomerEmail)
	in.Notes = trimOptional(in.Notes)

	if in.CustomerName == "" || in.CustomerPhone == "" || in.CustomerAddress == "" {
		return in, ErrMissingCustomerField
	}
	if !in.DeliveryZone.Valid() {
		return in, ErrInvalidDeliveryZone
	}
	return in, nil
}

// PlaceOrder turns the session cart into a cash-on-delivery order. The order and its
// items are written together; the cart is cleared only after that write succeeds.
func (s *checkoutService) PlaceOrder(ctx context.Context, sessionID string, input CheckoutInput, settings model.Settings) (*model.Order, error) {
	input, err := input.normalized()
	if err != nil {
		return nil, err
	}

	c, err := s.cartService.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	subtotal := c.Subtotal()
	charge := CalculateDeliveryCharge(subtotal, input.DeliveryZone, settings.DeliveryCharges)

	items := make([]model.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		productID := item.Product.ID
		var image *string
		if url := item.Product.PrimaryImageURL(); url != "" {
			image = &url
		}
		items = append(items, model.OrderItem{
			ProductID:     &productID,
			TitleSnapshot: item.Product.Title,
			PriceSnapshot: item.Product.Price,
			ImageSnapshot: image,
			Qty:           item.Quantity,
		})
	}

	order := &model.Order{
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerEmail:   input.CustomerEmail,
		CustomerAddress: input.CustomerAddress,
		Notes:           input.Notes,
		DeliveryZone:    input.DeliveryZone,
		Status:          model.OrderStatusPending,
		Subtotal:        subtotal,
		DeliveryCharge:  charge,
		Total:           subtotal + charge,
		PaymentMethod:   model.PaymentCashOnDelivery,
	}

	if err := s.create(order, items); err != nil {
		logger.Error("Checkout failed", err, map[string]interface{}{
			"session_id": sessionID,
			"items":      len(items),
		})
		return nil, err
	}

	if err := s.cartService.Clear(ctx, sessionID); err != nil {
		logger.Warn("Order placed but cart not cleared", map[string]interface{}{
			"order_number": order.OrderNumber,
			"error":        err.Error(),
		})
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id":        order.ID,
		"order_number":    order.OrderNumber,
		"subtotal":        order.Subtotal,
		"delivery_charge": order.DeliveryCharge,
		"total":           order.Total,
		"zone":            order.DeliveryZone,
	})

	if s.events != nil {
		s.events.OrderCreated(*order, settings)
	}
	return order, nil
}

// create retries with a fresh number when another checkout took ours between the
// existence check and the insert.
func (s *checkoutService) create(order *model.Order, items []model.OrderItem) error {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number, err := s.numbers.Next()
		if err != nil {
			return err
		}
		order.ID = 0
		order.OrderNumber = number
		order.OrderItems = append([]model.OrderItem(nil), items...)

		err = s.orderRepo.CreateWithItems(order)
		if err == nil {
			return nil
		}
		if !repository.IsDuplicateKey(err) {
			return fmt.Errorf("failed to create order: %w", err)
		}
		logger.Warn("Order number collision, retrying", map[string]interface{}{
			"order_number": number,
			"attempt":      attempt + 1,
		})
	}
	return ErrOrderNumberExhausted
}
