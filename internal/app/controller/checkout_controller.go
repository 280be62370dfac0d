package controller

import (
	"errors"
	"net/http"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
	settingsService service.SettingsService
}

func NewCheckoutController(checkoutService service.CheckoutService, settingsService service.SettingsService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		settingsService: settingsService,
	}
}

type CheckoutRequest struct {
	CustomerName    string  `json:"customer_name" binding:"required,notblank"`
	CustomerPhone   string  `json:"customer_phone" binding:"required,notblank"`
	CustomerAddress string  `json:"customer_address" binding:"required,notblank"`
	CustomerEmail   *string `json:"customer_email" binding:"omitempty,email"`
	Notes           *string `json:"notes"`
	DeliveryZone    string  `json:"delivery_zone" binding:"required,oneof=inside_city outside_city"`
}

// PlaceOrder turns the session cart into a cash on delivery order
// POST /api/v1/checkout
func (ctrl *CheckoutController) PlaceOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSessionID(c)

	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := ctrl.settingsService.Load()
	if err != nil {
		log.Error("Failed to load settings for checkout", err, nil)
		apperrors.InternalError(c, "Could not place your order. Please try again")
		return
	}

	order, err := ctrl.checkoutService.PlaceOrder(c.Request.Context(), sessionID, service.CheckoutInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerEmail:   req.CustomerEmail,
		Notes:           req.Notes,
		DeliveryZone:    model.DeliveryZone(req.DeliveryZone),
	}, settings)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			log.Warn("Checkout failed: empty cart", map[string]interface{}{
				"session_id": sessionID,
			})
			apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart is empty")
		case errors.Is(err, service.ErrMissingCustomerField):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Name, phone and address are required")
		case errors.Is(err, service.ErrInvalidDeliveryZone):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Choose a delivery zone")
		case errors.Is(err, service.ErrOrderNumberExhausted):
			log.Error("Could not allocate an order number", err, nil)
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.OrderNumberExhausted, "Could not place your order. Please try again")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"session_id": sessionID,
			})
			apperrors.InternalError(c, "Could not place your order. Please try again")
		}
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order.Public(),
	})
}
