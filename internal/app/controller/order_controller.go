package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// OrderController serves the guest-facing order pages.
type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// TrackOrder looks an order up by number and phone
// GET /api/v1/orders/track?order=&phone=
func (ctrl *OrderController) TrackOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	number := strings.TrimSpace(c.Query("order"))
	phone := strings.TrimSpace(c.Query("phone"))
	if number == "" || phone == "" {
		apperrors.RespondWithValidationError(c, missingFields(map[string]string{
			"order": number,
			"phone": phone,
		}))
		return
	}

	result, err := ctrl.orderService.TrackOrder(number, phone)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "No order matches that number and phone")
			return
		}
		log.Error("Failed to track order", err, nil)
		apperrors.ParseAndRespond(c, err, "track order")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetConfirmation returns the public view of a freshly placed order
// GET /api/v1/orders/:order_number
func (ctrl *OrderController) GetConfirmation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	number := c.Param("order_number")

	order, err := ctrl.orderService.GetConfirmation(number)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order confirmation", err, map[string]interface{}{
			"order_number": number,
		})
		apperrors.ParseAndRespond(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

func missingFields(values map[string]string) map[string]string {
	fields := map[string]string{}
	for name, v := range values {
		if v == "" {
			fields[name] = "This field is required"
		}
	}
	return fields
}
