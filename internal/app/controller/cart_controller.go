package controller

import (
	"errors"
	"net/http"

	"github.com/ashascraft/storefront-backend/internal/app/cart"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,gte=1"`
}

type UpdateCartItemRequest struct {
	// Zero or less removes the line.
	Quantity *int `json:"quantity" binding:"required"`
}

// CartResponse is the body of every cart endpoint.
type CartResponse struct {
	SessionID string      `json:"session_id"`
	Items     []cart.Item `json:"items"`
	ItemCount int         `json:"item_count"`
	Subtotal  float64     `json:"subtotal"`
}

func cartResponse(sessionID string, ct *cart.Cart) CartResponse {
	items := ct.Items
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{
		SessionID: sessionID,
		Items:     items,
		ItemCount: ct.ItemCount(),
		Subtotal:  ct.Subtotal(),
	}
}

// GetCart returns the session cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSessionID(c)

	ct, err := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("Failed to load cart", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.InternalError(c, "Could not load your cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse(sessionID, ct))
}

// AddItem adds a product to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSessionID(c)

	var req AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ct, err := ctrl.cartService.AddItem(c.Request.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			log.Warn("Add to cart failed: product not found", map[string]interface{}{
				"product_id": req.ProductID,
			})
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrProductOutOfStock):
			apperrors.Conflict(c, apperrors.ProductOutOfStock, "This product is out of stock")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity must be at least 1")
		default:
			log.Error("Failed to add item to cart", err, map[string]interface{}{
				"session_id": sessionID,
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "Could not update your cart")
		}
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": req.ProductID,
	})
	c.JSON(http.StatusOK, cartResponse(sessionID, ct))
}

// UpdateItem sets the quantity of a cart line
// PUT /api/v1/cart/items/:product_id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSessionID(c)

	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	ct, err := ctrl.cartService.UpdateItem(c.Request.Context(), sessionID, productID, *req.Quantity)
	if err != nil {
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
		})
		apperrors.InternalError(c, "Could not update your cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse(sessionID, ct))
}

// RemoveItem drops a line from the cart
// DELETE /api/v1/cart/items/:product_id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSessionID(c)

	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	ct, err := ctrl.cartService.RemoveItem(c.Request.Context(), sessionID, productID)
	if err != nil {
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
		})
		apperrors.InternalError(c, "Could not update your cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse(sessionID, ct))
}

// Clear empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) Clear(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSessionID(c)

	if err := ctrl.cartService.Clear(c.Request.Context(), sessionID); err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.InternalError(c, "Could not clear your cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse(sessionID, cart.New()))
}
