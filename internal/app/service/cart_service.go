package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/cart"
	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/pkg/analytics"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductOutOfStock = errors.New("product is out of stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// CartService keeps one cart per session id. Every read re-prices the cart from the catalog.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*cart.Cart, error)
	AddItem(ctx context.Context, sessionID string, productID uint, quantity int) (*cart.Cart, error)
	UpdateItem(ctx context.Context, sessionID string, productID uint, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID uint) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type cartService struct {
	sessions    repository.CartSessionRepository
	productRepo repository.ProductRepository
	settings    SettingsService
	publisher   analytics.Publisher
}

// NewCartService wires the cart store. AddToCart events go to publisher while the
// Meta Pixel is enabled in settings; a nil settings service or publisher turns them off.
func NewCartService(
	sessions repository.CartSessionRepository,
	productRepo repository.ProductRepository,
	settings SettingsService,
	publisher analytics.Publisher,
) CartService {
	return &cartService{
		sessions:    sessions,
		productRepo: productRepo,
		settings:    settings,
		publisher:   publisher,
	}
}

func (s *cartService) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	lines, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return cart.New(), nil
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	c := cart.Hydrate(lines, byID)

	if len(c.Items) != len(lines) {
		logger.Debug("Cart lines dropped on hydrate", map[string]interface{}{
			"session_id": sessionID,
			"stored":     len(lines),
			"kept":       len(c.Items),
		})
	}
	return c, nil
}

func (s *cartService) save(ctx context.Context, sessionID string, c *cart.Cart) error {
	if err := s.sessions.Save(ctx, sessionID, c.Lines()); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return s.load(ctx, sessionID)
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, productID uint, quantity int) (*cart.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.Purchasable() {
		logger.Warn("Add to cart refused: out of stock", map[string]interface{}{
			"product_id": productID,
		})
		return nil, ErrProductOutOfStock
	}

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.AddItem(*product, quantity)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}

	logger.Debug("Item added to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   quantity,
	})
	s.trackAddToCart(ctx, *product, quantity)
	return c, nil
}

// trackAddToCart is best effort. A failure is logged and never fails the add.
func (s *cartService) trackAddToCart(ctx context.Context, product model.Product, quantity int) {
	if s.settings == nil || s.publisher == nil {
		return
	}
	settings, err := s.settings.Load()
	if err != nil {
		logger.Error("Failed to load settings for add to cart event", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return
	}
	if !settings.MetaPixel.Enabled {
		return
	}

	event := analytics.Event{
		ID:         "add-to-cart-" + uuid.New().String(),
		Name:       analytics.EventAddToCart,
		OccurredAt: time.Now(),
		PixelID:    settings.MetaPixel.PixelID,
		Properties: map[string]interface{}{
			"content_ids":  []uint{product.ID},
			"content_name": product.Title,
			"value":        product.Price * float64(quantity),
			"currency":     "BDT",
			"quantity":     quantity,
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish add to cart event", err, map[string]interface{}{
			"product_id": product.ID,
		})
	}
}

func (s *cartService) UpdateItem(ctx context.Context, sessionID string, productID uint, quantity int) (*cart.Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.UpdateQuantity(productID, quantity)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID uint) (*cart.Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.RemoveItem(productID)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
