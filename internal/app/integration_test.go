package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ashascraft/storefront-backend/config"
	"github.com/ashascraft/storefront-backend/internal/app/controller"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	"github.com/ashascraft/storefront-backend/internal/db"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/ashascraft/storefront-backend/internal/router"
	"github.com/ashascraft/storefront-backend/internal/websocket"
	"github.com/ashascraft/storefront-backend/pkg/analytics"
	"github.com/ashascraft/storefront-backend/pkg/notify"
	"github.com/ashascraft/storefront-backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	alerts []string
	mails  []notify.Mail
	events []analytics.Event
}

func (r *recorder) Alert(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, text)
	return nil
}

func (r *recorder) Send(_ context.Context, mail notify.Mail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mails = append(r.mails, mail)
	return nil
}

func (r *recorder) Publish(_ context.Context, event analytics.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Close() error { return nil }

type TestServer struct {
	Router     *gin.Engine
	DB         *gorm.DB
	Dispatcher *service.OrderEventDispatcher
	Recorder   *recorder
}

func setupIntegrationTest(t *testing.T) *TestServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode, Environment: "test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	blacklist := redis.NewTokenBlacklist(nil)

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	rec := &recorder{}
	dispatcher := service.NewOrderEventDispatcher(hub, rec, rec, rec)

	authService := service.NewAuthService(userRepo, blacklist, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, tagRepo)
	settingsService := service.NewSettingsService(repository.NewSettingRepository(testDB))
	cartService := service.NewCartService(repository.NewMemoryCartSessionRepository(), productRepo, settingsService, rec)
	checkoutService := service.NewCheckoutService(cartService, orderRepo, service.NewOrderNumberGenerator("ACS", orderRepo), dispatcher)
	orderService := service.NewOrderService(orderRepo, productRepo, dispatcher)

	_, _, err = authService.EnsureAdmin("owner@ashascraft.test", "kantha-stitch-42", "Asha")
	require.NoError(t, err)

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewCatalogController(catalogService),
		controller.NewCartController(cartService),
		controller.NewCheckoutController(checkoutService, settingsService),
		controller.NewOrderController(orderService),
		controller.NewSettingsController(settingsService),
		controller.NewAdminProductController(service.NewProductService(productRepo, categoryRepo, tagRepo, nil)),
		controller.NewAdminTaxonomyController(service.NewTaxonomyService(categoryRepo, tagRepo), catalogService),
		controller.NewAdminOrderController(orderService, service.NewOrderExporter(orderRepo), hub, cfg.CORS.AllowedOrigins),
		controller.NewUploadController(service.NewUploadService(nil, 0)),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist),
		cfg,
	)

	return &TestServer{
		Router:     r.Setup(),
		DB:         testDB,
		Dispatcher: dispatcher,
		Recorder:   rec,
	}
}

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCompleteShopperJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	// 1. Admin logs in
	t.Log("Step 1: Admin login")
	w, resp := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "owner@ashascraft.test",
		"password": "kantha-stitch-42",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	adminAuth := map[string]string{
		"Authorization": "Bearer " + resp["tokens"].(map[string]interface{})["access_token"].(string),
	}

	// 2. Admin turns on the pixel and builds the catalog
	t.Log("Step 2: Enable pixel, create category and product")
	w, _ = ts.do(t, http.MethodPut, "/api/v1/admin/settings/meta_pixel", map[string]interface{}{
		"enabled":  true,
		"pixel_id": "123456789",
	}, adminAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = ts.do(t, http.MethodPost, "/api/v1/admin/categories", map[string]interface{}{"name": "Home Decor"}, adminAuth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := resp["category"].(map[string]interface{})["id"]

	w, resp = ts.do(t, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"title":       "Jute Wall Hanging",
		"price":       750,
		"stock_qty":   5,
		"category_id": categoryID,
		"featured":    true,
		"images":      []map[string]string{{"url": "https://cdn.test/products/jute.jpg"}},
	}, adminAuth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productID := resp["product"].(map[string]interface{})["id"]

	// 3. Shopper browses
	t.Log("Step 3: Browse catalog")
	w, resp = ts.do(t, http.MethodGet, "/api/v1/products?category=home-decor", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp["total"])

	w, resp = ts.do(t, http.MethodGet, "/api/v1/products/jute-wall-hanging", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 750, resp["product"].(map[string]interface{})["price"])

	// 4. Cart session is issued on first contact
	t.Log("Step 4: Add to cart")
	w, _ = ts.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	session := map[string]string{middleware.CartSessionHeader: w.Header().Get(middleware.CartSessionHeader)}
	require.NotEmpty(t, session[middleware.CartSessionHeader])

	w, resp = ts.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": productID, "quantity": 2}, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1500, resp["subtotal"])

	// 5. Checkout, cash on delivery
	t.Log("Step 5: Checkout")
	w, resp = ts.do(t, http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"customer_name":    "Farhana Rahman",
		"customer_phone":   "01712345678",
		"customer_email":   "farhana@example.com",
		"customer_address": "House 12, Road 5, Dhanmondi, Dhaka",
		"delivery_zone":    "inside_city",
	}, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := resp["order"].(map[string]interface{})
	orderNumber := order["order_number"].(string)
	assert.EqualValues(t, 1560, order["total"])

	ts.Dispatcher.Wait()
	ts.Recorder.mu.Lock()
	require.Len(t, ts.Recorder.alerts, 1)
	assert.Contains(t, ts.Recorder.alerts[0], orderNumber)
	require.Len(t, ts.Recorder.mails, 1)
	assert.Equal(t, "farhana@example.com", ts.Recorder.mails[0].To)
	require.Len(t, ts.Recorder.events, 2)
	assert.Equal(t, analytics.EventAddToCart, ts.Recorder.events[0].Name)
	assert.Equal(t, "purchase-"+orderNumber, ts.Recorder.events[1].ID)
	assert.Equal(t, "123456789", ts.Recorder.events[1].PixelID)
	ts.Recorder.mu.Unlock()

	// 6. Admin ships the order
	t.Log("Step 6: Admin updates status")
	w, resp = ts.do(t, http.MethodGet, "/api/v1/admin/orders?status=pending", nil, adminAuth)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, resp["total"])
	id := resp["orders"].([]interface{})[0].(map[string]interface{})["id"]

	w, _ = ts.do(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/orders/%v/status", id), map[string]string{"status": "shipped"}, adminAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 7. Shopper tracks the order
	t.Log("Step 7: Track order")
	w, resp = ts.do(t, http.MethodGet, "/api/v1/orders/track?order="+orderNumber+"&phone=01712345678", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "shipped", resp["order"].(map[string]interface{})["status"])
	assert.Equal(t, false, resp["timeline"].(map[string]interface{})["terminal"])
}

func TestHealthAndCORS(t *testing.T) {
	ts := setupIntegrationTest(t)

	w, resp := ts.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])

	w, _ = ts.do(t, http.MethodOptions, "/api/v1/cart", nil, map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), middleware.CartSessionHeader)
}
