package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	"github.com/ashascraft/storefront-backend/internal/db"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/ashascraft/storefront-backend/internal/storage"
	ws "github.com/ashascraft/storefront-backend/internal/websocket"
	"github.com/ashascraft/storefront-backend/pkg/redis"
	"github.com/ashascraft/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "controller-test-secret"

type testEnv struct {
	router      *gin.Engine
	db          *gorm.DB
	hub         *ws.Hub
	blobs       *memoryBlobs
	authService service.AuthService
}

// memoryBlobs is a BlobStorage without presign support.
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string]int
}

func (m *memoryBlobs) Upload(_ context.Context, folder, filename, contentType string, body io.Reader, _ int64) (*storage.UploadResult, error) {
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return nil, err
	}
	key := storage.ObjectKey(folder, filename, contentType)
	m.mu.Lock()
	m.objects[key] = int(n)
	m.mu.Unlock()
	return &storage.UploadResult{URL: m.PublicURL(key), Key: key}, nil
}

func (m *memoryBlobs) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (m *memoryBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	blacklist := redis.NewTokenBlacklist(nil)
	blobs := &memoryBlobs{objects: map[string]int{}}

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	authService := service.NewAuthService(repository.NewUserRepository(testDB), blacklist, testJWTSecret, 15*time.Minute, time.Hour)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, tagRepo)
	cartService := service.NewCartService(repository.NewMemoryCartSessionRepository(), productRepo, nil, nil)
	settingsService := service.NewSettingsService(repository.NewSettingRepository(testDB))
	checkoutService := service.NewCheckoutService(cartService, orderRepo, service.NewOrderNumberGenerator("ACS", orderRepo), nil)
	orderService := service.NewOrderService(orderRepo, productRepo, nil)
	productService := service.NewProductService(productRepo, categoryRepo, tagRepo, blobs)
	taxonomyService := service.NewTaxonomyService(categoryRepo, tagRepo)
	uploadService := service.NewUploadService(blobs, 0)

	authCtrl := NewAuthController(authService)
	catalogCtrl := NewCatalogController(catalogService)
	cartCtrl := NewCartController(cartService)
	checkoutCtrl := NewCheckoutController(checkoutService, settingsService)
	orderCtrl := NewOrderController(orderService)
	settingsCtrl := NewSettingsController(settingsService)
	productCtrl := NewAdminProductController(productService)
	taxonomyCtrl := NewAdminTaxonomyController(taxonomyService, catalogService)
	adminOrderCtrl := NewAdminOrderController(orderService, service.NewOrderExporter(orderRepo), hub, []string{"http://localhost:5173"})
	uploadCtrl := NewUploadController(uploadService)

	auth := middleware.NewAuthMiddleware(testJWTSecret, blacklist)
	cartSession := middleware.CartSession(false)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", authCtrl.Login)
	v1.POST("/auth/logout", auth.Authenticate(), authCtrl.Logout)
	v1.GET("/auth/me", auth.Authenticate(), authCtrl.Me)

	v1.GET("/settings", settingsCtrl.GetPublic)
	v1.GET("/categories", catalogCtrl.ListCategories)
	v1.GET("/categories/:slug", catalogCtrl.GetCategory)
	v1.GET("/subcategories", catalogCtrl.ListSubcategories)
	v1.GET("/tags", catalogCtrl.ListTags)
	v1.GET("/products", catalogCtrl.ListProducts)
	v1.GET("/products/featured", catalogCtrl.ListFeatured)
	v1.GET("/products/:slug", catalogCtrl.GetProduct)
	v1.GET("/products/:slug/related", catalogCtrl.ListRelated)

	v1.GET("/cart", cartSession, cartCtrl.GetCart)
	v1.DELETE("/cart", cartSession, cartCtrl.Clear)
	v1.POST("/cart/items", cartSession, cartCtrl.AddItem)
	v1.PUT("/cart/items/:product_id", cartSession, cartCtrl.UpdateItem)
	v1.DELETE("/cart/items/:product_id", cartSession, cartCtrl.RemoveItem)
	v1.POST("/checkout", cartSession, checkoutCtrl.PlaceOrder)
	v1.GET("/orders/track", orderCtrl.TrackOrder)
	v1.GET("/orders/:order_number", orderCtrl.GetConfirmation)

	admin := v1.Group("/admin", auth.Authenticate(), auth.RequireAdmin())
	admin.GET("/dashboard", adminOrderCtrl.Dashboard)
	admin.GET("/ws", adminOrderCtrl.LiveFeed)
	admin.GET("/products", productCtrl.ListProducts)
	admin.POST("/products", productCtrl.CreateProduct)
	admin.GET("/products/:id", productCtrl.GetProduct)
	admin.PUT("/products/:id", productCtrl.UpdateProduct)
	admin.DELETE("/products/:id", productCtrl.DeleteProduct)
	admin.PUT("/products/:id/primary-image", productCtrl.SetPrimaryImage)
	admin.GET("/categories", taxonomyCtrl.ListCategories)
	admin.POST("/categories", taxonomyCtrl.CreateCategory)
	admin.PUT("/categories/:id", taxonomyCtrl.UpdateCategory)
	admin.DELETE("/categories/:id", taxonomyCtrl.DeleteCategory)
	admin.GET("/subcategories", taxonomyCtrl.ListSubcategories)
	admin.POST("/subcategories", taxonomyCtrl.CreateSubcategory)
	admin.DELETE("/subcategories/:id", taxonomyCtrl.DeleteSubcategory)
	admin.GET("/tags", taxonomyCtrl.ListTags)
	admin.POST("/tags", taxonomyCtrl.CreateTag)
	admin.DELETE("/tags/:id", taxonomyCtrl.DeleteTag)
	admin.GET("/orders", adminOrderCtrl.ListOrders)
	admin.GET("/orders/export", adminOrderCtrl.ExportOrders)
	admin.GET("/orders/:id", adminOrderCtrl.GetOrder)
	admin.PUT("/orders/:id/status", adminOrderCtrl.UpdateStatus)
	admin.PUT("/orders/:id/notes", adminOrderCtrl.UpdateNotes)
	admin.GET("/settings", settingsCtrl.GetAll)
	admin.PUT("/settings/:section", settingsCtrl.UpdateSection)
	admin.POST("/uploads/images", uploadCtrl.UploadImage)
	admin.POST("/uploads/presigned-url", uploadCtrl.GeneratePresignedURL)

	return &testEnv{
		router:      router,
		db:          testDB,
		hub:         hub,
		blobs:       blobs,
		authService: authService,
	}
}

func (e *testEnv) token(t *testing.T, role model.UserRole) string {
	t.Helper()
	tokens, err := util.GenerateTokenPair(1, "owner@ashascraft.test", string(role), testJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func (e *testEnv) adminToken(t *testing.T) string {
	return e.token(t, model.RoleAdmin)
}

// request sends body as JSON. headers are given as key, value pairs.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) admin(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.request(t, method, path, body, "Authorization", "Bearer "+e.adminToken(t))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) createCategory(t *testing.T, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, e.db.Create(category).Error)
	return category
}

func (e *testEnv) createProduct(t *testing.T, p model.Product) *model.Product {
	t.Helper()
	if p.Version == 0 {
		p.Version = 1
	}
	require.NoError(t, repository.NewProductRepository(e.db).Create(&p, nil))
	return &p
}

func uintPtr(v uint) *uint {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
