package router

import (
	"net/http"

	"github.com/ashascraft/storefront-backend/config"
	"github.com/ashascraft/storefront-backend/internal/app/controller"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController          *controller.AuthController
	catalogController       *controller.CatalogController
	cartController          *controller.CartController
	checkoutController      *controller.CheckoutController
	orderController         *controller.OrderController
	settingsController      *controller.SettingsController
	adminProductController  *controller.AdminProductController
	adminTaxonomyController *controller.AdminTaxonomyController
	adminOrderController    *controller.AdminOrderController
	uploadController        *controller.UploadController
	authMiddleware          *middleware.AuthMiddleware
	config                  *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	catalogController *controller.CatalogController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	settingsController *controller.SettingsController,
	adminProductController *controller.AdminProductController,
	adminTaxonomyController *controller.AdminTaxonomyController,
	adminOrderController *controller.AdminOrderController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:          authController,
		catalogController:       catalogController,
		cartController:          cartController,
		checkoutController:      checkoutController,
		orderController:         orderController,
		settingsController:      settingsController,
		adminProductController:  adminProductController,
		adminTaxonomyController: adminTaxonomyController,
		adminOrderController:    adminOrderController,
		uploadController:        uploadController,
		authMiddleware:          authMiddleware,
		config:                  cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	middleware.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	cartSession := middleware.CartSession(r.config.IsProduction())

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		v1.GET("/settings", r.settingsController.GetPublic)

		v1.GET("/categories", r.catalogController.ListCategories)
		v1.GET("/categories/:slug", r.catalogController.GetCategory)
		v1.GET("/subcategories", r.catalogController.ListSubcategories)
		v1.GET("/tags", r.catalogController.ListTags)

		products := v1.Group("/products")
		{
			products.GET("", r.catalogController.ListProducts)
			products.GET("/featured", r.catalogController.ListFeatured)
			products.GET("/:slug", r.catalogController.GetProduct)
			products.GET("/:slug/related", r.catalogController.ListRelated)
		}

		cart := v1.Group("/cart")
		cart.Use(cartSession)
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.Clear)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:product_id", r.cartController.UpdateItem)
			cart.DELETE("/items/:product_id", r.cartController.RemoveItem)
		}

		v1.POST("/checkout", cartSession, r.checkoutController.PlaceOrder)

		orders := v1.Group("/orders")
		{
			orders.GET("/track", r.orderController.TrackOrder)
			orders.GET("/:order_number", r.orderController.GetConfirmation)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.GET("/dashboard", r.adminOrderController.Dashboard)
			admin.GET("/ws", r.adminOrderController.LiveFeed)

			admin.GET("/products", r.adminProductController.ListProducts)
			admin.POST("/products", r.adminProductController.CreateProduct)
			admin.GET("/products/:id", r.adminProductController.GetProduct)
			admin.PUT("/products/:id", r.adminProductController.UpdateProduct)
			admin.DELETE("/products/:id", r.adminProductController.DeleteProduct)
			admin.PUT("/products/:id/primary-image", r.adminProductController.SetPrimaryImage)

			admin.GET("/categories", r.adminTaxonomyController.ListCategories)
			admin.POST("/categories", r.adminTaxonomyController.CreateCategory)
			admin.PUT("/categories/:id", r.adminTaxonomyController.UpdateCategory)
			admin.DELETE("/categories/:id", r.adminTaxonomyController.DeleteCategory)

			admin.GET("/subcategories", r.adminTaxonomyController.ListSubcategories)
			admin.POST("/subcategories", r.adminTaxonomyController.CreateSubcategory)
			admin.PUT("/subcategories/:id", r.adminTaxonomyController.UpdateSubcategory)
			admin.DELETE("/subcategories/:id", r.adminTaxonomyController.DeleteSubcategory)

			admin.GET("/tags", r.adminTaxonomyController.ListTags)
			admin.POST("/tags", r.adminTaxonomyController.CreateTag)
			admin.PUT("/tags/:id", r.adminTaxonomyController.UpdateTag)
			admin.DELETE("/tags/:id", r.adminTaxonomyController.DeleteTag)

			admin.GET("/orders", r.adminOrderController.ListOrders)
			admin.GET("/orders/export", r.adminOrderController.ExportOrders)
			admin.GET("/orders/:id", r.adminOrderController.GetOrder)
			admin.PUT("/orders/:id/status", r.adminOrderController.UpdateStatus)
			admin.PUT("/orders/:id/notes", r.adminOrderController.UpdateNotes)

			admin.GET("/settings", r.settingsController.GetAll)
			admin.PUT("/settings/:section", r.settingsController.UpdateSection)

			admin.POST("/uploads/images", r.uploadController.UploadImage)
			admin.POST("/uploads/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+middleware.CartSessionHeader+", "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.CartSessionHeader+", "+middleware.RequestIDHeader+", Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
