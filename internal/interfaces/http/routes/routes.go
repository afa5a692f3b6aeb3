// internal/interfaces/http/routes/routes.go
package routes

import (
	"net/http"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/address"
	"github.com/eticaret/storefront/internal/domain/analytics"
	"github.com/eticaret/storefront/internal/domain/cart"
	"github.com/eticaret/storefront/internal/domain/checkout"
	"github.com/eticaret/storefront/internal/domain/favorite"
	"github.com/eticaret/storefront/internal/domain/inventory"
	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/domain/user"
	"github.com/eticaret/storefront/internal/infrastructure/cache"
	"github.com/eticaret/storefront/internal/interfaces/http/handlers"
	"github.com/eticaret/storefront/internal/interfaces/http/middleware"
	"github.com/eticaret/storefront/internal/pkg/auth"
	"github.com/eticaret/storefront/internal/pkg/email"
	"github.com/eticaret/storefront/internal/pkg/events"
	"github.com/eticaret/storefront/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies holds the services the routes are served by
type Dependencies struct {
	Config *config.Config
	Log    *logrus.Logger
	Cache  cache.Cache
	JWT    *auth.JWTManager

	Products   *product.Service
	Categories *product.CategoryService
	Carts      *cart.Service
	Addresses  *address.Service
	Stock      *inventory.Service
	Orders     *order.Service
	Checkout   *checkout.Service
	Analytics  *analytics.Service
	Favorites  *favorite.Service
	Users      *user.Service

	Invoices handlers.InvoiceRenderer
	Events   *events.Hub     // nil disables the admin order feed
	Mailer   *email.Notifier // nil when EMAIL_ENABLED is off
}

// NewDependencies wires every service on top of db and c. hub may be nil.
func NewDependencies(cfg *config.Config, log *logrus.Logger, db *gorm.DB, c cache.Cache, hub *events.Hub) *Dependencies {
	products := product.NewService(db, c, cfg, log)
	carts := cart.NewService(db, cfg, log)
	addresses := address.NewService(db, log)
	stock := inventory.NewService(db, cfg, log, products)

	jwtManager := auth.NewJWTManager(cfg)
	users := user.NewService(db, log, auth.NewPasswordManager(cfg), jwtManager, carts)

	var publishers []order.EventPublisher
	if hub != nil {
		publishers = append(publishers, hub)
	}
	var mailer *email.Notifier
	if cfg.Email.Enabled {
		mailer = email.NewNotifier(cfg, email.NewService(cfg, email.NewSMTPSender(cfg), log), users, log)
		publishers = append(publishers, mailer)
	}
	orders := order.NewService(db, cfg, log, carts, addresses, stock).WithPublisher(publishers...)

	return &Dependencies{
		Config:     cfg,
		Log:        log,
		Cache:      c,
		JWT:        jwtManager,
		Products:   products,
		Categories: product.NewCategoryService(db, c, log),
		Carts:      carts,
		Addresses:  addresses,
		Stock:      stock,
		Orders:     orders,
		Checkout:   checkout.NewService(db, cfg, log, carts, addresses, orders),
		Analytics:  analytics.NewService(db, cfg, log, products, stock),
		Favorites:  favorite.NewService(db, log, carts),
		Users:      users,
		Invoices:   pdf.NewService(cfg),
		Events:     hub,
		Mailer:     mailer,
	}
}

// Close flushes queued order mail
func (d *Dependencies) Close() {
	if d.Mailer != nil {
		d.Mailer.Close()
	}
}

// SetupRoutes registers the whole API on rg
func SetupRoutes(rg *gin.RouterGroup, d *Dependencies) {
	rg.Use(middleware.Session(d.Config))

	SetupAuthRoutes(rg, d)
	SetupCatalogRoutes(rg, d)
	SetupCartRoutes(rg, d)
	SetupOrderRoutes(rg, d)
	SetupAccountRoutes(rg, d)
	SetupAdminRoutes(rg, d)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, d *Dependencies) {
	authHandler := handlers.NewAuthHandler(d.Users, d.Log)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/profile", middleware.AuthMiddleware(d.JWT), authHandler.GetProfile)
	}
}

// SetupCatalogRoutes sets up the public catalog reads
func SetupCatalogRoutes(rg *gin.RouterGroup, d *Dependencies) {
	productHandler := handlers.NewProductHandler(d.Products, d.Log)
	categoryHandler := handlers.NewCategoryHandler(d.Categories, d.Log)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/featured", productHandler.GetFeatured)
		products.GET("/newest", productHandler.GetNewest)
		products.GET("/top-selling", productHandler.GetTopSelling)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/related", productHandler.GetRelated)
		products.GET("/:id/in-stock", productHandler.GetStockStatus)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/top-menu", categoryHandler.GetTopMenu)
		categories.GET("/:id", categoryHandler.GetCategory)
	}

	brands := rg.Group("/brands")
	{
		brands.GET("", categoryHandler.GetBrands)
		brands.GET("/:id", categoryHandler.GetBrand)
	}

	rg.GET("/sliders", categoryHandler.GetSliders)
}

// SetupCartRoutes sets up the cart; guests and users alike
func SetupCartRoutes(rg *gin.RouterGroup, d *Dependencies) {
	cartHandler := handlers.NewCartHandler(d.Carts, d.Log)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(d.JWT))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/summary", cartHandler.GetSummary)
		cartGroup.GET("/count", cartHandler.GetCount)
		cartGroup.POST("/add", cartHandler.AddToCart)
		cartGroup.POST("/update-quantity", cartHandler.UpdateQuantity)
		cartGroup.POST("/remove", cartHandler.RemoveItem)
		cartGroup.POST("/clear", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up checkout and the customer's orders
func SetupOrderRoutes(rg *gin.RouterGroup, d *Dependencies) {
	requireAuth := middleware.AuthMiddleware(d.JWT)
	checkoutHandler := handlers.NewCheckoutHandler(d.Checkout, d.Orders, d.Log)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Log)
	invoiceHandler := handlers.NewInvoiceHandler(d.Orders, d.Invoices, d.Log)

	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(requireAuth)
	{
		checkoutGroup.GET("", checkoutHandler.GetCheckout)
		checkoutGroup.POST("", checkoutHandler.PlaceOrder)
		checkoutGroup.POST("/validate", checkoutHandler.ValidateCheckout)
	}

	orders := rg.Group("/orders")
	orders.Use(requireAuth)
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/number/:number", orderHandler.GetOrderByNumber)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/status", orderHandler.GetOrderStatus)
		orders.GET("/:id/invoice", invoiceHandler.GenerateInvoice)
		orders.GET("/:id/invoice/preview", invoiceHandler.PreviewInvoice)
	}

	rg.POST("/order/cancel/:id", requireAuth, orderHandler.CancelOrder)
}

// SetupAccountRoutes sets up the address book and favorites
func SetupAccountRoutes(rg *gin.RouterGroup, d *Dependencies) {
	requireAuth := middleware.AuthMiddleware(d.JWT)
	addressHandler := handlers.NewUserAddressHandler(d.Addresses, d.Log)
	favoriteHandler := handlers.NewFavoriteHandler(d.Favorites, d.Log)

	addresses := rg.Group("/addresses")
	addresses.Use(requireAuth)
	{
		addresses.GET("", addressHandler.GetAddresses)
		addresses.POST("", addressHandler.CreateAddress)
		addresses.GET("/:id", addressHandler.GetAddress)
		addresses.PUT("/:id", addressHandler.UpdateAddress)
		addresses.DELETE("/:id", addressHandler.DeleteAddress)
		addresses.POST("/:id/default", addressHandler.SetDefaultAddress)
	}

	favorites := rg.Group("/favorites")
	favorites.Use(requireAuth)
	{
		favorites.GET("", favoriteHandler.GetFavorites)
		favorites.POST("", favoriteHandler.AddFavorite)
		favorites.GET("/count", favoriteHandler.GetCount)
		favorites.GET("/check/:productId", favoriteHandler.CheckFavorite)
		favorites.DELETE("/:productId", favoriteHandler.RemoveFavorite)
		favorites.POST("/:productId/move-to-cart", favoriteHandler.MoveToCart)
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, d *Dependencies) {
	var feed http.Handler
	if d.Events != nil {
		feed = http.HandlerFunc(d.Events.ServeWS)
	}

	productHandler := handlers.NewProductHandler(d.Products, d.Log)
	categoryHandler := handlers.NewCategoryHandler(d.Categories, d.Log)
	inventoryHandler := handlers.NewInventoryHandler(d.Stock, d.Config.Store.LowStockThreshold, d.Log)
	orderHandler := handlers.NewAdminOrderHandler(d.Orders, feed, d.Log)
	invoiceHandler := handlers.NewInvoiceHandler(d.Orders, d.Invoices, d.Log)
	analyticsHandler := handlers.NewAnalyticsHandler(d.Analytics, d.Cache, d.Log)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWT))
	admin.Use(middleware.AdminMiddleware())
	{
		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/export", orderHandler.ExportOrders)
			orders.GET("/events", orderHandler.Events)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/:id/invoice", invoiceHandler.AdminGenerateInvoice)
			orders.POST("/update-status/:id", orderHandler.UpdateStatus)
		}

		admin.GET("/dashboard", analyticsHandler.GetDashboard)
		admin.GET("/statistics/orders", analyticsHandler.GetOrderStatistics)
		admin.GET("/statistics/products", productHandler.AdminGetStatistics)
		admin.GET("/cache/stats", analyticsHandler.GetCacheStats)
		admin.DELETE("/cache", analyticsHandler.ClearCache)

		products := admin.Group("/products")
		{
			products.POST("", productHandler.AdminCreateProduct)
			products.GET("/low-stock", inventoryHandler.GetLowStock)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
			products.POST("/:id/stock", inventoryHandler.AdjustStock)
			products.GET("/:id/movements", inventoryHandler.GetMovements)
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", categoryHandler.AdminCreateCategory)
			categories.PUT("/:id", categoryHandler.AdminUpdateCategory)
			categories.DELETE("/:id", categoryHandler.AdminDeleteCategory)
		}

		brands := admin.Group("/brands")
		{
			brands.POST("", categoryHandler.AdminCreateBrand)
			brands.PUT("/:id", categoryHandler.AdminUpdateBrand)
			brands.DELETE("/:id", categoryHandler.AdminDeleteBrand)
		}

		sliders := admin.Group("/sliders")
		{
			sliders.POST("", categoryHandler.AdminCreateSlider)
			sliders.PUT("/:id", categoryHandler.AdminUpdateSlider)
			sliders.DELETE("/:id", categoryHandler.AdminDeleteSlider)
		}
	}
}
