package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/config"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productControllers "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps is everything the route groups hand to their controllers.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    store.Store
	Ledger   productControllers.Restocker
	Checkout orderControllers.Placer
	Orders   orderControllers.Orders
	// LiveOrders serves the staff websocket feed; nil disables the route.
	LiveOrders gin.HandlerFunc
	// Redis enables the checkout rate limit when set.
	Redis *redis.Client
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes (no middleware)
	SetupAuthRoutes(r, d)

	// User routes (JWT-protected)
	SetupUserRoutes(r, d)

	// Order routes (JWT-protected)
	SetupOrderRoutes(r, d)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, d)
}
