package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.Config.AdminAPIKey))
	{
		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(d.Store))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(d.Store))
			productAdmin.POST("/:id/restock", productcontroller.RestockProduct(d.Ledger))
		}

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(d.Orders))
			orderAdmin.GET("/export", orderControllers.ExportOrdersToExcel(d.Orders))
			if d.LiveOrders != nil {
				orderAdmin.GET("/ws", d.LiveOrders)
			}
			orderAdmin.GET("/:orderID", orderControllers.GetOrderHandler(d.Orders))
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(d.Orders))
		}
	}
}
