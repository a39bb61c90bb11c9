package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken(d.Config.JWTSecret))
	{
		place := []gin.HandlerFunc{}
		if d.Redis != nil {
			place = append(place, middleware.RateLimit(d.Redis, d.Config.CheckoutRateLimit, d.Config.CheckoutRateWindow, d.Logger))
		}
		place = append(place, orderControllers.PlaceOrderHandler(d.Checkout))

		// Place an order from explicit items or the caller's cart
		orders.POST("", place...)

		// Caller's own orders, newest first
		orders.GET("", orderControllers.GetMyOrdersHandler(d.Orders))

		orders.GET("/:orderID", orderControllers.GetOrderHandler(d.Orders))

		// Staff only; enforced by the lifecycle service
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(d.Orders))

		// Mock payment confirmation
		orders.POST("/:orderID/pay", orderControllers.PayOrderHandler(d.Orders))
	}
}
