package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	productControllers "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(d.Config.JWTSecret))
	{
		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetUserCart(d.Store))                   // GET /user/cart
			cartGroup.POST("", cartControllers.AddCartItem(d.Store))                  // POST /user/cart
			cartGroup.PUT("/:product_id", cartControllers.UpdateCartItem(d.Store))    // PUT /user/cart/:product_id
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(d.Store)) // DELETE /user/cart/:product_id
			cartGroup.DELETE("", cartControllers.ClearUserCart(d.Store))              // DELETE /user/cart
		}

		// ──────────────── Browse Products ────────────────
		userGroup.GET("/products/:id", productControllers.GetProductByID(d.Store)) // GET /user/products/:id
	}
}
