package cartControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
)

// CartStore is the part of store.Store the cart endpoints use.
type CartStore interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error)
	SetCartItemQuantity(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error)
	RemoveCartItem(ctx context.Context, userID string, productID uint) error
	ClearCart(ctx context.Context, userID string) error
}

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type QuantityInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func userIDOrAbort(c *gin.Context) (string, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return actor.UserID, true
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return uint(id), true
}

// GET /user/cart
func GetUserCart(carts CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDOrAbort(c)
		if !ok {
			return
		}
		items, err := carts.GetCart(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "items": items})
	}
}

// POST /user/cart
// Adding a product that is already in the cart adds to its quantity.
// Stock is not checked here; checkout does that.
func AddCartItem(carts CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDOrAbort(c)
		if !ok {
			return
		}

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product, err := carts.GetProduct(c.Request.Context(), input.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}
		if !product.IsActive {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Product is not available"})
			return
		}

		item, err := carts.AddCartItem(c.Request.Context(), userID, input.ProductID, input.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// PUT /user/cart/:product_id
func UpdateCartItem(carts CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDOrAbort(c)
		if !ok {
			return
		}
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		item, err := carts.SetCartItemQuantity(c.Request.Context(), userID, productID, input.Quantity)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /user/cart/:product_id
func DeleteCartItem(carts CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDOrAbort(c)
		if !ok {
			return
		}
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		if err := carts.RemoveCartItem(c.Request.Context(), userID, productID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /user/cart
func ClearUserCart(carts CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDOrAbort(c)
		if !ok {
			return
		}
		if err := carts.ClearCart(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
