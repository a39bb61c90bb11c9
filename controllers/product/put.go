package productcontroller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/inventory"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/shopspring/decimal"
)

// UpdateProductInput has no stock field; stock moves through restock and
// checkout only.
type UpdateProductInput struct {
	EName         *string          `json:"ename"`
	ARName        *string          `json:"arname"`
	EDescription  *string          `json:"edescription"`
	ARDescription *string          `json:"ardescription"`
	Image         *string          `json:"image"`
	Price         *decimal.Decimal `json:"price"`
	Discount      *decimal.Decimal `json:"discount"`
	IsActive      *bool            `json:"is_active"`
}

// UpdateProduct updates an existing product by ID. Absent fields are kept.
func UpdateProduct(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productIDParam(c)
		if !ok {
			return
		}

		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Price != nil && !input.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
			return
		}
		if input.Discount != nil && !validDiscount(*input.Discount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "discount must be between 0 and 100"})
			return
		}

		product, err := catalog.UpdateProduct(c.Request.Context(), id, store.ProductUpdate{
			EName:         input.EName,
			ARName:        input.ARName,
			EDescription:  input.EDescription,
			ARDescription: input.ARDescription,
			Image:         input.Image,
			Price:         input.Price,
			Discount:      input.Discount,
			IsActive:      input.IsActive,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// Restocker is implemented by *inventory.Ledger.
type Restocker interface {
	Restock(ctx context.Context, productID uint, qty int) (*models.Product, error)
}

type RestockInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// POST /admin/products/:id/restock
func RestockProduct(ledger Restocker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productIDParam(c)
		if !ok {
			return
		}

		var input RestockInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product, err := ledger.Restock(c.Request.Context(), id, input.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, inventory.ErrProductNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			case errors.Is(err, inventory.ErrInvalidQuantity):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restock product"})
			}
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
