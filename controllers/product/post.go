package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	EName         string           `json:"ename" binding:"required"`
	ARName        string           `json:"arname"`
	EDescription  string           `json:"edescription"`
	ARDescription string           `json:"ardescription"`
	Image         string           `json:"image"`
	Price         decimal.Decimal  `json:"price"`
	Discount      *decimal.Decimal `json:"discount"`
	Stock         int              `json:"stock" binding:"min=0"`
	IsActive      *bool            `json:"is_active"`
}

var hundred = decimal.NewFromInt(100)

func validDiscount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

// CreateProduct adds a catalog entry with its opening stock. Products are
// active unless is_active is false.
func CreateProduct(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if !input.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
			return
		}

		product := models.Product{
			EName:         input.EName,
			ARName:        input.ARName,
			EDescription:  input.EDescription,
			ARDescription: input.ARDescription,
			Image:         input.Image,
			Price:         input.Price,
			Discount:      decimal.Zero,
			Stock:         input.Stock,
			IsActive:      true,
		}
		if input.Discount != nil {
			if !validDiscount(*input.Discount) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "discount must be between 0 and 100"})
				return
			}
			product.Discount = *input.Discount
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}

		if err := catalog.CreateProduct(c.Request.Context(), &product); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
