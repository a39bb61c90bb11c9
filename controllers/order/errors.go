package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/lifecycle"
)

// writeError is the one place order errors become HTTP answers.
func writeError(c *gin.Context, err error) {
	var lineErr *checkout.LineItemError
	if errors.As(err, &lineErr) {
		status := http.StatusBadRequest
		switch {
		case errors.Is(lineErr.Err, checkout.ErrProductNotFound):
			status = http.StatusNotFound
		case errors.Is(lineErr.Err, checkout.ErrInsufficientStock):
			status = http.StatusConflict
		case errors.Is(lineErr.Err, checkout.ErrProductInactive):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": lineErr.Err.Error(), "product_id": lineErr.ProductID})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingAddress),
		errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, lifecycle.ErrInvalidStatus),
		errors.Is(err, lifecycle.ErrEmptyUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrPersistence):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
