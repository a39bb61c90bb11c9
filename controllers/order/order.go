package orderControllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/lifecycle"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
)

// Placer is implemented by *checkout.Builder.
type Placer interface {
	Build(ctx context.Context, req checkout.Request) (*models.Order, error)
	BuildFromCart(ctx context.Context, req checkout.Request) (*models.Order, error)
}

// Orders is implemented by *lifecycle.Service.
type Orders interface {
	Get(ctx context.Context, id uint, actor models.Actor) (*models.Order, error)
	ListForUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context, actor models.Actor) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, upd lifecycle.StatusUpdate, actor models.Actor) (*models.Order, error)
	Pay(ctx context.Context, id uint, actor models.Actor) (*models.Order, error)
}

// -------- Request Structs --------

// PlaceOrderRequest omits items to check out the caller's cart.
type PlaceOrderRequest struct {
	Items           []checkout.Item `json:"items"`
	ShippingAddress *models.Address `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
}

// -------- Helpers --------

func actorOrAbort(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return actor, ok
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return uint(id), true
}

// -------- Handlers --------

// POST /orders
func PlaceOrderHandler(placer Placer) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		creq := checkout.Request{
			UserID:          actor.UserID,
			Items:           req.Items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
		}

		var (
			order *models.Order
			err   error
		)
		if req.Items == nil {
			order, err = placer.BuildFromCart(c.Request.Context(), creq)
		} else {
			order, err = placer.Build(c.Request.Context(), creq)
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders
func GetMyOrdersHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}
		list, err := orders.ListForUser(c.Request.Context(), actor.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}
		list, err := orders.ListAll(c.Request.Context(), actor)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /orders/:orderID
func GetOrderHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}
		order, err := orders.Get(c.Request.Context(), id, actor)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /orders/:orderID/status
func UpdateOrderStatusHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}

		var upd lifecycle.StatusUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := orders.UpdateStatus(c.Request.Context(), id, upd, actor)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /orders/:orderID/pay
func PayOrderHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}
		order, err := orders.Pay(c.Request.Context(), id, actor)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
