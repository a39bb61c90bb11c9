//go:build integration

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresSuite struct {
	suite.Suite
	ctx        context.Context
	containers []testcontainers.Container
	db         *gorm.DB
	store      *Postgres
	rdb        *redis.Client
}

func (s *PostgresSuite) start(req testcontainers.ContainerRequest) (string, string) {
	c, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.containers = append(s.containers, c)

	host, err := c.Host(s.ctx)
	s.Require().NoError(err)
	port, err := c.MappedPort(s.ctx, nat.Port(req.ExposedPorts[0]))
	s.Require().NoError(err)
	return host, port.Port()
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	host, port := s.start(testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "shop",
			"POSTGRES_PASSWORD": "shop",
			"POSTGRES_DB":       "storefront",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	})
	dsn := fmt.Sprintf("host=%s port=%s user=shop password=shop dbname=storefront sslmode=disable", host, port)

	db, err := Open(dsn)
	s.Require().NoError(err)
	s.db = db
	s.store = NewPostgres(db, 5*time.Second)

	rhost, rport := s.start(testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	})
	s.rdb = redis.NewClient(&redis.Options{Addr: rhost + ":" + rport})
}

func (s *PostgresSuite) TearDownSuite() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	for _, c := range s.containers {
		_ = c.Terminate(s.ctx)
	}
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE order_items, orders, cart_items, carts, products RESTART IDENTITY CASCADE").Error)
	s.Require().NoError(s.rdb.FlushAll(s.ctx).Err())
}

func (s *PostgresSuite) product(stock int, active bool) *models.Product {
	p := &models.Product{EName: "Lamp", Price: decimal.RequireFromString("19.99"), Discount: decimal.Zero, Stock: stock, IsActive: active}
	s.Require().NoError(s.store.CreateProduct(s.ctx, p))
	return p
}

func (s *PostgresSuite) TestConditionalDecrement() {
	p := s.product(5, true)
	off := s.product(5, false)

	got, err := s.store.ConditionalDecrement(s.ctx, p.ID, 3)
	s.Require().NoError(err)
	s.Equal(2, got.Stock)
	s.Equal("19.99", got.Price.StringFixed(2))

	_, err = s.store.ConditionalDecrement(s.ctx, p.ID, 3)
	s.ErrorIs(err, ErrInsufficientStock)
	_, err = s.store.ConditionalDecrement(s.ctx, off.ID, 1)
	s.ErrorIs(err, ErrInactive)
	_, err = s.store.ConditionalDecrement(s.ctx, 9999, 1)
	s.ErrorIs(err, ErrNotFound)

	s.Require().NoError(s.store.Increment(s.ctx, p.ID, 3))
	reloaded, err := s.store.GetProduct(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(5, reloaded.Stock)
}

func (s *PostgresSuite) TestConcurrentDecrementNeverGoesNegative() {
	p := s.product(10, true)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.ConditionalDecrement(s.ctx, p.ID, 1); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	reloaded, err := s.store.GetProduct(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(10, won)
	s.Equal(0, reloaded.Stock)
}

func (s *PostgresSuite) TestCartUpsertMerges() {
	p := s.product(5, true)

	_, err := s.store.AddCartItem(s.ctx, "u1", p.ID, 2)
	s.Require().NoError(err)
	item, err := s.store.AddCartItem(s.ctx, "u1", p.ID, 3)
	s.Require().NoError(err)
	s.Equal(5, item.Quantity)

	item, err = s.store.SetCartItemQuantity(s.ctx, "u1", p.ID, 1)
	s.Require().NoError(err)
	s.Equal(1, item.Quantity)

	cart, err := s.store.GetCart(s.ctx, "u1")
	s.Require().NoError(err)
	s.Len(cart, 1)

	s.Require().NoError(s.store.ClearCart(s.ctx, "u1"))
	s.ErrorIs(s.store.RemoveCartItem(s.ctx, "u1", p.ID), ErrNotFound)
}

func (s *PostgresSuite) TestOrderRoundTripAndStatusUpdate() {
	p := s.product(5, true)
	order := &models.Order{
		OrderRef:        "20250101000000-int",
		UserID:          "u1",
		ShippingAddress: models.Address{Country: "AE", City: "Dubai"},
		PaymentMethod:   models.PaymentMethodCOD,
		TotalAmount:     decimal.RequireFromString("39.98"),
		OrderStatus:     models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		Items: []models.OrderItem{{
			ProductID: p.ID, ProductEName: p.EName, Quantity: 2, UnitPriceAtPurchase: decimal.RequireFromString("19.99"),
		}},
	}
	s.Require().NoError(s.store.CreateOrder(s.ctx, order))

	cached := NewCachedStore(s.store, s.rdb, time.Minute, zap.NewNop())

	got, err := cached.GetOrder(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal("39.98", got.TotalAmount.StringFixed(2))
	s.Len(got.Items, 1)
	s.Equal("Dubai", got.ShippingAddress.City)

	s.Equal(int64(1), s.rdb.Exists(s.ctx, orderCacheKey(order.ID)).Val())

	before, after, err := cached.UpdateOrderStatus(s.ctx, order.ID, func(o *models.Order) error {
		o.OrderStatus = models.OrderStatusShipped
		o.TotalAmount = decimal.Zero
		return nil
	})
	s.Require().NoError(err)
	s.Equal(models.OrderStatusPending, before.OrderStatus)
	s.Equal(models.OrderStatusShipped, after.OrderStatus)

	// A read that fetched the row before the update finishes late.
	s.Require().NoError(cached.put(s.ctx, before))
	var fromCache models.Order
	raw, err := s.rdb.HGet(s.ctx, orderCacheKey(order.ID), "d").Bytes()
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal(raw, &fromCache))
	s.Equal(models.OrderStatusShipped, fromCache.OrderStatus)

	got, err = cached.GetOrder(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusShipped, got.OrderStatus)
	s.Equal("39.98", got.TotalAmount.StringFixed(2))

	byRef, err := s.store.GetOrderByRef(s.ctx, order.OrderRef)
	s.Require().NoError(err)
	s.Equal(order.ID, byRef.ID)
	_, err = s.store.GetOrderByRef(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)

	mine, err := s.store.ListOrdersByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Len(mine, 1)
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}
