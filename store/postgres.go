package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to postgres and migrates the tables this service owns.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return db, nil
}

// Postgres implements Store on top of gorm. Every call is bounded by
// timeout so an unavailable database surfaces as an error, not a hang.
type Postgres struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewPostgres(db *gorm.DB, timeout time.Duration) *Postgres {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Postgres{db: db, timeout: timeout}
}

func (s *Postgres) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// -------- Products --------

func (s *Postgres) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (s *Postgres) CreateProduct(ctx context.Context, p *models.Product) error {
	db, cancel := s.session(ctx)
	defer cancel()
	return db.Create(p).Error
}

func (s *Postgres) UpdateProduct(ctx context.Context, id uint, u ProductUpdate) (*models.Product, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var product models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			return notFound(err)
		}
		u.Apply(&product)
		return tx.Model(&product).
			Select("e_name", "ar_name", "e_description", "ar_description", "image", "price", "discount", "is_active").
			Updates(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ConditionalDecrement is the only statement in the service that lowers
// stock. The guard and the write are one UPDATE, so two concurrent callers
// can never both pass the check on the same pre-decrement value.
func (s *Postgres) ConditionalDecrement(ctx context.Context, id uint, qty int) (*models.Product, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var product models.Product
	res := db.Model(&product).
		Clauses(clause.Returning{}).
		Where("id = ? AND is_active = ? AND stock >= ?", id, true, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return &product, nil
	}

	// Nothing matched; find out which guard failed.
	var current models.Product
	if err := db.First(&current, id).Error; err != nil {
		return nil, notFound(err)
	}
	if !current.IsActive {
		return nil, ErrInactive
	}
	return nil, ErrInsufficientStock
}

// Increment puts stock back. Soft-deleted products are included so a
// release never loses units.
func (s *Postgres) Increment(ctx context.Context, id uint, qty int) error {
	db, cancel := s.session(ctx)
	defer cancel()

	res := db.Unscoped().Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// -------- Cart --------

func (s *Postgres) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var items []models.CartItem
	err := db.Joins("JOIN carts ON carts.cart_id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Order("cart_items.added_at, cart_items.id").
		Find(&items).Error
	return items, err
}

func (s *Postgres) ensureCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Cart{UserID: userID}).Error; err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem merges with an existing line for the same product.
func (s *Postgres) AddCartItem(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var item models.CartItem
	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.ensureCart(tx, userID)
		if err != nil {
			return err
		}
		row := models.CartItem{CartID: cart.CartID, ProductID: productID, Quantity: qty, AddedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"added_at": gorm.Expr("EXCLUDED.added_at"),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Postgres) SetCartItemQuantity(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var item models.CartItem
	err := db.Joins("JOIN carts ON carts.cart_id = cart_items.cart_id").
		Where("carts.user_id = ? AND cart_items.product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	item.Quantity = qty
	item.AddedAt = time.Now()
	if err := db.Model(&item).Select("quantity", "added_at").Updates(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Postgres) RemoveCartItem(ctx context.Context, userID string, productID uint) error {
	db, cancel := s.session(ctx)
	defer cancel()

	res := db.Where("product_id = ? AND cart_id IN (?)", productID,
		db.Model(&models.Cart{}).Select("cart_id").Where("user_id = ?", userID)).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ClearCart(ctx context.Context, userID string) error {
	db, cancel := s.session(ctx)
	defer cancel()

	return db.Where("cart_id IN (?)",
		db.Model(&models.Cart{}).Select("cart_id").Where("user_id = ?", userID)).
		Delete(&models.CartItem{}).Error
}

// -------- Orders --------

// CreateOrder inserts the order and all of its items in one transaction.
func (s *Postgres) CreateOrder(ctx context.Context, o *models.Order) error {
	db, cancel := s.session(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

func (s *Postgres) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var order models.Order
	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id")
	}).First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *Postgres) GetOrderByRef(ctx context.Context, ref string) (*models.Order, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var order models.Order
	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id")
	}).Where("order_ref = ?", ref).First(&order).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *Postgres) ListOrders(ctx context.Context) ([]models.Order, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var orders []models.Order
	err := db.Preload("Items").Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (s *Postgres) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var orders []models.Order
	err := db.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus locks the order row, lets mutate edit a copy and writes
// back only the status columns.
func (s *Postgres) UpdateOrderStatus(ctx context.Context, id uint, mutate OrderMutation) (*models.Order, *models.Order, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var before, after models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("order_id = ?", id).Order("id").Find(&locked.Items).Error; err != nil {
			return err
		}
		before = locked.Clone()

		working := locked.Clone()
		if err := mutate(&working); err != nil {
			return err
		}
		if !ApplyStatusChange(&locked, working) {
			after = locked
			return nil
		}
		locked.UpdatedAt = time.Now()
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
			"order_status":   locked.OrderStatus,
			"payment_status": locked.PaymentStatus,
			"updated_at":     locked.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		after = locked
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &before, &after, nil
}

var _ Store = (*Postgres)(nil)
