package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	EName         string          `gorm:"not null" json:"ename"` // English Name
	ARName        string          `json:"arname"`                // Arabic Name
	EDescription  string          `json:"edescription"`
	ARDescription string          `json:"ardescription"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Discount      decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount"` // percent, 0-100
	Image         string          `json:"image"`
	Stock         int             `gorm:"not null;check:stock >= 0" json:"stock"` // written only through the stock ledger
	IsActive      bool            `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// EffectivePrice is the unit price after discount: price - price*discount/100,
// rounded to cents.
func (p Product) EffectivePrice() decimal.Decimal {
	off := p.Price.Mul(p.Discount).Div(decimal.NewFromInt(100))
	return p.Price.Sub(off).Round(2)
}
