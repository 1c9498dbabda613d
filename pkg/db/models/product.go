package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a storefront listing. StockQuantity is advisory at
// cart/checkout time; it is mutated only by admin operations, never by the
// checkout flow itself.
type Product struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID    *uuid.UUID         `gorm:"column:category_id;type:uuid"`
	Name          string             `gorm:"column:name;not null"`
	Slug          string             `gorm:"column:slug;not null;uniqueIndex"`
	Description   *string            `gorm:"column:description"`
	Price         decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	SalePrice     *decimal.Decimal   `gorm:"column:sale_price;type:numeric(12,2)"`
	StockQuantity int                `gorm:"column:stock_quantity;not null;default:0"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	IsFeatured    bool               `gorm:"column:is_featured;not null;default:false"`
	Category      *Category          `gorm:"foreignKey:CategoryID"`
	Images        []ProductImage     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variations    []ProductVariation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the sale price when one is set below the base price,
// otherwise the base price. This is the value snapshotted onto cart lines.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// PrimaryImageURL returns the first flagged image, falling back to the first
// image by position.
func (p *Product) PrimaryImageURL() *string {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i].URL
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0].URL
	}
	return nil
}
