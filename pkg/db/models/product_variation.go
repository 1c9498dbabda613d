package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adebayoakin/gearmart-backend/pkg/enums"
)

// ProductVariation is a size/color option on a product. The cart keys lines
// by product only, so variations are display data today.
type ProductVariation struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Type      enums.VariationType `gorm:"column:type;type:text;not null"`
	Value     string              `gorm:"column:value;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
