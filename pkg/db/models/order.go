package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adebayoakin/gearmart-backend/pkg/enums"
)

// Order is the persisted record of a purchase intent. Total is immutable
// after creation; payment_status moves pending→paid exactly once, via a
// conditional update in the orders repository.
type Order struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber          string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID               *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	Status               enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Currency             enums.Currency      `gorm:"column:currency;type:text;not null;default:'NGN'"`
	Subtotal             decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax                  decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Shipping             decimal.Decimal     `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	Total                decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	TransactionReference *string             `gorm:"column:transaction_reference;uniqueIndex"`
	PaidAt               *time.Time          `gorm:"column:paid_at"`
	Email                string              `gorm:"column:email;not null"`
	FirstName            string              `gorm:"column:first_name;not null"`
	LastName             string              `gorm:"column:last_name;not null"`
	Phone                *string             `gorm:"column:phone"`
	ShippingAddress      string              `gorm:"column:shipping_address;not null"`
	ShippingCity         string              `gorm:"column:shipping_city;not null"`
	ShippingState        string              `gorm:"column:shipping_state;not null"`
	ShippingPostalCode   *string             `gorm:"column:shipping_postal_code"`
	Notes                *string             `gorm:"column:notes"`
	Items                []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerName joins the contact name fields for display and email templates.
func (o *Order) CustomerName() string {
	return o.FirstName + " " + o.LastName
}
