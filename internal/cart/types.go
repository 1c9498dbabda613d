package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the session-scoped cart document stored in Redis. One line per
// product; quantities accumulate on repeated adds.
type Cart struct {
	SessionID string              `json:"session_id"`
	Lines     map[uuid.UUID]*Line `json:"lines"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Line is one product entry in a cart. UnitPrice is snapshotted at add time
// (sale price when active, base price otherwise); the live catalog price is
// not re-read until checkout.
type Line struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	ImageURL   *string         `json:"image_url,omitempty"`
	StockAtAdd int             `json:"stock_at_add"`
	AddedAt    time.Time       `json:"added_at"`
}

// NewCart returns an empty cart bound to a session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Lines:     map[uuid.UUID]*Line{},
		UpdatedAt: time.Now().UTC(),
	}
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// ItemCount returns the total unit count across all lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Subtotal sums line totals from the snapshotted unit prices.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	if c == nil {
		return subtotal
	}
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}
