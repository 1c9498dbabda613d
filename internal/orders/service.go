package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/pkg/auth"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/enums"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/pagination"
)

// Service exposes order reads for the storefront and customer account pages.
// Writes happen in checkout (creation) and payments (status transition).
type Service interface {
	GetByOrderNumber(ctx context.Context, orderNumber string, actor *auth.AccessTokenPayload) (*OrderView, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
}

// OrderView is the customer-facing projection of an order.
type OrderView struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	Currency        enums.Currency      `json:"currency"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	Shipping        decimal.Decimal     `json:"shipping"`
	Total           decimal.Decimal     `json:"total"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	Email           string              `json:"email"`
	CustomerName    string              `json:"customer_name"`
	ShippingAddress string              `json:"shipping_address"`
	ShippingCity    string              `json:"shipping_city"`
	ShippingState   string              `json:"shipping_state"`
	Items           []OrderItemView     `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

// OrderItemView is one purchased line with its immutable snapshots.
type OrderItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderPage is a cursor-paginated order listing.
type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService builds an orders read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// GetByOrderNumber loads an order for the confirmation page. Guest orders are
// readable by anyone holding the order number; orders bound to an account are
// readable only by that account or an admin.
func (s *service) GetByOrderNumber(ctx context.Context, orderNumber string, actor *auth.AccessTokenPayload) (*OrderView, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := AuthorizeRead(order, actor); err != nil {
		return nil, err
	}
	view := ToOrderView(order)
	return &view, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	orders, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := &OrderPage{
		Orders:     make([]OrderView, 0, len(orders)),
		NextCursor: next,
	}
	for i := range orders {
		page.Orders = append(page.Orders, ToOrderView(&orders[i]))
	}
	return page, nil
}

// AuthorizeRead enforces the ownership rule shared by order reads and payment
// initialization: an order bound to a user is off limits to guests and to
// other non-admin users.
func AuthorizeRead(order *models.Order, actor *auth.AccessTokenPayload) error {
	if order.UserID == nil {
		return nil
	}
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to access this order")
	}
	if actor.IsAdmin || actor.UserID == *order.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to access this order")
}

// ToOrderView maps the persistence model to the customer projection.
func ToOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		Currency:        order.Currency,
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		Shipping:        order.Shipping,
		Total:           order.Total,
		PaidAt:          order.PaidAt,
		Email:           order.Email,
		CustomerName:    order.CustomerName(),
		ShippingAddress: order.ShippingAddress,
		ShippingCity:    order.ShippingCity,
		ShippingState:   order.ShippingState,
		Items:           make([]OrderItemView, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return view
}
