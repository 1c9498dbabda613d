package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/internal/cart"
	"github.com/adebayoakin/gearmart-backend/internal/orders"
	"github.com/adebayoakin/gearmart-backend/pkg/auth"
	"github.com/adebayoakin/gearmart-backend/pkg/config"
	"github.com/adebayoakin/gearmart-backend/pkg/db"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/enums"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
)

const maxOrderNumberAttempts = 5

// Transactor runs a function inside one database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProductFinder is the catalog slice checkout needs for the final stock
// re-validation, resolvable against a transaction handle.
type ProductFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ProductFinderFactory binds a ProductFinder to a transaction so stock reads
// and the order insert share one consistent view.
type ProductFinderFactory interface {
	WithTx(tx *gorm.DB) ProductFinder
}

// Input carries the customer-facing checkout form.
type Input struct {
	Email              string
	FirstName          string
	LastName           string
	Phone              *string
	ShippingAddress    string
	ShippingCity       string
	ShippingState      string
	ShippingPostalCode *string
	Notes              *string
}

// Service converts a session cart into a persisted order.
type Service interface {
	PlaceOrder(ctx context.Context, sessionID string, input Input, actor *auth.AccessTokenPayload) (*orders.OrderView, error)
}

type service struct {
	carts      cart.Service
	catalog    ProductFinderFactory
	orders     orders.Repository
	transactor Transactor
	cfg        config.CheckoutConfig
	logg       *logger.Logger
}

// NewService wires the checkout flow.
func NewService(
	carts cart.Service,
	catalog ProductFinderFactory,
	ordersRepo orders.Repository,
	transactor Transactor,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog finder required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if transactor == nil {
		return nil, fmt.Errorf("transactor required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:      carts,
		catalog:    catalog,
		orders:     ordersRepo,
		transactor: transactor,
		cfg:        cfg,
		logg:       logg,
	}, nil
}

// PlaceOrder re-validates every cart line against live stock inside one
// transaction and persists the order with its item snapshots. Any stale line
// aborts the whole checkout and leaves the cart untouched; the cart is
// cleared only after the transaction commits. Stock is not decremented here.
func (s *service) PlaceOrder(ctx context.Context, sessionID string, input Input, actor *auth.AccessTokenPayload) (*orders.OrderView, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	snapshot, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	currency, err := enums.ParseCurrency(s.cfg.Currency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout currency misconfigured")
	}

	var created *models.Order
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		orderNumber, err := generateOrderNumber(s.cfg.OrderNumberPrefix, time.Now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}

		created, err = s.createOrder(ctx, snapshot, input, actor, orderNumber, currency)
		if err != nil {
			if db.IsUniqueViolation(err, "") && !pkgIsTyped(err) {
				continue
			}
			return nil, err
		}
		break
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order number")
	}

	// Clear only after commit. A failed clear must not undo the sale.
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logg.Error(s.logg.WithOrderNumber(ctx, created.OrderNumber), "clearing cart after checkout", err)
	}

	view := orders.ToOrderView(created)
	return &view, nil
}

func (s *service) createOrder(
	ctx context.Context,
	snapshot *cart.Cart,
	input Input,
	actor *auth.AccessTokenPayload,
	orderNumber string,
	currency enums.Currency,
) (*models.Order, error) {
	var created *models.Order
	err := s.transactor.WithTx(ctx, func(tx *gorm.DB) error {
		finder := s.catalog.WithTx(tx)

		items := make([]models.OrderItem, 0, len(snapshot.Lines))
		subtotal := decimal.Zero
		for _, line := range snapshot.Lines {
			product, err := finder.FindProductByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return staleLine(line.Name, 0, line.Quantity)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-validate stock")
			}
			if !product.IsActive || product.StockQuantity < line.Quantity {
				return staleLine(product.Name, product.StockQuantity, line.Quantity)
			}

			lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				LineTotal:   lineTotal,
			})
		}

		order := &models.Order{
			OrderNumber:        orderNumber,
			Status:             enums.OrderStatusPending,
			PaymentStatus:      enums.PaymentStatusPending,
			Currency:           currency,
			Subtotal:           subtotal,
			Tax:                decimal.Zero,
			Shipping:           decimal.Zero,
			Total:              subtotal,
			Email:              input.Email,
			FirstName:          input.FirstName,
			LastName:           input.LastName,
			Phone:              input.Phone,
			ShippingAddress:    input.ShippingAddress,
			ShippingCity:       input.ShippingCity,
			ShippingState:      input.ShippingState,
			ShippingPostalCode: input.ShippingPostalCode,
			Notes:              input.Notes,
			Items:              items,
		}
		if actor != nil {
			userID := actor.UserID
			order.UserID = &userID
		}

		persisted, err := s.orders.WithTx(tx).Create(ctx, order)
		if err != nil {
			return err
		}
		created = persisted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func staleLine(name string, available, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("not enough stock for %s", name)).
		WithDetails(map[string]any{
			"product":   name,
			"requested": requested,
			"available": available,
		})
}

// pkgIsTyped reports whether the error already carries a domain code, in
// which case a retry loop must not swallow it.
func pkgIsTyped(err error) bool {
	return pkgerrors.As(err) != nil
}

func validateInput(input Input) error {
	missing := []string{}
	for field, value := range map[string]string{
		"email":            input.Email,
		"first_name":       input.FirstName,
		"last_name":        input.LastName,
		"shipping_address": input.ShippingAddress,
		"shipping_city":    input.ShippingCity,
		"shipping_state":   input.ShippingState,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required checkout fields").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}
