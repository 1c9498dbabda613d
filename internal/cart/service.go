package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
)

// ProductFinder is the slice of the catalog the cart needs: live product
// state for stock checks and price snapshots.
type ProductFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service mutates and reads session carts. Every mutation re-validates the
// requested quantity against live catalog stock; there is no cross-request
// locking, so concurrent writers to one session are last-write-wins.
type Service interface {
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*View, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, sessionID string) error
	GetView(ctx context.Context, sessionID string) (*View, error)
	Snapshot(ctx context.Context, sessionID string) (*Cart, error)
}

// View is the storefront cart projection: snapshot prices joined with live
// catalog availability.
type View struct {
	SessionID string          `json:"session_id"`
	Items     []ItemView      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// ItemView is one cart line joined with current catalog state. Available is
// false when the product has gone inactive, been removed, or no longer has
// enough stock to cover the line.
type ItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImageURL  *string         `json:"image_url,omitempty"`
	Available bool            `json:"available"`
}

type service struct {
	store   Store
	catalog ProductFinder
}

// NewService builds a cart service over the session store and catalog reader.
func NewService(store Store, catalog ProductFinder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{store: store, catalog: catalog}, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	requested := quantity
	if existing, ok := cart.Lines[productID]; ok {
		requested += existing.Quantity
	}
	if requested > product.StockQuantity {
		return nil, insufficientStock(product, requested)
	}

	cart.Lines[productID] = &Line{
		ProductID:  productID,
		Name:       product.Name,
		Slug:       product.Slug,
		UnitPrice:  product.EffectivePrice(),
		Quantity:   requested,
		ImageURL:   product.PrimaryImageURL(),
		StockAtAdd: product.StockQuantity,
		AddedAt:    time.Now().UTC(),
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.buildView(ctx, cart)
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1; remove the item instead")
	}
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	line, ok := cart.Lines[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.StockQuantity {
		// Failed update leaves the existing line untouched.
		return nil, insufficientStock(product, quantity)
	}
	line.Quantity = quantity
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.buildView(ctx, cart)
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*View, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if _, ok := cart.Lines[productID]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	delete(cart.Lines, productID)
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.buildView(ctx, cart)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) GetView(ctx context.Context, sessionID string) (*View, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.buildView(ctx, cart)
}

func (s *service) Snapshot(ctx context.Context, sessionID string) (*Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) loadSellableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.catalog.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) buildView(ctx context.Context, cart *Cart) (*View, error) {
	view := &View{
		SessionID: cart.SessionID,
		Items:     make([]ItemView, 0, len(cart.Lines)),
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		Tax:       decimal.Zero,
		Shipping:  decimal.Zero,
		Discount:  decimal.Zero,
	}
	view.Total = view.Subtotal.Add(view.Tax).Add(view.Shipping).Sub(view.Discount)

	for _, line := range cart.Lines {
		item := ItemView{
			ProductID: line.ProductID,
			Name:      line.Name,
			Slug:      line.Slug,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			ImageURL:  line.ImageURL,
		}
		product, err := s.catalog.FindProductByID(ctx, line.ProductID)
		switch {
		case err == nil:
			item.Available = product.IsActive && product.StockQuantity >= line.Quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
			item.Available = false
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}

func insufficientStock(product *models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("not enough stock for %s", product.Name)).
		WithDetails(map[string]any{
			"product_id": product.ID,
			"product":    product.Name,
			"requested":  requested,
			"available":  product.StockQuantity,
		})
}
