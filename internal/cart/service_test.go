package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
)

type memoryStore struct {
	carts map[string]*Cart
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: map[string]*Cart{}}
}

func (m *memoryStore) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if cart, ok := m.carts[sessionID]; ok {
		return cart, nil
	}
	return NewCart(sessionID), nil
}

func (m *memoryStore) Save(ctx context.Context, cart *Cart) error {
	m.carts[cart.SessionID] = cart
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalog) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newCartFixture(t *testing.T) (Service, *memoryStore, *models.Product) {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		Name:          "Camping Stove",
		Slug:          "camping-stove",
		Price:         decimal.NewFromInt(1000),
		StockQuantity: 5,
		IsActive:      true,
	}
	store := newMemoryStore()
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, err := NewService(store, catalog)
	require.NoError(t, err)
	return svc, store, product
}

func TestAddItemAccumulates(t *testing.T) {
	svc, _, product := newCartFixture(t)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "sess-1", product.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, view.ItemCount)

	view, err = svc.AddItem(ctx, "sess-1", product.ID, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, 3, view.Items[0].Quantity)
	require.True(t, decimal.NewFromInt(3000).Equal(view.Subtotal))
}

func TestAddItemRejectsOverStock(t *testing.T) {
	svc, _, product := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", product.ID, 6)
	require.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())

	// Accumulated quantity over stock also fails.
	_, err = svc.AddItem(ctx, "sess-1", product.ID, 3)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-1", product.ID, 3)
	require.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())
}

func TestUpdateQuantityStockBoundary(t *testing.T) {
	svc, store, product := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", product.ID, 3)
	require.NoError(t, err)

	// Stock is 5: updating to 6 fails and the line keeps its quantity.
	_, err = svc.UpdateQuantity(ctx, "sess-1", product.ID, 6)
	require.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())
	require.Equal(t, 3, store.carts["sess-1"].Lines[product.ID].Quantity)

	// Updating to exactly 5 succeeds.
	view, err := svc.UpdateQuantity(ctx, "sess-1", product.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, view.Items[0].Quantity)
}

func TestUpdateQuantityRejectsBelowOne(t *testing.T) {
	svc, _, product := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", product.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, "sess-1", product.ID, 0)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRemoveItemStrictNotFound(t *testing.T) {
	svc, _, product := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.RemoveItem(ctx, "sess-1", product.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.AddItem(ctx, "sess-1", product.ID, 1)
	require.NoError(t, err)
	view, err := svc.RemoveItem(ctx, "sess-1", product.ID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestViewSnapshotPriceAndAvailability(t *testing.T) {
	svc, _, product := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", product.ID, 2)
	require.NoError(t, err)

	// Price change after add does not touch the snapshot; stock drop below
	// the line quantity flips availability.
	product.Price = decimal.NewFromInt(2500)
	product.StockQuantity = 1

	view, err := svc.GetView(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(1000).Equal(view.Items[0].UnitPrice))
	require.False(t, view.Items[0].Available)
	require.True(t, decimal.NewFromInt(2000).Equal(view.Total))
	require.True(t, view.Tax.IsZero())
	require.True(t, view.Shipping.IsZero())
}

func TestAddItemInactiveProduct(t *testing.T) {
	svc, _, product := newCartFixture(t)
	product.IsActive = false

	_, err := svc.AddItem(context.Background(), "sess-1", product.ID, 1)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestSalePriceSnapshot(t *testing.T) {
	svc, _, product := newCartFixture(t)
	sale := decimal.NewFromInt(800)
	product.SalePrice = &sale

	view, err := svc.AddItem(context.Background(), "sess-1", product.ID, 1)
	require.NoError(t, err)
	require.True(t, sale.Equal(view.Items[0].UnitPrice))
}
