package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/pagination"
)

type stubRepo struct {
	products       map[uuid.UUID]*models.Product
	productsBySlug map[string]*models.Product
	categories     map[uuid.UUID]*models.Category
	images         map[uuid.UUID][]models.ProductImage
	variations     map[uuid.UUID][]models.ProductVariation
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products:       map[uuid.UUID]*models.Product{},
		productsBySlug: map[string]*models.Product{},
		categories:     map[uuid.UUID]*models.Category{},
		images:         map[uuid.UUID][]models.ProductImage{},
		variations:     map[uuid.UUID][]models.ProductVariation{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	clone.Images = s.images[id]
	clone.Variations = s.variations[id]
	return &clone, nil
}

func (s *stubRepo) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, ok := s.productsBySlug[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubRepo) ListProducts(ctx context.Context, filter ProductFilter, params pagination.Params) ([]models.Product, string, error) {
	out := []models.Product{}
	for _, p := range s.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, "", nil
}

func (s *stubRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	s.productsBySlug[product.Slug] = product
	return product, nil
}

func (s *stubRepo) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.products[product.ID] = product
	s.productsBySlug[product.Slug] = product
	return product, nil
}

func (s *stubRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	delete(s.products, id)
	return nil
}

func (s *stubRepo) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range s.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (s *stubRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubRepo) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	delete(s.categories, id)
	return nil
}

func (s *stubRepo) ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error {
	s.images[productID] = images
	return nil
}

func (s *stubRepo) ReplaceVariations(ctx context.Context, productID uuid.UUID, variations []models.ProductVariation) error {
	s.variations[productID] = variations
	return nil
}

func newTestService(t *testing.T) (Service, *stubRepo) {
	t.Helper()
	repo := newStubRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateProductNormalizesSlug(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:          "Trail Running Shoes (Men's)",
		Price:         decimal.NewFromInt(25000),
		StockQuantity: 10,
		IsActive:      true,
	})
	require.NoError(t, err)
	require.Equal(t, "trail-running-shoes-men-s", view.Slug)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), ProductInput{Price: decimal.NewFromInt(10)})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateProduct(context.Background(), ProductInput{
		Name:  "Thing",
		Price: decimal.NewFromInt(-1),
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetProductBySlugHidesInactive(t *testing.T) {
	svc, repo := newTestService(t)

	inactive := &models.Product{ID: uuid.New(), Name: "Old", Slug: "old", IsActive: false}
	repo.productsBySlug["old"] = inactive

	_, err := svc.GetProductBySlug(context.Background(), "old")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.GetProductBySlug(context.Background(), "missing")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateProductReplacesAssociations(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:          "Tent",
		Price:         decimal.NewFromInt(90000),
		StockQuantity: 3,
		IsActive:      true,
		Images:        []ImageInput{{URL: "https://cdn.example.com/tent-1.jpg", IsPrimary: true}},
	})
	require.NoError(t, err)
	require.Len(t, repo.images[created.ID], 1)

	updated, err := svc.UpdateProduct(context.Background(), created.ID, ProductInput{
		Name:          "Tent XL",
		Price:         decimal.NewFromInt(120000),
		StockQuantity: 2,
		IsActive:      true,
		Images: []ImageInput{
			{URL: "https://cdn.example.com/tent-2.jpg", IsPrimary: true},
			{URL: "https://cdn.example.com/tent-3.jpg"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "tent-xl", updated.Slug)
	require.Len(t, repo.images[created.ID], 2)
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.DeleteProduct(context.Background(), uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
