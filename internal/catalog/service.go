package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/pkg/db"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/pagination"
)

// Service exposes catalog reads for the storefront and CRUD for the admin
// back-office.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter, params pagination.Params) (*ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductView, error)
	ListCategories(ctx context.Context) ([]CategoryView, error)

	CreateProduct(ctx context.Context, input ProductInput) (*ProductView, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryView, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryView, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter, params pagination.Params) (*ProductPage, error) {
	filter.ActiveOnly = true
	products, next, err := s.repo.ListProducts(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	page := &ProductPage{
		Products:   make([]ProductView, 0, len(products)),
		NextCursor: next,
	}
	for i := range products {
		page.Products = append(page.Products, toProductView(&products[i]))
	}
	return page, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductView, error) {
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	view := toProductView(product)
	return &view, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, toCategoryView(&categories[i]))
	}
	return views, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductView, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product := &models.Product{
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Slug:          normalizeSlug(input.Slug, input.Name),
		Description:   input.Description,
		Price:         input.Price,
		SalePrice:     input.SalePrice,
		StockQuantity: input.StockQuantity,
		IsActive:      input.IsActive,
		IsFeatured:    input.IsFeatured,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	if err := s.applyAssociations(ctx, created.ID, input); err != nil {
		return nil, err
	}
	return s.reloadProduct(ctx, created.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	product.CategoryID = input.CategoryID
	product.Name = input.Name
	product.Slug = normalizeSlug(input.Slug, input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.SalePrice = input.SalePrice
	product.StockQuantity = input.StockQuantity
	product.IsActive = input.IsActive
	product.IsFeatured = input.IsFeatured
	product.Images = nil
	product.Variations = nil

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if err := s.applyAssociations(ctx, product.ID, input); err != nil {
		return nil, err
	}
	return s.reloadProduct(ctx, product.ID)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryView, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category := &models.Category{
		Name:        input.Name,
		Slug:        normalizeSlug(input.Slug, input.Name),
		Description: input.Description,
		IsActive:    input.IsActive,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	view := toCategoryView(created)
	return &view, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryView, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	category.Name = input.Name
	category.Slug = normalizeSlug(input.Slug, input.Name)
	category.Description = input.Description
	category.IsActive = input.IsActive
	if _, err := s.repo.UpdateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	view := toCategoryView(category)
	return &view, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) applyAssociations(ctx context.Context, productID uuid.UUID, input ProductInput) error {
	images := make([]models.ProductImage, 0, len(input.Images))
	for _, img := range input.Images {
		images = append(images, models.ProductImage{
			URL:       img.URL,
			Position:  img.Position,
			IsPrimary: img.IsPrimary,
		})
	}
	if err := s.repo.ReplaceImages(ctx, productID, images); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product images")
	}

	variations := make([]models.ProductVariation, 0, len(input.Variations))
	for _, v := range input.Variations {
		variations = append(variations, models.ProductVariation{
			Type:  v.Type,
			Value: v.Value,
		})
	}
	if err := s.repo.ReplaceVariations(ctx, productID, variations); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product variations")
	}
	return nil
}

func (s *service) reloadProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	view := toProductView(product)
	return &view, nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.SalePrice != nil && input.SalePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale price must not be negative")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must not be negative")
	}
	for _, v := range input.Variations {
		if !v.Type.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid variation type %q", v.Type))
		}
	}
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeSlug(slug, fallback string) string {
	source := strings.TrimSpace(slug)
	if source == "" {
		source = fallback
	}
	normalized := slugUnsafe.ReplaceAllString(strings.ToLower(source), "-")
	return strings.Trim(normalized, "-")
}
