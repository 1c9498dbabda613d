package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/enums"
)

// ProductView is the storefront-facing projection of a product.
type ProductView struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	InStock       bool             `json:"in_stock"`
	StockQuantity int              `json:"stock_quantity"`
	IsFeatured    bool             `json:"is_featured"`
	CategoryName  *string          `json:"category_name,omitempty"`
	Images        []ImageView      `json:"images"`
	Variations    []VariationView  `json:"variations"`
}

// ImageView is one gallery entry.
type ImageView struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// VariationView is one option value.
type VariationView struct {
	Type  enums.VariationType `json:"type"`
	Value string              `json:"value"`
}

// ProductPage is a cursor-paginated product listing.
type ProductPage struct {
	Products   []ProductView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// CategoryView is the storefront-facing projection of a category.
type CategoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
}

// ProductInput carries the admin payload for create/update.
type ProductInput struct {
	CategoryID    *uuid.UUID
	Name          string
	Slug          string
	Description   *string
	Price         decimal.Decimal
	SalePrice     *decimal.Decimal
	StockQuantity int
	IsActive      bool
	IsFeatured    bool
	Images        []ImageInput
	Variations    []VariationInput
}

// ImageInput is one admin-supplied gallery entry.
type ImageInput struct {
	URL       string
	Position  int
	IsPrimary bool
}

// VariationInput is one admin-supplied option value.
type VariationInput struct {
	Type  enums.VariationType
	Value string
}

// CategoryInput carries the admin payload for category create/update.
type CategoryInput struct {
	Name        string
	Slug        string
	Description *string
	IsActive    bool
}

func toProductView(p *models.Product) ProductView {
	view := ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		SalePrice:     p.SalePrice,
		InStock:       p.StockQuantity > 0,
		StockQuantity: p.StockQuantity,
		IsFeatured:    p.IsFeatured,
		Images:        make([]ImageView, 0, len(p.Images)),
		Variations:    make([]VariationView, 0, len(p.Variations)),
	}
	if p.Category != nil {
		view.CategoryName = &p.Category.Name
	}
	for _, img := range p.Images {
		view.Images = append(view.Images, ImageView{URL: img.URL, IsPrimary: img.IsPrimary})
	}
	for _, v := range p.Variations {
		view.Variations = append(view.Variations, VariationView{Type: v.Type, Value: v.Value})
	}
	return view
}

func toCategoryView(c *models.Category) CategoryView {
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
	}
}
