package checkout

import (
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/internal/catalog"
)

type catalogFinderFactory struct {
	repo catalog.Repository
}

// NewCatalogFinder adapts the catalog repository to the narrower transaction-
// scoped reader checkout needs.
func NewCatalogFinder(repo catalog.Repository) ProductFinderFactory {
	return catalogFinderFactory{repo: repo}
}

func (f catalogFinderFactory) WithTx(tx *gorm.DB) ProductFinder {
	return f.repo.WithTx(tx)
}
