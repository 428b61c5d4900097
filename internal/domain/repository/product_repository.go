package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
)

// Sortable product columns.
const (
	SortByPrice     = "price"
	SortByName      = "name"
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByFeatured  = "featured"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ProductFilter is the predicate shared by the count and page queries.
// A nil field means no constraint on that column.
type ProductFilter struct {
	MinPrice *float64
	MaxPrice *float64
	MinStock *int
	Status   *entity.ProductStatus
	Featured *bool
	// Search matches a substring of name OR description.
	Search string
}

// ProductListOptions controls paging, ordering and eager loading of a product page.
type ProductListOptions struct {
	Offset            int
	Limit             int
	SortBy            string
	SortOrder         string
	IncludeCategories bool
	IncludeImages     bool
}

// ProductRepository defines catalog persistence operations.
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter, opts ProductListOptions) ([]entity.Product, error)
	Count(ctx context.Context, f ProductFilter) (int, error)
	// GetByID loads the product with its categories and images.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// Create and Update replace the product's category links with categoryIDs.
	Create(ctx context.Context, p *entity.Product, categoryIDs []string) error
	Update(ctx context.Context, p *entity.Product, categoryIDs []string) error
	Delete(ctx context.Context, id string) error
	// AddImage stores img; a negative Position appends after the last image.
	AddImage(ctx context.Context, img *entity.ProductImage) error
}

// CategoryRepository lists catalog categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)
}
