package entity

import (
	"strings"
	"time"
	"unicode"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductDraft    ProductStatus = "draft"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductDraft:
		return true
	}
	return false
}

// Product is a catalog item. Optional columns are pointers.
// Categories and Images are only populated when explicitly loaded.
type Product struct {
	ID                string
	SKU               string
	Name              string
	Slug              string
	Description       *string
	Price             float64
	ComparePrice      *float64
	Cost              *float64
	Stock             int
	LowStockThreshold int
	Weight            *float64
	Status            ProductStatus
	Featured          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Categories []ProductCategory
	Images     []ProductImage
}

// Category nodes form a tree through ParentID. Cycles are not checked here.
type Category struct {
	ID       string
	Name     string
	Slug     string
	ParentID *string
}

// ProductCategory is the product/category association row with its category attached.
type ProductCategory struct {
	ProductID  string
	CategoryID string
	CreatedAt  time.Time
	Category   Category
}

// ProductImage belongs to one product; Position orders images ascending.
type ProductImage struct {
	ID        string
	ProductID string
	URL       string
	AltText   *string
	Position  int
	IsPrimary bool
	CreatedAt time.Time
}

// Slugify builds a lowercase, dash separated slug from a product or category name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
