package application

import (
	"time"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
)

// ProductDTO is the outward representation of a product.
type ProductDTO struct {
	ID                string               `json:"id"`
	SKU               string               `json:"sku"`
	Name              string               `json:"name"`
	Slug              string               `json:"slug"`
	Description       *string              `json:"description"`
	Price             float64              `json:"price"`
	ComparePrice      *float64             `json:"comparePrice"`
	Cost              *float64             `json:"cost"`
	Stock             int                  `json:"stock"`
	LowStockThreshold int                  `json:"lowStockThreshold"`
	Weight            *float64             `json:"weight"`
	Status            entity.ProductStatus `json:"status"`
	Featured          bool                 `json:"featured"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	Categories        []ProductCategoryDTO `json:"categories,omitempty"`
	Images            []ProductImageDTO    `json:"images,omitempty"`
}

type CategoryDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId"`
}

type ProductCategoryDTO struct {
	CategoryID string      `json:"categoryId"`
	AssignedAt time.Time   `json:"assignedAt"`
	Category   CategoryDTO `json:"category"`
}

type ProductImageDTO struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	AltText   *string `json:"altText"`
	Position  int     `json:"position"`
	IsPrimary bool    `json:"isPrimary"`
}

// NewProductDTO maps p; relations are attached only when requested.
func NewProductDTO(p *entity.Product, withCategories, withImages bool) ProductDTO {
	dto := ProductDTO{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Slug:              p.Slug,
		Description:       p.Description,
		Price:             p.Price,
		ComparePrice:      p.ComparePrice,
		Cost:              p.Cost,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		Weight:            p.Weight,
		Status:            p.Status,
		Featured:          p.Featured,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if withCategories {
		dto.Categories = make([]ProductCategoryDTO, 0, len(p.Categories))
		for _, pc := range p.Categories {
			dto.Categories = append(dto.Categories, ProductCategoryDTO{
				CategoryID: pc.CategoryID,
				AssignedAt: pc.CreatedAt,
				Category:   NewCategoryDTO(pc.Category),
			})
		}
	}
	if withImages {
		dto.Images = make([]ProductImageDTO, 0, len(p.Images))
		for _, img := range p.Images {
			dto.Images = append(dto.Images, NewProductImageDTO(img))
		}
	}
	return dto
}

func NewCategoryDTO(c entity.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID}
}

func NewProductImageDTO(img entity.ProductImage) ProductImageDTO {
	return ProductImageDTO{
		ID:        img.ID,
		URL:       img.URL,
		AltText:   img.AltText,
		Position:  img.Position,
		IsPrimary: img.IsPrimary,
	}
}
