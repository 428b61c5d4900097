package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	defaultSearchSize = 10
	maxSearchSize     = 50
)

// ProductIndexer keeps a full-text product index in sync with the catalog.
type ProductIndexer interface {
	Index(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]ProductHit, error)
}

// ImageUploader stores an image file and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, productID, filename, contentType string, r io.Reader) (string, error)
}

// ProductHit is one result of a full-text product search.
type ProductHit struct {
	ID     string  `json:"id"`
	SKU    string  `json:"sku"`
	Name   string  `json:"name"`
	Slug   string  `json:"slug"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

// ProductService builds catalog queries and handles catalog management.
type ProductService struct {
	Products   repo.ProductRepository
	Categories repo.CategoryRepository
	Index      ProductIndexer
	Images     ImageUploader
	Logger     *logrus.Logger
}

func NewProductService(products repo.ProductRepository, categories repo.CategoryRepository, index ProductIndexer, images ImageUploader, logger *logrus.Logger) *ProductService {
	return &ProductService{
		Products:   products,
		Categories: categories,
		Index:      index,
		Images:     images,
		Logger:     logger,
	}
}

// ProductQuery is a validated product listing request. Nil filters are not applied.
type ProductQuery struct {
	MinPrice          *float64
	MaxPrice          *float64
	MinStock          *int
	Status            *entity.ProductStatus
	Featured          *bool
	Search            string
	SortBy            string
	SortOrder         string
	IncludeCategories bool
	IncludeImages     bool
	Page              int
	Limit             int
}

// Pagination describes where a page sits in the filtered result set.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalProducts   int  `json:"totalProducts"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

type ProductPage struct {
	Products   []ProductDTO `json:"products"`
	Pagination Pagination   `json:"pagination"`
}

// NewPagination computes page metadata. total == 0 yields zero pages.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalProducts:   total,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// GetProducts lists one page of products matching q. The count and page queries run
// concurrently against the same filter.
func (s *ProductService) GetProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page, limit := normalizePaging(q.Page, q.Limit)
	filter := repo.ProductFilter{
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		MinStock: q.MinStock,
		Status:   q.Status,
		Featured: q.Featured,
		Search:   q.Search,
	}
	opts := repo.ProductListOptions{
		Offset:            (page - 1) * limit,
		Limit:             limit,
		SortBy:            q.SortBy,
		SortOrder:         q.SortOrder,
		IncludeCategories: q.IncludeCategories,
		IncludeImages:     q.IncludeImages,
	}

	var (
		products []entity.Product
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.Products.List(gctx, filter, opts)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.Products.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logError(err, "list products failed", logrus.Fields{"page": page, "limit": limit})
		return nil, Internal("error loading products", err)
	}

	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, NewProductDTO(&products[i], q.IncludeCategories, q.IncludeImages))
	}
	return &ProductPage{Products: dtos, Pagination: NewPagination(page, limit, total)}, nil
}

// GetProduct returns a product with its categories and images.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	p, err := s.Products.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFound("product not found", err)
	}
	if err != nil {
		s.logError(err, "get product failed", logrus.Fields{"product_id": id})
		return nil, Internal("error loading product", err)
	}
	dto := NewProductDTO(p, true, true)
	return &dto, nil
}

// ProductInput is the full writable state of a product; PUT replaces all of it.
type ProductInput struct {
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
	Status            entity.ProductStatus
	Featured          bool
	CategoryIDs       []string
}

// toEntity derives a missing slug from the name, then the SKU. Names and SKUs made only of
// punctuation give no slug and are rejected.
func (in ProductInput) toEntity() (*entity.Product, error) {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = entity.Slugify(in.Name)
	}
	if slug == "" {
		slug = entity.Slugify(in.SKU)
	}
	if slug == "" {
		return nil, Unprocessable("slug cannot be derived from name or sku", nil)
	}
	status := in.Status
	if status == "" {
		status = entity.ProductDraft
	}
	return &entity.Product{
		SKU:               in.SKU,
		Name:              in.Name,
		Slug:              slug,
		Description:       in.Description,
		Price:             in.Price,
		ComparePrice:      in.ComparePrice,
		Cost:              in.Cost,
		Stock:             in.Stock,
		LowStockThreshold: in.LowStockThreshold,
		Weight:            in.Weight,
		Status:            status,
		Featured:          in.Featured,
	}, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	p, err := in.toEntity()
	if err != nil {
		return nil, err
	}
	if err := s.Products.Create(ctx, p, in.CategoryIDs); err != nil {
		s.logError(err, "create product failed", logrus.Fields{"sku": in.SKU})
		return nil, Internal("error creating product", err)
	}
	s.reindex(ctx, p)
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	p, err := in.toEntity()
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.Products.Update(ctx, p, in.CategoryIDs); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFound("product not found", err)
		}
		s.logError(err, "update product failed", logrus.Fields{"product_id": id})
		return nil, Internal("error updating product", err)
	}
	s.reindex(ctx, p)
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("product not found", err)
		}
		s.logError(err, "delete product failed", logrus.Fields{"product_id": id})
		return Internal("error deleting product", err)
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			s.logWarn(err, "remove product from index failed", logrus.Fields{"product_id": id})
		}
	}
	return nil
}

// AddImageInput describes an uploaded product image. A nil Position appends.
type AddImageInput struct {
	ProductID   string
	Filename    string
	ContentType string
	Body        io.Reader
	AltText     *string
	Position    *int
	IsPrimary   bool
}

// AddProductImage uploads the file to object storage and attaches it to the product.
func (s *ProductService) AddProductImage(ctx context.Context, in AddImageInput) (*entity.ProductImage, error) {
	if _, err := s.Products.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFound("product not found", err)
		}
		s.logError(err, "get product failed", logrus.Fields{"product_id": in.ProductID})
		return nil, Internal("error loading product", err)
	}
	if s.Images == nil {
		return nil, Internal("image storage unavailable", nil)
	}

	url, err := s.Images.Upload(ctx, in.ProductID, in.Filename, in.ContentType, in.Body)
	if err != nil {
		s.logError(err, "upload product image failed", logrus.Fields{"product_id": in.ProductID})
		return nil, Internal("error uploading image", err)
	}

	img := &entity.ProductImage{
		ProductID: in.ProductID,
		URL:       url,
		AltText:   in.AltText,
		Position:  -1,
		IsPrimary: in.IsPrimary,
	}
	if in.Position != nil {
		img.Position = *in.Position
	}
	if err := s.Products.AddImage(ctx, img); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidReference) {
			return nil, NotFound("product not found", err)
		}
		s.logError(err, "insert product image failed", logrus.Fields{"product_id": in.ProductID})
		return nil, Internal("error saving image", err)
	}
	return img, nil
}

// SearchProducts runs a full-text query against the product index.
func (s *ProductService) SearchProducts(ctx context.Context, q string, size int) ([]ProductHit, error) {
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []ProductHit{}, nil
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	hits, err := s.Index.Search(c, q, size)
	if err != nil {
		s.logError(err, "product search failed", logrus.Fields{"q": q})
		return nil, Internal("error searching products", err)
	}
	return hits, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	cats, err := s.Categories.List(ctx)
	if err != nil {
		s.logError(err, "list categories failed", nil)
		return nil, Internal("error loading categories", err)
	}
	return cats, nil
}

func (s *ProductService) reindex(ctx context.Context, p *entity.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		s.logWarn(err, "index product failed", logrus.Fields{"product_id": p.ID})
	}
}

func (s *ProductService) logError(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}

func (s *ProductService) logWarn(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Warn(msg)
}
