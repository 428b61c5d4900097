package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-ecommerce/internal/application"
	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/response"
)

const maxImageBytes = 10 << 20

// ProductService is the catalog use-case surface the handler depends on.
type ProductService interface {
	GetProducts(ctx context.Context, q application.ProductQuery) (*application.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*application.ProductDTO, error)
	CreateProduct(ctx context.Context, in application.ProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id string, in application.ProductInput) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddProductImage(ctx context.Context, in application.AddImageInput) (*entity.ProductImage, error)
	SearchProducts(ctx context.Context, q string, size int) ([]application.ProductHit, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
}

type ProductHandler struct {
	Svc    ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type listProductsQuery struct {
	MinPrice          *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice          *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	MinStock          *int     `form:"minStock" binding:"omitempty,gte=0"`
	Status            *string  `form:"status" binding:"omitempty,productstatus"`
	Featured          *bool    `form:"featured"`
	Search            string   `form:"search" binding:"max=200"`
	SortBy            string   `form:"sortBy" binding:"omitempty,productsort"`
	SortOrder         string   `form:"sortOrder" binding:"omitempty,sortorder"`
	IncludeCategories bool     `form:"includeCategories"`
	IncludeImages     bool     `form:"includeImages"`
	Page              *int     `form:"page" binding:"omitempty,min=1"`
	Limit             *int     `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q listProductsQuery) toQuery() application.ProductQuery {
	out := application.ProductQuery{
		MinPrice:          q.MinPrice,
		MaxPrice:          q.MaxPrice,
		MinStock:          q.MinStock,
		Featured:          q.Featured,
		Search:            q.Search,
		SortBy:            q.SortBy,
		SortOrder:         strings.ToLower(q.SortOrder),
		IncludeCategories: q.IncludeCategories,
		IncludeImages:     q.IncludeImages,
		Page:              application.DefaultPage,
		Limit:             application.DefaultLimit,
	}
	if q.Status != nil {
		s := entity.ProductStatus(*q.Status)
		out.Status = &s
	}
	if q.Page != nil {
		out.Page = *q.Page
	}
	if q.Limit != nil {
		out.Limit = *q.Limit
	}
	return out
}

type productRequest struct {
	SKU               string   `json:"sku" binding:"required,sku"`
	Name              string   `json:"name" binding:"required,max=255"`
	Slug              string   `json:"slug" binding:"omitempty,max=255"`
	Description       *string  `json:"description"`
	Price             *float64 `json:"price" binding:"required,gte=0"`
	ComparePrice      *float64 `json:"comparePrice" binding:"omitempty,gte=0"`
	Cost              *float64 `json:"cost" binding:"omitempty,gte=0"`
	Stock             int      `json:"stock" binding:"gte=0"`
	LowStockThreshold int      `json:"lowStockThreshold" binding:"gte=0"`
	Weight            *float64 `json:"weight" binding:"omitempty,gte=0"`
	Status            string   `json:"status" binding:"omitempty,productstatus"`
	Featured          bool     `json:"featured"`
	CategoryIDs       []string `json:"categoryIds" binding:"omitempty,dive,uuid"`
}

func (r productRequest) toInput() application.ProductInput {
	return application.ProductInput{
		SKU:               r.SKU,
		Name:              r.Name,
		Slug:              r.Slug,
		Description:       r.Description,
		Price:             *r.Price,
		ComparePrice:      r.ComparePrice,
		Cost:              r.Cost,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		Weight:            r.Weight,
		Status:            entity.ProductStatus(r.Status),
		Featured:          r.Featured,
		CategoryIDs:       r.CategoryIDs,
	}
}

type imageForm struct {
	AltText   *string `form:"altText" binding:"omitempty,max=255"`
	Position  *int    `form:"position" binding:"omitempty,gte=0"`
	IsPrimary bool    `form:"isPrimary"`
}

type mutationResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// List GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	page, err := h.Svc.GetProducts(c.Request.Context(), q.toQuery())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Get GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}

// Search GET /api/products/search?q=&size=
func (h *ProductHandler) Search(c *gin.Context) {
	var q struct {
		Q    string `form:"q" binding:"required,max=200"`
		Size int    `form:"size" binding:"omitempty,min=1,max=50"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	hits, err := h.Svc.SearchProducts(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"products": hits})
}

// Categories GET /api/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	cats, err := h.Svc.ListCategories(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]application.CategoryDTO, 0, len(cats))
	for _, cat := range cats {
		out = append(out, application.NewCategoryDTO(cat))
	}
	response.JSON(c, http.StatusOK, gin.H{"categories": out})
}

// Create POST /api/products (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, mutationResponse{ID: p.ID, Message: "Product created successfully"})
}

// Update PUT /api/products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutationResponse{ID: p.ID, Message: "Product updated successfully"})
}

// Delete DELETE /api/products/:id (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddImage POST /api/products/:id/images (admin, multipart: file, altText, position, isPrimary)
func (h *ProductHandler) AddImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+(1<<20))

	var form imageForm
	if err := c.ShouldBind(&form); err != nil {
		writeBindError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.AbortWithError(c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "is required"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.AbortWithError(c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "must be an image"})
		return
	}
	if fh.Size > maxImageBytes {
		response.AbortWithError(c, http.StatusRequestEntityTooLarge, "image too large", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.AbortWithError(c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "unreadable"})
		return
	}
	defer f.Close()

	img, err := h.Svc.AddProductImage(c.Request.Context(), application.AddImageInput{
		ProductID:   c.Param("id"),
		Filename:    fh.Filename,
		ContentType: contentType,
		Body:        f,
		AltText:     form.AltText,
		Position:    form.Position,
		IsPrimary:   form.IsPrimary,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, application.NewProductImageDTO(*img))
}
