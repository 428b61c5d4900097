package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-ecommerce/internal/interface/http"
	"github.com/oksasatya/go-ddd-ecommerce/internal/interface/middleware"
)

// ProductModule wires catalog routes:
// Public: GET /api/products, /api/products/search, /api/products/:id, /api/categories
// Admin: POST/PUT/DELETE /api/products..., POST /api/products/:id/images
type ProductModule struct {
	Handler *handlers.ProductHandler
	Tokens  middleware.TokenParser
	RDB     *redis.Client
}

func NewProductModule(h *handlers.ProductHandler, tokens middleware.TokenParser, rdb *redis.Client) *ProductModule {
	return &ProductModule{Handler: h, Tokens: tokens, RDB: rdb}
}

func (m *ProductModule) Name() string { return "products" }

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	browse := rg.Group("")
	browse.Use(middleware.RateLimit(m.RDB, middleware.PerMinute(300, middleware.KeyByIP())))
	{
		browse.GET("/products", m.Handler.List)
		browse.GET("/products/search", m.Handler.Search)
		browse.GET("/products/:id", m.Handler.Get)
		browse.GET("/categories", m.Handler.Categories)
	}

	admin := rg.Group("")
	admin.Use(middleware.Auth(m.Tokens), middleware.RequireAdmin())
	admin.Use(middleware.RateLimit(m.RDB, middleware.PerMinute(120, middleware.KeyByUserID())))
	{
		admin.POST("/products", m.Handler.Create)
		admin.PUT("/products/:id", m.Handler.Update)
		admin.DELETE("/products/:id", m.Handler.Delete)
		admin.POST("/products/:id/images", m.Handler.AddImage)
	}
}
