package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-ecommerce/internal/interface/http"
	"github.com/oksasatya/go-ddd-ecommerce/internal/interface/middleware"
)

// AuthModule wires credential routes:
// Public: POST /api/auth/register, POST /api/auth/login, POST /api/auth/logout
// Protected: GET /api/auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.TokenParser
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenParser, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, RDB: rdb}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	registerLimiter := middleware.RateLimit(m.RDB, middleware.PerMinute(5, middleware.KeyByIPAndPath()))
	loginLimiter := middleware.RateLimit(m.RDB, middleware.PerMinute(10, middleware.KeyByIPAndPath()))

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/logout", m.Handler.Logout)

	protected := auth.Group("")
	protected.Use(middleware.Auth(m.Tokens))
	protected.Use(middleware.RateLimit(m.RDB, middleware.PerMinute(120, middleware.KeyByUserID()).
		WithAllow(middleware.AllowAny(middleware.AllowAdmin(), middleware.AllowPrivateIP()))))
	{
		protected.GET("/me", m.Handler.Me)
	}
}
