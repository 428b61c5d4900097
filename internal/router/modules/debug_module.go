package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-ecommerce/internal/interface/middleware"
)

type DebugModule struct {
	RDB *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{RDB: rdb} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Metrics endpoint (expvar), rate-limited per IP; private networks bypass the limit
	rl := middleware.RateLimit(m.RDB, middleware.PerMinute(120, middleware.KeyByIP()).WithAllow(middleware.AllowPrivateIP()))
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
