package router

import "github.com/gin-gonic/gin"

// Module is a feature area that mounts its routes under /api.
// Name must be unique within a Registry.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
