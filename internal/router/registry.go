package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry collects modules and mounts them on the /api group in the order they were added.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Logger *logrus.Logger

	middlewares []gin.HandlerFunc
	modules     []Module
	names       map[string]struct{}
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	return &Registry{
		Engine: engine,
		API:    engine.Group("/api"),
		Logger: logger,
		names:  map[string]struct{}{},
	}
}

// Use adds middleware applied to every module route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add queues mod for registration. Adding two modules with the same name is a wiring bug and panics.
func (r *Registry) Add(mod Module) {
	if _, dup := r.names[mod.Name()]; dup {
		panic(fmt.Sprintf("router: module %q registered twice", mod.Name()))
	}
	r.names[mod.Name()] = struct{}{}
	r.modules = append(r.modules, mod)
}

// Modules returns the names of queued modules in registration order.
func (r *Registry) Modules() []string {
	out := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.Name())
	}
	return out
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	before := len(r.Engine.Routes())
	for _, m := range r.modules {
		m.Register(r.API)
		after := len(r.Engine.Routes())
		if r.Logger != nil {
			r.Logger.WithFields(logrus.Fields{"module": m.Name(), "routes": after - before}).Debug("module registered")
		}
		before = after
	}
}
