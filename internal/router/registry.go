package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-auth-service/pkg/response"
)

const APIPrefix = "/api/v1"

// Module is a feature area that mounts its routes on the API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and shared middleware, then mounts them under APIPrefix.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group(APIPrefix)
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	r.API.GET("/", welcome)
	for _, m := range r.modules {
		m.Register(r.API)
	}
	r.Engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "route not found", nil)
	})
}

func welcome(c *gin.Context) {
	response.OK[any](c, http.StatusOK, nil, "Welcome to the authentication service", nil)
}
