package router

import (
	"github.com/oksasatya/go-ddd-auth-service/internal/container"
	handlers "github.com/oksasatya/go-ddd-auth-service/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth-service/internal/router/modules"
)

// InitModules builds handlers from the container and registers every module.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	authHandler := handlers.NewAuthHandler(c.Auth, c.Logger)
	userHandler := handlers.NewUserHandler(c.Profiles, c.Logger)

	r.Add(modules.NewAuthModule(authHandler, c))
	r.Add(modules.NewUserModule(userHandler, c))
	if c.Config != nil && c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c))
	}
}
