package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-auth-service/internal/container"
	handlers "github.com/oksasatya/go-ddd-auth-service/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth-service/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	C       *container.Container
}

func NewAuthModule(h *handlers.AuthHandler, c *container.Container) *AuthModule {
	return &AuthModule{Handler: h, C: c}
}

// Register mounts the public /auth routes with per-IP limits.
func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limit := func(max int) gin.HandlerFunc {
		return middleware.RateLimit(m.C.RateCounter, max, time.Minute, middleware.KeyByIPAndPath(), m.C.RateAllow(), m.C.Logger)
	}

	auth := rg.Group("/auth")
	auth.POST("/register", limit(5), m.Handler.Register)
	auth.POST("/login", limit(10), m.Handler.Login)
	auth.POST("/refresh", limit(60), m.Handler.Refresh)
	auth.POST("/logout", m.Handler.Logout)
}
