package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-auth-service/internal/container"
	handlers "github.com/oksasatya/go-ddd-auth-service/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth-service/internal/interface/middleware"
)

// UserModule mounts /users; every route requires a bearer access token.
type UserModule struct {
	Handler *handlers.UserHandler
	C       *container.Container
}

func NewUserModule(h *handlers.UserHandler, c *container.Container) *UserModule {
	return &UserModule{Handler: h, C: c}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.AuthGate(m.C.Tokens, m.C.Users, m.C.Logger),
		middleware.RateLimit(m.C.RateCounter, 120, time.Minute, middleware.KeyByUserID(), m.C.RateAllow(), m.C.Logger),
	)
	{
		users.GET("", m.Handler.List)
		users.GET("/me", m.Handler.Me)
		users.GET("/id/:id", m.Handler.GetByID)
		users.GET("/email/:email", m.Handler.GetByEmail)
		users.GET("/search", m.Handler.Search)
		users.PUT("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
		users.POST("/me/avatar", m.Handler.UploadAvatar)
	}
}
