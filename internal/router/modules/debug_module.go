package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/go-ddd-auth-service/internal/container"
	"github.com/oksasatya/go-ddd-auth-service/internal/interface/middleware"
)

// DebugModule exposes runtime vars and auth counters, rate-limited per IP.
type DebugModule struct {
	C *container.Container
}

func NewDebugModule(c *container.Container) *DebugModule { return &DebugModule{C: c} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.C.RateCounter, 120, time.Minute, middleware.KeyByIP(), m.C.RateAllow(), m.C.Logger)
	debug := rg.Group("/debug", rl)
	debug.GET("/vars", gin.WrapH(expvar.Handler()))
	debug.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
