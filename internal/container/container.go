package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-service/config"
	"github.com/oksasatya/go-ddd-auth-service/internal/application"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
)

// Container carries the components built by the composition root to the
// route modules. It is constructed once and passed explicitly.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users  repository.UserRepository
	Tokens *helpers.JWTManager

	Auth     *application.AuthService
	Profiles *application.UserService

	// RateCounter is nil when rate limiting is disabled or Redis is absent.
	RateCounter middleware.Counter
}

// RateAllow returns the bypass rule for rate limits, if any.
func (c *Container) RateAllow() middleware.AllowFunc {
	if c.Config != nil && c.Config.RateLimitBypassPrivate {
		return middleware.AllowPrivateIP()
	}
	return nil
}
