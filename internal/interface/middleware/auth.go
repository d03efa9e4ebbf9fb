package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/response"
)

const (
	MsgNotAuthenticated = "not authenticated"
	MsgTokenExpired     = "token has expired"
	MsgTokenInvalid     = "invalid token"
	MsgTokenWrongKind   = "invalid token type"
	MsgTokenNoSubject   = "invalid token: missing subject"
	MsgUserNotFound     = "user not found or token invalid"
)

// TokenFailureMessage returns the client-facing message for a Verify error.
func TokenFailureMessage(err error) string {
	switch {
	case errors.Is(err, helpers.ErrTokenExpired):
		return MsgTokenExpired
	case errors.Is(err, helpers.ErrTokenWrongKind):
		return MsgTokenWrongKind
	case errors.Is(err, helpers.ErrTokenMissingSubject):
		return MsgTokenNoSubject
	default:
		return MsgTokenInvalid
	}
}

// AccessVerifier is satisfied by *helpers.JWTManager.
type AccessVerifier interface {
	Verify(token string, expected helpers.TokenKind) (*helpers.Claims, error)
}

// AuthGate requires a valid bearer access token whose subject still exists.
// On success the user is stored under CtxUser and its id under CtxUserID.
func AuthGate(tokens AccessVerifier, users repository.UserLookup, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer`)
			response.Fail(c, http.StatusUnauthorized, MsgNotAuthenticated, nil)
			return
		}

		claims, err := tokens.Verify(token, helpers.AccessToken)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			if logger != nil {
				logger.WithError(err).WithField("token", helpers.RedactToken(token)).Debug("rejected access token")
			}
			response.Fail(c, http.StatusUnauthorized, TokenFailureMessage(err), nil)
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
				response.Fail(c, http.StatusUnauthorized, MsgUserNotFound, nil)
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("user_id", claims.Subject).Error("auth gate lookup failed")
			}
			response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}

		c.Set(CtxUser, u)
		c.Set(CtxUserID, u.ID)
		c.Next()
	}
}

// IdentityFrom returns the user resolved by AuthGate.
func IdentityFrom(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
