package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-auth-service/internal/application"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/response"
	"github.com/oksasatya/go-ddd-auth-service/pkg/validation"
)

// writeError maps service errors to a status and envelope. notFound is the
// status used for ErrUserNotFound, which differs between token and user routes.
func writeError(c *gin.Context, err error, notFound int) {
	switch {
	case errors.Is(err, application.ErrDuplicateUser):
		response.Fail(c, http.StatusConflict, application.ErrDuplicateUser.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, helpers.ErrTokenExpired),
		errors.Is(err, helpers.ErrTokenInvalid),
		errors.Is(err, helpers.ErrTokenWrongKind),
		errors.Is(err, helpers.ErrTokenMissingSubject):
		response.Fail(c, http.StatusUnauthorized, middleware.TokenFailureMessage(err), nil)
	case errors.Is(err, application.ErrUserNotFound):
		msg := application.ErrUserNotFound.Error()
		if notFound == http.StatusUnauthorized {
			msg = middleware.MsgUserNotFound
		}
		response.Fail(c, notFound, msg, nil)
	case errors.Is(err, application.ErrForbidden):
		response.Fail(c, http.StatusForbidden, application.ErrForbidden.Error(), nil)
	case errors.Is(err, repository.ErrInvalidSort):
		response.Fail(c, http.StatusBadRequest, repository.ErrInvalidSort.Error(), nil)
	case errors.Is(err, application.ErrPasswordTooLong):
		response.Fail(c, http.StatusUnprocessableEntity, "invalid payload", map[string]string{"password": application.ErrPasswordTooLong.Error()})
	case errors.Is(err, application.ErrAvatarUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, application.ErrAvatarUnavailable.Error(), nil)
	default:
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func invalidPayload(c *gin.Context, err error) {
	response.Fail(c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
}
