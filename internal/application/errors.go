package application

import "errors"

var (
	ErrDuplicateUser      = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("not allowed to modify another user")
	ErrInternal           = errors.New("internal failure")
	ErrAvatarUnavailable  = errors.New("avatar storage not configured")
	ErrPasswordTooLong    = errors.New("password must not exceed 72 bytes")
)

func internal(err error) error {
	return errors.Join(ErrInternal, err)
}
