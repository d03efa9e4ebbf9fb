package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidSort    = errors.New("invalid sort field")
)

// SortableFields lists the columns a listing may be ordered by.
var SortableFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
}

// ListParams describes one page of a user listing. Page is 1-based.
type ListParams struct {
	Page  int
	Limit int
	Sort  string
	Desc  bool
}

func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// UserRepository defines the interface for user-related storage operations.
// Implementations must be safe for concurrent use and return ErrNotFound for
// missing records and ErrDuplicateEmail when the email uniqueness constraint fires.
type UserRepository interface {
	UserLookup
	Create(ctx context.Context, u entity.NewUser) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, p ListParams) ([]entity.User, int, error)
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}
