package application

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/mailer"
)

// PasswordHasher is satisfied by *helpers.PasswordHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	VerifyDummy(plain string) bool
}

// TokenService is satisfied by *helpers.JWTManager.
type TokenService interface {
	Issue(subject string, kind helpers.TokenKind) (string, time.Time, error)
	Verify(token string, expected helpers.TokenKind) (*helpers.Claims, error)
}

// UserIndexer keeps a searchable copy of user profiles.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Public, error)
}

// EmailQueue hands email jobs to the background worker.
type EmailQueue interface {
	Enqueue(ctx context.Context, job mailer.EmailJob) error
}

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error)
}

// NormalizeEmail is applied to every email before lookup or persistence.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
