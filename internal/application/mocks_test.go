package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/mailer"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, u entity.NewUser) (*entity.User, error) {
	args := m.Called(ctx, u)
	return userArg(args, 0), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, p repository.ListParams) ([]entity.User, int, error) {
	args := m.Called(ctx, p)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	args := m.Called(ctx, id, patch)
	return userArg(args, 0), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func userArg(args mock.Arguments, i int) *entity.User {
	u, _ := args.Get(i).(*entity.User)
	return u
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Index(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockIndexer) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndexer) Search(ctx context.Context, q string, size int) ([]entity.Public, error) {
	args := m.Called(ctx, q, size)
	hits, _ := args.Get(0).([]entity.Public)
	return hits, args.Error(1)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(ctx context.Context, job mailer.EmailJob) error {
	return m.Called(ctx, job).Error(0)
}

type mockAvatars struct {
	mock.Mock
}

func (m *mockAvatars) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, userID, filename, contentType, r)
	return args.String(0), args.Error(1)
}

func newHasher(t *testing.T) *helpers.PasswordHasher {
	t.Helper()
	h, err := helpers.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newTokens() *helpers.JWTManager {
	return helpers.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func newAuth(t *testing.T) (*AuthService, *memory.UserRepository) {
	t.Helper()
	repo := memory.NewUserRepository()
	return NewAuthService(repo, newHasher(t), newTokens(), nil, nil, "test", helpers.NewDiscardLogger()), repo
}
