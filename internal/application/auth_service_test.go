package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/mailer"
)

func TestSignUp_StoresHashNotPlaintext(t *testing.T) {
	svc, repo := newAuth(t)
	ctx := context.Background()

	err := svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "  Ann@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)

	u, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, svc.Hasher.Verify("s3cret-pass", u.Password))
}

func TestSignUp_Duplicate(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "password-1"}))

	// a different password does not matter, existence alone blocks registration
	err := svc.SignUp(ctx, SignUpInput{Name: "Other", Email: "ANN@example.com", Password: "password-2"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestSignUp_PasswordTooLong(t *testing.T) {
	svc, repo := newAuth(t)
	ctx := context.Background()

	// 37 two-byte runes pass a character count but exceed bcrypt's byte limit
	err := svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: strings.Repeat("é", 37)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = repo.GetByEmail(ctx, "ann@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: strings.Repeat("a", MaxPasswordBytes)}))
}

func TestSignUp_ConcurrentSameEmail(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.SignUp(ctx, SignUpInput{Name: "x", Email: "race@example.com", Password: "password-1"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateUser)
	}
	assert.Equal(t, 1, ok)
}

func TestSignUp_StoreFailures(t *testing.T) {
	boom := errors.New("store down")
	ctx := context.Background()

	testCases := []struct {
		description string
		setup       func(r *mockRepo)
		want        error
	}{
		{
			description: "lookup fails",
			setup: func(r *mockRepo) {
				r.On("GetByEmail", mock.Anything, "ann@example.com").Return(nil, boom)
			},
			want: ErrInternal,
		},
		{
			description: "create fails",
			setup: func(r *mockRepo) {
				r.On("GetByEmail", mock.Anything, "ann@example.com").Return(nil, repository.ErrNotFound)
				r.On("Create", mock.Anything, mock.Anything).Return(nil, boom)
			},
			want: ErrInternal,
		},
		{
			description: "unique index fires on create",
			setup: func(r *mockRepo) {
				r.On("GetByEmail", mock.Anything, "ann@example.com").Return(nil, repository.ErrNotFound)
				r.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicateEmail)
			},
			want: ErrDuplicateUser,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			r := &mockRepo{}
			tc.setup(r)
			svc := NewAuthService(r, newHasher(t), newTokens(), nil, nil, "test", helpers.NewDiscardLogger())

			err := svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "password-1"})
			assert.ErrorIs(t, err, tc.want)
			r.AssertExpectations(t)
		})
	}
}

func TestSignUp_SideEffectsAreBestEffort(t *testing.T) {
	repo := memory.NewUserRepository()
	ix := &mockIndexer{}
	q := &mockQueue{}
	ix.On("Index", mock.Anything, mock.MatchedBy(func(u *entity.User) bool { return u.Email == "ann@example.com" })).
		Return(errors.New("es down")).Once()
	q.On("Enqueue", mock.Anything, mock.MatchedBy(func(job mailer.EmailJob) bool {
		return job.To == "ann@example.com" && job.Template == "welcome" && job.Data["Name"] == "Ann"
	})).Return(errors.New("broker down")).Once()

	svc := NewAuthService(repo, newHasher(t), newTokens(), ix, q, "test", helpers.NewDiscardLogger())
	require.NoError(t, svc.SignUp(context.Background(), SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "password-1"}))

	ix.AssertExpectations(t)
	q.AssertExpectations(t)
}

func TestSignIn(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "correct-horse"}))

	pair, err := svc.SignIn(ctx, "ANN@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))

	claims, err := svc.Tokens.Verify(pair.AccessToken, helpers.AccessToken)
	require.NoError(t, err)
	u, err := svc.Repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)

	_, err = svc.Tokens.Verify(pair.RefreshToken, helpers.RefreshToken)
	require.NoError(t, err)
}

func TestSignIn_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "correct-horse"}))

	_, wrongPassword := svc.SignIn(ctx, "ann@example.com", "wrong-horse")
	_, unknownEmail := svc.SignIn(ctx, "nobody@example.com", "correct-horse")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestSignIn_StoreFailure(t *testing.T) {
	r := &mockRepo{}
	r.On("GetByEmail", mock.Anything, "ann@example.com").Return(nil, errors.New("timeout"))
	svc := NewAuthService(r, newHasher(t), newTokens(), nil, nil, "test", helpers.NewDiscardLogger())

	_, err := svc.SignIn(context.Background(), "ann@example.com", "pw")
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOut(t *testing.T) {
	svc, _ := newAuth(t)
	assert.Equal(t, "Successfully signed out", svc.SignOut())
}

func TestRefresh(t *testing.T) {
	svc, repo := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "correct-horse"}))
	pair, err := svc.SignIn(ctx, "ann@example.com", "correct-horse")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, helpers.ErrTokenWrongKind)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, helpers.ErrTokenInvalid)

	u, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefresh_Expired(t *testing.T) {
	svc, _ := newAuth(t)
	past := newTokens().WithClock(func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) })
	tok, _, err := past.Issue("someone", helpers.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), tok)
	assert.ErrorIs(t, err, helpers.ErrTokenExpired)
}
