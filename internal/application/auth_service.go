package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-auth-service/pkg/mailer/templates"
)

const SignOutMessage = "Successfully signed out"

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type AuthService struct {
	Repo    repo.UserRepository
	Hasher  PasswordHasher
	Tokens  TokenService
	Index   UserIndexer
	Mail    EmailQueue
	AppName string
	Logger  *logrus.Logger
}

// NewAuthService wires the sign-up/sign-in flow. index and mail may be nil.
func NewAuthService(repo repo.UserRepository, hasher PasswordHasher, tokens TokenService, index UserIndexer, mail EmailQueue, appName string, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:    repo,
		Hasher:  hasher,
		Tokens:  tokens,
		Index:   index,
		Mail:    mail,
		AppName: appName,
		Logger:  logger,
	}
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

type TokenPair struct {
	TokenType          string
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// SignUp registers a new user. Existence of the email alone blocks registration.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) error {
	if len(in.Password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	email := NormalizeEmail(in.Email)

	existing, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return ErrDuplicateUser
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		s.logError(err, "lookup by email failed", nil)
		return internal(err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		s.logError(err, "password hashing failed", nil)
		return internal(err)
	}

	u, err := s.Repo.Create(ctx, entity.NewUser{Name: in.Name, Email: email, PasswordHash: hash})
	if err != nil {
		// lost the race against a concurrent sign-up; the store's unique index decided
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return ErrDuplicateUser
		}
		s.logError(err, "create user failed", nil)
		return internal(err)
	}

	signUps.Inc()
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	s.afterSignUp(ctx, u)
	return nil
}

func (s *AuthService) afterSignUp(ctx context.Context, u *entity.User) {
	if s.Index != nil {
		if err := s.Index.Index(ctx, u); err != nil {
			s.logWarn(err, "index new user failed", u.ID)
		}
	}
	if s.Mail != nil {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: tpl.Welcome,
			Data:     tpl.WelcomeData{Name: u.Name, AppName: s.AppName}.Map(),
		}
		if err := s.Mail.Enqueue(ctx, job); err != nil {
			s.logWarn(err, "enqueue welcome email failed", u.ID)
		}
	}
}

// SignIn verifies credentials and issues an access/refresh pair. Unknown email
// and wrong password are indistinguishable to the caller, including in cost.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.VerifyDummy(password)
			signIns.WithLabelValues("failed").Inc()
			return TokenPair{}, ErrInvalidCredentials
		}
		s.logError(err, "lookup by email failed", nil)
		return TokenPair{}, internal(err)
	}
	if !s.Hasher.Verify(password, u.Password) {
		signIns.WithLabelValues("failed").Inc()
		return TokenPair{}, ErrInvalidCredentials
	}
	signIns.WithLabelValues("ok").Inc()
	return s.issuePair(u.ID)
}

// SignOut has no server-side effect: tokens are not tracked, so the client discards them.
func (s *AuthService) SignOut() string {
	return SignOutMessage
}

// Refresh exchanges a refresh token for a new pair, provided the user still exists.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.Tokens.Verify(refreshToken, helpers.RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	u, err := s.Repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrUserNotFound
		}
		s.logError(err, "lookup by id failed", logrus.Fields{"user_id": claims.Subject})
		return TokenPair{}, internal(err)
	}
	refreshes.Inc()
	return s.issuePair(u.ID)
}

func (s *AuthService) issuePair(userID string) (TokenPair, error) {
	access, aexp, err := s.Tokens.Issue(userID, helpers.AccessToken)
	if err != nil {
		s.logError(err, "generate access token failed", logrus.Fields{"user_id": userID})
		return TokenPair{}, internal(err)
	}
	refresh, rexp, err := s.Tokens.Issue(userID, helpers.RefreshToken)
	if err != nil {
		s.logError(err, "generate refresh token failed", logrus.Fields{"user_id": userID})
		return TokenPair{}, internal(err)
	}
	return TokenPair{
		TokenType:          "bearer",
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

func (s *AuthService) logError(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}

func (s *AuthService) logWarn(err error, msg, userID string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
}
