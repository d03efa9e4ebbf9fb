package application

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
)

const (
	DefaultPageLimit  = 5
	MaxPageLimit      = 100
	DefaultSearchSize = 10
	MaxSearchSize     = 50
)

type UserService struct {
	Repo    repo.UserRepository
	Index   UserIndexer
	Avatars AvatarStore
	Logger  *logrus.Logger
}

// NewUserService builds the profile service. index and avatars may be nil.
func NewUserService(repo repo.UserRepository, index UserIndexer, avatars AvatarStore, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, Index: index, Avatars: avatars, Logger: logger}
}

type ListInput struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

type ListResult struct {
	Users      []entity.Public
	Page       int
	Limit      int
	TotalItems int
	TotalPages int
}

type UpdateInput struct {
	Name  *string
	Email *string
}

// List returns one page of users ordered by a whitelisted field.
func (s *UserService) List(ctx context.Context, in ListInput) (ListResult, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = DefaultPageLimit
	}
	if in.Limit > MaxPageLimit {
		in.Limit = MaxPageLimit
	}
	if in.Sort == "" {
		in.Sort = "created_at"
	}
	if !repo.SortableFields[in.Sort] {
		return ListResult{}, repo.ErrInvalidSort
	}

	users, total, err := s.Repo.List(ctx, repo.ListParams{
		Page:  in.Page,
		Limit: in.Limit,
		Sort:  in.Sort,
		Desc:  in.Order == "desc",
	})
	if err != nil {
		if errors.Is(err, repo.ErrInvalidSort) {
			return ListResult{}, err
		}
		s.logError(err, "list users failed", nil)
		return ListResult{}, internal(err)
	}

	out := make([]entity.Public, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return ListResult{
		Users:      out,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalItems: total,
		TotalPages: (total + in.Limit - 1) / in.Limit,
	}, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	return u, s.mapLookup(err, "get user by id failed")
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	return u, s.mapLookup(err, "get user by email failed")
}

// Update changes the caller's own profile.
func (s *UserService) Update(ctx context.Context, actor *entity.User, id string, in UpdateInput) (*entity.User, error) {
	if actor == nil || actor.ID != id {
		return nil, ErrForbidden
	}
	patch := entity.UserPatch{Name: in.Name}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		patch.Email = &email
	}

	u, err := s.Repo.Update(ctx, id, patch)
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, repo.ErrDuplicateEmail):
		return nil, ErrDuplicateUser
	default:
		s.logError(err, "update user failed", logrus.Fields{"user_id": id})
		return nil, internal(err)
	}

	s.reindex(ctx, u)
	return u, nil
}

// Delete removes the caller's own account. Tokens already issued stop
// authenticating because the gate can no longer resolve their subject.
func (s *UserService) Delete(ctx context.Context, actor *entity.User, id string) error {
	if actor == nil || actor.ID != id {
		return ErrForbidden
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logError(err, "delete user failed", logrus.Fields{"user_id": id})
		return internal(err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.logWarn(err, "remove user from index failed", id)
		}
	}
	return nil
}

// Search runs a full-text query against the user index. Without an index it
// returns an empty result.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]entity.Public, error) {
	if s.Index == nil || q == "" {
		return []entity.Public{}, nil
	}
	if size <= 0 {
		size = DefaultSearchSize
	}
	if size > MaxSearchSize {
		size = MaxSearchSize
	}
	hits, err := s.Index.Search(ctx, q, size)
	if err != nil {
		s.logError(err, "search users failed", logrus.Fields{"q": q})
		return nil, internal(err)
	}
	return hits, nil
}

// UploadAvatar stores the image and records its URL on the user.
func (s *UserService) UploadAvatar(ctx context.Context, userID, filename, contentType string, r io.Reader) (*entity.User, error) {
	if s.Avatars == nil {
		return nil, ErrAvatarUnavailable
	}
	url, err := s.Avatars.Upload(ctx, userID, filename, contentType, r)
	if err != nil {
		s.logError(err, "avatar upload failed", logrus.Fields{"user_id": userID})
		return nil, internal(err)
	}
	u, err := s.Repo.Update(ctx, userID, entity.UserPatch{AvatarURL: &url})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logError(err, "save avatar url failed", logrus.Fields{"user_id": userID})
		return nil, internal(err)
	}
	s.reindex(ctx, u)
	return u, nil
}

func (s *UserService) mapLookup(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	s.logError(err, msg, nil)
	return internal(err)
}

func (s *UserService) reindex(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil {
		s.logWarn(err, "reindex user failed", u.ID)
	}
}

func (s *UserService) logError(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}

func (s *UserService) logWarn(err error, msg, userID string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
}
