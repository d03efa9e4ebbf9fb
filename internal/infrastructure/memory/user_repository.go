package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
)

// UserRepository keeps users in process memory. Used for local runs and tests.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, nu entity.NewUser) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(nu.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	u := &entity.User{
		ID:        uuid.NewString(),
		Email:     nu.Email,
		Password:  nu.PasswordHash,
		Name:      nu.Name,
		CreatedAt: r.now().UTC(),
	}
	r.byID[u.ID] = u
	r.byEmail[key] = u.ID

	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *UserRepository) List(_ context.Context, p repository.ListParams) ([]entity.User, int, error) {
	less, ok := sorters[p.Sort]
	if !ok {
		return nil, 0, repository.ErrInvalidSort
	}

	r.mu.RLock()
	all := make([]entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, *u)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := &all[i], &all[j]
		if p.Desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	start := p.Offset()
	if start >= total {
		return []entity.User{}, total, nil
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name == nil && patch.Email == nil && patch.AvatarURL == nil {
		cp := *u
		return &cp, nil
	}

	if patch.Email != nil {
		newKey := strings.ToLower(*patch.Email)
		oldKey := strings.ToLower(u.Email)
		if owner, taken := r.byEmail[newKey]; taken && owner != id {
			return nil, repository.ErrDuplicateEmail
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = id
		u.Email = *patch.Email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	u.UpdatedAt = r.now().UTC()

	cp := *u
	return &cp, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, strings.ToLower(u.Email))
	delete(r.byID, id)
	return nil
}

var sorters = map[string]func(a, b *entity.User) bool{
	"created_at": func(a, b *entity.User) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"updated_at": func(a, b *entity.User) bool { return a.UpdatedAt.Before(b.UpdatedAt) },
	"name":       func(a, b *entity.User) bool { return a.Name < b.Name },
	"email":      func(a, b *entity.User) bool { return a.Email < b.Email },
}

var _ repository.UserRepository = (*UserRepository)(nil)
