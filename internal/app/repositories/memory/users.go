package memory

import (
	"context"
	"strings"
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()

	for _, u := range d.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	ensureID(&user.ID)
	stored := *user
	stored.Profile = nil
	d.users[user.ID] = stored
	if profile != nil {
		profile.UserID = user.ID
		d.profiles[user.ID] = *profile
	}
	return nil
}

func (r userRepo) withProfile(u models.User) *models.User {
	if p, ok := r.s.d().profiles[u.ID]; ok {
		u.Profile = &p
	}
	return &u
}

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.lock()
	defer r.s.unlock()
	u, ok := r.s.d().users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.withProfile(u), nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, u := range r.s.d().users {
		if strings.EqualFold(u.Email, email) {
			return r.withProfile(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus, at time.Time) error {
	r.s.lock()
	defer r.s.unlock()
	u, ok := r.s.d().users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = at
	r.s.d().users[id] = u
	return nil
}

func (r userRepo) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.d().users[profile.UserID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.d().profiles[profile.UserID] = *profile
	return nil
}

func (r userRepo) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.lock()
	defer r.s.unlock()
	u, ok := r.s.d().users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.LastLoginAt = &at
	r.s.d().users[id] = u
	return nil
}

func (r userRepo) Profiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	r.s.lock()
	defer r.s.unlock()
	out := make(map[uuid.UUID]*models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := r.s.d().profiles[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r userRepo) match(u models.User, f repositories.UserFilter) bool {
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	if f.Status != nil && u.Status != *f.Status {
		return false
	}
	if f.CreatedAfter != nil && !u.CreatedAt.After(*f.CreatedAfter) {
		return false
	}
	if f.Search != "" {
		p := r.s.d().profiles[u.ID]
		if !containsFold(u.Email, f.Search) && !containsFold(p.FullName, f.Search) {
			return false
		}
	}
	return true
}

func (r userRepo) List(ctx context.Context, filter repositories.UserFilter, page repositories.Page) ([]*models.User, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.User
	for _, u := range r.s.d().users {
		if r.match(u, filter) {
			out = append(out, r.withProfile(u))
		}
	}
	sortBy(out, func(a, b *models.User) int { return b.CreatedAt.Compare(a.CreatedAt) }, func(u *models.User) uuid.UUID { return u.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r userRepo) Count(ctx context.Context, filter repositories.UserFilter) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for _, u := range r.s.d().users {
		if r.match(u, filter) {
			n++
		}
	}
	return n, nil
}
