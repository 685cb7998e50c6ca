package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

var (
	userColumns    = []string{"u.id", "u.email", "u.password", "u.role", "u.status", "u.created_at", "u.updated_at", "u.last_login_at"}
	profileColumns = []string{"user_id", "full_name", "avatar", "current_position", "current_company", "bio", "graduation_year", "updated_at"}
)

const usersWithProfiles = "users u LEFT JOIN profiles p ON p.user_id = u.id"

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.s.atomic(ctx, func(q querier) error {
		_, err := exec(ctx, q, psql.Insert("users").
			Columns("id", "email", "password", "role", "status", "created_at", "updated_at", "last_login_at").
			Values(user.ID, user.Email, user.Password, user.Role, user.Status, user.CreatedAt, user.UpdatedAt, user.LastLoginAt))
		if err != nil || profile == nil {
			return err
		}
		profile.UserID = user.ID
		return r.upsertProfile(ctx, q, profile)
	})
}

func (r userRepo) upsertProfile(ctx context.Context, q querier, p *models.Profile) error {
	_, err := exec(ctx, q, psql.Insert("profiles").
		Columns(profileColumns...).
		Values(p.UserID, p.FullName, p.Avatar, p.CurrentPosition, p.CurrentCompany, p.Bio, p.GraduationYear, p.UpdatedAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			avatar = EXCLUDED.avatar,
			current_position = EXCLUDED.current_position,
			current_company = EXCLUDED.current_company,
			bio = EXCLUDED.bio,
			graduation_year = EXCLUDED.graduation_year,
			updated_at = EXCLUDED.updated_at`))
	return err
}

func (r userRepo) get(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	user, err := selectOne[models.User](ctx, r.s.q, psql.Select(userColumns...).From("users u").Where(where))
	if err != nil {
		return nil, err
	}
	profiles, err := r.Profiles(ctx, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	user.Profile = profiles[user.ID]
	return user, nil
}

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.get(ctx, squirrel.Eq{"u.id": id})
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, squirrel.Expr("lower(u.email) = lower(?)", email))
}

func (r userRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus, at time.Time) error {
	return execOne(ctx, r.s.q, psql.Update("users").
		Set("status", status).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}))
}

func (r userRepo) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.upsertProfile(ctx, r.s.q, profile)
}

func (r userRepo) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return execOne(ctx, r.s.q, psql.Update("users").Set("last_login_at", at).Where(squirrel.Eq{"id": id}))
}

func (r userRepo) Profiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	out := make(map[uuid.UUID]*models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	profiles, err := selectMany[models.Profile](ctx, r.s.q, psql.Select(profileColumns...).From("profiles").Where(squirrel.Eq{"user_id": ids}))
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func userWhere(f repositories.UserFilter) squirrel.And {
	where := squirrel.And{}
	if f.Role != nil {
		where = append(where, squirrel.Eq{"u.role": *f.Role})
	}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"u.status": *f.Status})
	}
	if f.CreatedAfter != nil {
		where = append(where, squirrel.Gt{"u.created_at": *f.CreatedAfter})
	}
	if f.Search != "" {
		where = append(where, searchAny(f.Search, "u.email", "p.full_name"))
	}
	return where
}

func (r userRepo) List(ctx context.Context, filter repositories.UserFilter, page repositories.Page) ([]*models.User, int64, error) {
	users, total, err := listWithTotal[models.User](ctx, r.s.q, userColumns, usersWithProfiles, userWhere(filter), []string{"u.created_at DESC", "u.id"}, page)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	profiles, err := r.Profiles(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, u := range users {
		u.Profile = profiles[u.ID]
	}
	return users, total, nil
}

func (r userRepo) Count(ctx context.Context, filter repositories.UserFilter) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From(usersWithProfiles).Where(userWhere(filter)))
}
