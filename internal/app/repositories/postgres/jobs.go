package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

var jobColumns = []string{
	"id", "posted_by", "company_id", "title", "description", "type", "level", "location",
	"is_remote", "salary_min", "salary_max", "skills", "benefits", "deadline", "is_active",
	"application_count", "view_count", "created_at", "updated_at",
}

type jobRepo struct{ s *Store }

func (r jobRepo) Create(ctx context.Context, j *models.Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("jobs").Columns(jobColumns...).Values(
		j.ID, j.PostedBy, j.CompanyID, j.Title, j.Description, j.Type, j.Level, j.Location,
		j.IsRemote, j.SalaryMin, j.SalaryMax, nonNil(j.Skills), nonNil(j.Benefits), j.Deadline, j.IsActive,
		j.ApplicationCount, j.ViewCount, j.CreatedAt, j.UpdatedAt,
	))
	return err
}

func (r jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return selectOne[models.Job](ctx, r.s.q, psql.Select(jobColumns...).From("jobs").Where(squirrel.Eq{"id": id}))
}

func (r jobRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return selectOne[models.Job](ctx, r.s.q, psql.Select(jobColumns...).From("jobs").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r jobRepo) Update(ctx context.Context, j *models.Job) error {
	return execOne(ctx, r.s.q, psql.Update("jobs").SetMap(map[string]interface{}{
		"company_id":  j.CompanyID,
		"title":       j.Title,
		"description": j.Description,
		"type":        j.Type,
		"level":       j.Level,
		"location":    j.Location,
		"is_remote":   j.IsRemote,
		"salary_min":  j.SalaryMin,
		"salary_max":  j.SalaryMax,
		"skills":      nonNil(j.Skills),
		"benefits":    nonNil(j.Benefits),
		"deadline":    j.Deadline,
		"is_active":   j.IsActive,
		"updated_at":  j.UpdatedAt,
	}).Where(squirrel.Eq{"id": j.ID}))
}

// Delete removes the job; applications cascade, bookmarks are not keyed to it.
func (r jobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.atomic(ctx, func(q querier) error {
		if _, err := exec(ctx, q, psql.Delete("saved_jobs").Where(squirrel.Eq{"job_id": id})); err != nil {
			return err
		}
		return execOne(ctx, q, psql.Delete("jobs").Where(squirrel.Eq{"id": id}))
	})
}

func (r jobRepo) IncrementApplications(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Update("jobs").
		Set("application_count", squirrel.Expr("application_count + 1")).
		Where(squirrel.Eq{"id": id}))
}

func (r jobRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Update("jobs").
		Set("view_count", squirrel.Expr("view_count + 1")).
		Where(squirrel.Eq{"id": id}))
}

func jobWhere(f repositories.JobFilter) squirrel.And {
	where := squirrel.And{}
	if f.Search != "" {
		where = append(where, searchAny(f.Search, "title", "description"))
	}
	if f.Type != nil {
		where = append(where, squirrel.Eq{"type": *f.Type})
	}
	if f.Level != nil {
		where = append(where, squirrel.Eq{"level": *f.Level})
	}
	if f.Location != "" {
		where = append(where, squirrel.ILike{"location": contains(f.Location)})
	}
	if f.IsRemote != nil {
		where = append(where, squirrel.Eq{"is_remote": *f.IsRemote})
	}
	if f.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *f.IsActive})
	}
	if f.CompanyID != nil {
		where = append(where, squirrel.Eq{"company_id": *f.CompanyID})
	}
	if f.PostedBy != nil {
		where = append(where, squirrel.Eq{"posted_by": *f.PostedBy})
	}
	return where
}

func (r jobRepo) List(ctx context.Context, filter repositories.JobFilter, page repositories.Page) ([]*models.Job, int64, error) {
	return listWithTotal[models.Job](ctx, r.s.q, jobColumns, "jobs", jobWhere(filter), []string{"created_at DESC", "id"}, page)
}

func (r jobRepo) Count(ctx context.Context, filter repositories.JobFilter) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From("jobs").Where(jobWhere(filter)))
}

var companyColumns = []string{"id", "name", "description", "website", "logo", "industry", "location", "created_at"}

type companyRepo struct{ s *Store }

func (r companyRepo) Create(ctx context.Context, c *models.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("companies").Columns(companyColumns...).Values(
		c.ID, c.Name, c.Description, c.Website, c.Logo, c.Industry, c.Location, c.CreatedAt,
	))
	return err
}

func (r companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return selectOne[models.Company](ctx, r.s.q, psql.Select(companyColumns...).From("companies").Where(squirrel.Eq{"id": id}))
}

func (r companyRepo) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Company, error) {
	out := make(map[uuid.UUID]*models.Company, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	companies, err := selectMany[models.Company](ctx, r.s.q, psql.Select(companyColumns...).From("companies").Where(squirrel.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	for _, c := range companies {
		out[c.ID] = c
	}
	return out, nil
}

func (r companyRepo) List(ctx context.Context, search string, page repositories.Page) ([]*models.Company, int64, error) {
	where := squirrel.And{}
	if search != "" {
		where = append(where, squirrel.ILike{"name": contains(search)})
	}
	return listWithTotal[models.Company](ctx, r.s.q, companyColumns, "companies", where, []string{"name", "id"}, page)
}

var applicationColumns = []string{
	"id", "job_id", "user_id", "cover_letter", "resume_url", "portfolio_url", "status", "notes", "applied_at", "updated_at",
}

type applicationRepo struct{ s *Store }

func (r applicationRepo) Create(ctx context.Context, a *models.Application) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("applications").Columns(applicationColumns...).Values(
		a.ID, a.JobID, a.UserID, a.CoverLetter, a.ResumeURL, a.PortfolioURL, a.Status, a.Notes, a.AppliedAt, a.UpdatedAt,
	))
	return err
}

func (r applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return selectOne[models.Application](ctx, r.s.q, psql.Select(applicationColumns...).From("applications").Where(squirrel.Eq{"id": id}))
}

func (r applicationRepo) GetByJobAndUser(ctx context.Context, jobID, userID uuid.UUID) (*models.Application, error) {
	return selectOne[models.Application](ctx, r.s.q, psql.Select(applicationColumns...).From("applications").
		Where(squirrel.Eq{"job_id": jobID, "user_id": userID}))
}

func (r applicationRepo) Update(ctx context.Context, a *models.Application) error {
	return execOne(ctx, r.s.q, psql.Update("applications").SetMap(map[string]interface{}{
		"cover_letter":  a.CoverLetter,
		"resume_url":    a.ResumeURL,
		"portfolio_url": a.PortfolioURL,
		"status":        a.Status,
		"notes":         a.Notes,
		"updated_at":    a.UpdatedAt,
	}).Where(squirrel.Eq{"id": a.ID}))
}

func (r applicationRepo) List(ctx context.Context, filter repositories.ApplicationFilter, page repositories.Page) ([]*models.Application, int64, error) {
	where := squirrel.And{}
	if filter.JobID != nil {
		where = append(where, squirrel.Eq{"job_id": *filter.JobID})
	}
	if filter.UserID != nil {
		where = append(where, squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	return listWithTotal[models.Application](ctx, r.s.q, applicationColumns, "applications", where, []string{"applied_at DESC", "id"}, page)
}

var savedJobColumns = []string{"job_id", "user_id", "saved_at"}

type savedJobRepo struct{ s *Store }

func (r savedJobRepo) Create(ctx context.Context, saved *models.SavedJob) (bool, error) {
	n, err := exec(ctx, r.s.q, psql.Insert("saved_jobs").Columns(savedJobColumns...).
		Values(saved.JobID, saved.UserID, saved.SavedAt).
		Suffix("ON CONFLICT (job_id, user_id) DO NOTHING"))
	return n > 0, err
}

func (r savedJobRepo) Delete(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	n, err := exec(ctx, r.s.q, psql.Delete("saved_jobs").Where(squirrel.Eq{"job_id": jobID, "user_id": userID}))
	return n > 0, err
}

func (r savedJobRepo) Exists(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	return exists(ctx, r.s.q, "saved_jobs", squirrel.Eq{"job_id": jobID, "user_id": userID})
}

func (r savedJobRepo) ListByUser(ctx context.Context, userID uuid.UUID, page repositories.Page) ([]*models.SavedJob, int64, error) {
	return listWithTotal[models.SavedJob](ctx, r.s.q, savedJobColumns, "saved_jobs", squirrel.Eq{"user_id": userID}, []string{"saved_at DESC", "job_id"}, page)
}
