package memory

import (
	"context"
	"slices"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

type jobRepo struct{ s *Store }

func copyJob(j models.Job) *models.Job {
	j.Skills = slices.Clone(j.Skills)
	j.Benefits = slices.Clone(j.Benefits)
	return &j
}

func (r jobRepo) Create(ctx context.Context, job *models.Job) error {
	r.s.lock()
	defer r.s.unlock()
	if job.CompanyID != nil {
		if _, ok := r.s.d().companies[*job.CompanyID]; !ok {
			return repositories.ErrNotFound
		}
	}
	ensureID(&job.ID)
	r.s.d().jobs[job.ID] = *copyJob(*job)
	return nil
}

func (r jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	r.s.lock()
	defer r.s.unlock()
	j, ok := r.s.d().jobs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyJob(j), nil
}

func (r jobRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.GetByID(ctx, id)
}

func (r jobRepo) Update(ctx context.Context, job *models.Job) error {
	r.s.lock()
	defer r.s.unlock()
	current, ok := r.s.d().jobs[job.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	next := *copyJob(*job)
	next.ApplicationCount = current.ApplicationCount
	next.ViewCount = current.ViewCount
	r.s.d().jobs[job.ID] = next
	return nil
}

func (r jobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()
	if _, ok := d.jobs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(d.jobs, id)
	for aid, app := range d.applications {
		if app.JobID == id {
			delete(d.applications, aid)
		}
	}
	for key := range d.savedJobs {
		if key.jobID == id {
			delete(d.savedJobs, key)
		}
	}
	return nil
}

func (r jobRepo) bump(id uuid.UUID, apply func(*models.Job)) error {
	r.s.lock()
	defer r.s.unlock()
	j, ok := r.s.d().jobs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(&j)
	r.s.d().jobs[id] = j
	return nil
}

func (r jobRepo) IncrementApplications(ctx context.Context, id uuid.UUID) error {
	return r.bump(id, func(j *models.Job) { j.ApplicationCount++ })
}

func (r jobRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.bump(id, func(j *models.Job) { j.ViewCount++ })
}

func matchJob(j models.Job, f repositories.JobFilter) bool {
	if f.Search != "" && !containsFold(j.Title, f.Search) && !containsFold(j.Description, f.Search) {
		return false
	}
	if f.Type != nil && j.Type != *f.Type {
		return false
	}
	if f.Level != nil && j.Level != *f.Level {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.IsRemote != nil && j.IsRemote != *f.IsRemote {
		return false
	}
	if f.IsActive != nil && j.IsActive != *f.IsActive {
		return false
	}
	if f.CompanyID != nil && (j.CompanyID == nil || *j.CompanyID != *f.CompanyID) {
		return false
	}
	if f.PostedBy != nil && j.PostedBy != *f.PostedBy {
		return false
	}
	return true
}

func (r jobRepo) List(ctx context.Context, filter repositories.JobFilter, page repositories.Page) ([]*models.Job, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Job
	for _, j := range r.s.d().jobs {
		if matchJob(j, filter) {
			out = append(out, copyJob(j))
		}
	}
	sortBy(out, func(a, b *models.Job) int { return b.CreatedAt.Compare(a.CreatedAt) }, func(j *models.Job) uuid.UUID { return j.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r jobRepo) Count(ctx context.Context, filter repositories.JobFilter) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for _, j := range r.s.d().jobs {
		if matchJob(j, filter) {
			n++
		}
	}
	return n, nil
}

type companyRepo struct{ s *Store }

func (r companyRepo) Create(ctx context.Context, company *models.Company) error {
	r.s.lock()
	defer r.s.unlock()
	ensureID(&company.ID)
	r.s.d().companies[company.ID] = *company
	return nil
}

func (r companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	r.s.lock()
	defer r.s.unlock()
	c, ok := r.s.d().companies[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r companyRepo) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Company, error) {
	r.s.lock()
	defer r.s.unlock()
	out := make(map[uuid.UUID]*models.Company, len(ids))
	for _, id := range ids {
		if c, ok := r.s.d().companies[id]; ok {
			out[id] = &c
		}
	}
	return out, nil
}

func (r companyRepo) List(ctx context.Context, search string, page repositories.Page) ([]*models.Company, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Company
	for _, c := range r.s.d().companies {
		if search == "" || containsFold(c.Name, search) {
			c := c
			out = append(out, &c)
		}
	}
	sortBy(out, func(a, b *models.Company) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	}, func(c *models.Company) uuid.UUID { return c.ID })
	return paginate(out, page), int64(len(out)), nil
}

type applicationRepo struct{ s *Store }

func (r applicationRepo) Create(ctx context.Context, app *models.Application) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()
	if _, ok := d.jobs[app.JobID]; !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range d.applications {
		if existing.JobID == app.JobID && existing.UserID == app.UserID {
			return repositories.ErrDuplicate
		}
	}
	ensureID(&app.ID)
	d.applications[app.ID] = *app
	return nil
}

func (r applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	r.s.lock()
	defer r.s.unlock()
	a, ok := r.s.d().applications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r applicationRepo) GetByJobAndUser(ctx context.Context, jobID, userID uuid.UUID) (*models.Application, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, a := range r.s.d().applications {
		if a.JobID == jobID && a.UserID == userID {
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r applicationRepo) Update(ctx context.Context, app *models.Application) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.d().applications[app.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.d().applications[app.ID] = *app
	return nil
}

func (r applicationRepo) List(ctx context.Context, filter repositories.ApplicationFilter, page repositories.Page) ([]*models.Application, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Application
	for _, a := range r.s.d().applications {
		if filter.JobID != nil && a.JobID != *filter.JobID {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sortBy(out, func(a, b *models.Application) int { return b.AppliedAt.Compare(a.AppliedAt) }, func(a *models.Application) uuid.UUID { return a.ID })
	return paginate(out, page), int64(len(out)), nil
}

type savedJobRepo struct{ s *Store }

func (r savedJobRepo) Create(ctx context.Context, saved *models.SavedJob) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	key := savedKey{saved.JobID, saved.UserID}
	if _, ok := r.s.d().savedJobs[key]; ok {
		return false, nil
	}
	r.s.d().savedJobs[key] = *saved
	return true, nil
}

func (r savedJobRepo) Delete(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	key := savedKey{jobID, userID}
	if _, ok := r.s.d().savedJobs[key]; !ok {
		return false, nil
	}
	delete(r.s.d().savedJobs, key)
	return true, nil
}

func (r savedJobRepo) Exists(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	_, ok := r.s.d().savedJobs[savedKey{jobID, userID}]
	return ok, nil
}

func (r savedJobRepo) ListByUser(ctx context.Context, userID uuid.UUID, page repositories.Page) ([]*models.SavedJob, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.SavedJob
	for key, sj := range r.s.d().savedJobs {
		if key.userID == userID {
			sj := sj
			out = append(out, &sj)
		}
	}
	sortBy(out, func(a, b *models.SavedJob) int { return b.SavedAt.Compare(a.SavedAt) }, func(s *models.SavedJob) uuid.UUID { return s.JobID })
	return paginate(out, page), int64(len(out)), nil
}
