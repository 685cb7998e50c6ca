package services

import (
	"context"
	"errors"
	"fmt"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/metrics"
	"github.com/alumniconnect/platform/internal/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobService runs the job board: postings, applications and bookmarks.
type JobService struct {
	base
}

// NewJobService creates a new JobService
func NewJobService(store repositories.Store, cfg Config, logger zerolog.Logger) *JobService {
	return &JobService{base: newBase(store, cfg, logger, "jobs")}
}

func validateSalary(lo, hi *int64) error {
	if lo != nil && *lo < 0 {
		return apperrors.NewValidationError("salaryMin", "salary must not be negative")
	}
	if hi != nil && *hi < 0 {
		return apperrors.NewValidationError("salaryMax", "salary must not be negative")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return apperrors.NewValidationError("salaryMax", "maximum salary is below the minimum")
	}
	return nil
}

// CreateJob posts a new, active job for the caller.
func (s *JobService) CreateJob(ctx context.Context, caller *appAuth.Caller, req dto.CreateJobRequest) (_ *dto.JobView, err error) {
	ctx, span := s.startSpan(ctx, "jobs.CreateJob")
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	title := sanitize.Text(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	if !req.Type.Valid() {
		return nil, apperrors.NewValidationError("type", "unknown job type")
	}
	if !req.Level.Valid() {
		return nil, apperrors.NewValidationError("level", "unknown job level")
	}
	if err := validateSalary(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}

	now := s.now()
	job := &models.Job{
		ID:          uuid.New(),
		PostedBy:    caller.ID,
		CompanyID:   req.CompanyID,
		Title:       title,
		Description: sanitize.HTML(req.Description),
		Type:        req.Type,
		Level:       req.Level,
		Location:    sanitize.Text(req.Location),
		IsRemote:    req.IsRemote,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Skills:      nonNilSlice(sanitize.TextSlice(req.Skills)),
		Benefits:    nonNilSlice(sanitize.TextSlice(req.Benefits)),
		Deadline:    req.Deadline,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Jobs().Create(ctx, job); err != nil {
		if errors.Is(err, repositories.ErrNotFound) && req.CompanyID != nil {
			return nil, apperrors.NewNotFoundError("company", *req.CompanyID)
		}
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.logger.Info().Str("jobID", job.ID.String()).Str("postedBy", caller.ID.String()).Msg("Job posted")
	return s.view(ctx, caller, job)
}

func nonNilSlice(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// Apply submits the caller's application. The unique (job, user) key is the
// serialization point for concurrent duplicates.
func (s *JobService) Apply(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID, req dto.ApplyJobRequest) (_ *dto.ApplicationView, err error) {
	ctx, span := s.startSpan(ctx, "jobs.Apply", idAttr("job.id", jobID))
	defer func() {
		metrics.ApplicationsTotal.WithLabelValues(apperrors.Kind(err)).Inc()
		endSpan(span, err)
	}()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	var app *models.Application
	var job *models.Job
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		j, err := tx.Jobs().GetByIDForUpdate(ctx, jobID)
		if err != nil {
			return notFound(err, "job", jobID)
		}
		_, err = tx.Applications().GetByJobAndUser(ctx, jobID, caller.ID)
		switch {
		case err == nil:
			return apperrors.NewConflictError("already applied to this job").WithDetail("jobId", jobID.String())
		case !errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("load application: %w", err)
		}
		now := s.now()
		if !j.AcceptingApplications(now) {
			return apperrors.NewStateError("job is no longer accepting applications").
				WithDetails(map[string]interface{}{"jobId": jobID.String(), "isActive": j.IsActive})
		}

		a := &models.Application{
			ID:           uuid.New(),
			JobID:        jobID,
			UserID:       caller.ID,
			CoverLetter:  cleanText(req.CoverLetter),
			ResumeURL:    trimOptional(req.ResumeURL),
			PortfolioURL: trimOptional(req.PortfolioURL),
			Status:       models.ApplicationPending,
			AppliedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Applications().Create(ctx, a); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.NewConflictError("already applied to this job").WithDetail("jobId", jobID.String())
			}
			return fmt.Errorf("create application: %w", err)
		}
		if err := tx.Jobs().IncrementApplications(ctx, jobID); err != nil {
			return fmt.Errorf("increment applications: %w", err)
		}
		app, job = a, j
		return nil
	})
	if err != nil {
		s.logOutcome(err, "Application rejected", map[string]interface{}{"jobID": jobID.String(), "userID": caller.ID.String()})
		return nil, wrap(err, "apply")
	}

	s.logger.Info().Str("jobID", jobID.String()).Str("userID", caller.ID.String()).Msg("Application submitted")
	return &dto.ApplicationView{Application: *app, Job: dto.NewJobSummary(job)}, nil
}

// ToggleSave flips the caller's bookmark on a job. Removing a bookmark works
// even after the job is gone; adding one needs the job to exist.
func (s *JobService) ToggleSave(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) (_ *dto.SaveResult, err error) {
	ctx, span := s.startSpan(ctx, "jobs.ToggleSave", idAttr("job.id", jobID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	var saved bool
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		removed, err := tx.SavedJobs().Delete(ctx, jobID, caller.ID)
		if err != nil {
			return fmt.Errorf("delete bookmark: %w", err)
		}
		if removed {
			saved = false
			return nil
		}
		if _, err := tx.Jobs().GetByID(ctx, jobID); err != nil {
			return notFound(err, "job", jobID)
		}
		if _, err := tx.SavedJobs().Create(ctx, &models.SavedJob{JobID: jobID, UserID: caller.ID, SavedAt: s.now()}); err != nil {
			return fmt.Errorf("create bookmark: %w", err)
		}
		saved = true
		return nil
	})
	if err != nil {
		return nil, wrap(err, "toggle save")
	}
	metrics.TogglesTotal.WithLabelValues("job", toggleState(saved)).Inc()
	return &dto.SaveResult{Saved: saved}, nil
}

func toggleState(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// UpdateApplicationStatus moves an application along the hiring pipeline.
// Only the job's poster may do this, and anyone else learns nothing about
// whether the application exists.
func (s *JobService) UpdateApplicationStatus(ctx context.Context, caller *appAuth.Caller, applicationID uuid.UUID, req dto.UpdateApplicationStatusRequest) (_ *dto.ApplicationView, err error) {
	ctx, span := s.startSpan(ctx, "jobs.UpdateApplicationStatus", idAttr("application.id", applicationID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	denied := apperrors.NewAuthorizationError("only the job poster may update this application").
		WithDetail("applicationId", applicationID.String())

	var app *models.Application
	var job *models.Job
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		a, err := tx.Applications().GetByID(ctx, applicationID)
		if errors.Is(err, repositories.ErrNotFound) {
			return denied
		}
		if err != nil {
			return fmt.Errorf("load application: %w", err)
		}
		j, err := tx.Jobs().GetByID(ctx, a.JobID)
		if errors.Is(err, repositories.ErrNotFound) {
			return denied
		}
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}
		if j.PostedBy != caller.ID {
			return denied
		}

		if !req.Status.Valid() {
			return apperrors.NewValidationError("status", "unknown application status")
		}
		if !a.Status.CanTransitionTo(req.Status) {
			return apperrors.NewStateError(fmt.Sprintf("cannot move application from %s to %s", a.Status, req.Status)).
				WithDetails(map[string]interface{}{"applicationId": applicationID.String(), "from": string(a.Status), "to": string(req.Status)})
		}
		a.Status = req.Status
		if req.Notes != nil {
			a.Notes = cleanText(req.Notes)
		}
		a.UpdatedAt = s.now()
		if err := tx.Applications().Update(ctx, a); err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		app, job = a, j
		return nil
	})
	if err != nil {
		s.logOutcome(err, "Application update rejected", map[string]interface{}{"applicationID": applicationID.String()})
		return nil, wrap(err, "update application status")
	}

	s.logger.Info().Str("applicationID", applicationID.String()).Str("status", string(app.Status)).Msg("Application status updated")
	users, err := summaries(ctx, s.store, []uuid.UUID{app.UserID})
	if err != nil {
		return nil, err
	}
	return &dto.ApplicationView{Application: *app, Job: dto.NewJobSummary(job), Applicant: users[app.UserID]}, nil
}

// UpdateJob edits a posting.
func (s *JobService) UpdateJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID, req dto.UpdateJobRequest) (*dto.JobView, error) {
	var job *models.Job
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		j, err := tx.Jobs().GetByIDForUpdate(ctx, jobID)
		if err != nil {
			return notFound(err, "job", jobID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, j.PostedBy, "job"); err != nil {
			return err
		}
		if err := applyJobUpdate(j, req); err != nil {
			return err
		}
		j.UpdatedAt = s.now()
		if err := tx.Jobs().Update(ctx, j); err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update job")
	}
	return s.view(ctx, caller, job)
}

func applyJobUpdate(j *models.Job, req dto.UpdateJobRequest) error {
	if req.Title != nil {
		title := sanitize.Text(*req.Title)
		if title == "" {
			return apperrors.NewValidationError("title", "title must not be empty")
		}
		j.Title = title
	}
	if req.Description != nil {
		j.Description = sanitize.HTML(*req.Description)
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return apperrors.NewValidationError("type", "unknown job type")
		}
		j.Type = *req.Type
	}
	if req.Level != nil {
		if !req.Level.Valid() {
			return apperrors.NewValidationError("level", "unknown job level")
		}
		j.Level = *req.Level
	}
	if req.Location != nil {
		j.Location = sanitize.Text(*req.Location)
	}
	if req.IsRemote != nil {
		j.IsRemote = *req.IsRemote
	}
	if req.SalaryMin != nil {
		j.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		j.SalaryMax = req.SalaryMax
	}
	if err := validateSalary(j.SalaryMin, j.SalaryMax); err != nil {
		return err
	}
	if req.Skills != nil {
		j.Skills = nonNilSlice(sanitize.TextSlice(req.Skills))
	}
	if req.Benefits != nil {
		j.Benefits = nonNilSlice(sanitize.TextSlice(req.Benefits))
	}
	if req.Deadline != nil {
		j.Deadline = req.Deadline
	}
	if req.IsActive != nil {
		j.IsActive = *req.IsActive
	}
	return nil
}

// CloseJob stops a posting from taking applications.
func (s *JobService) CloseJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) error {
	closed := false
	_, err := s.UpdateJob(ctx, caller, jobID, dto.UpdateJobRequest{IsActive: &closed})
	if err == nil {
		s.logger.Info().Str("jobID", jobID.String()).Msg("Job closed")
	}
	return err
}

// DeleteJob removes the posting, its applications and bookmarks.
func (s *JobService) DeleteJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) error {
	return wrap(s.store.WithTx(ctx, func(tx repositories.Store) error {
		j, err := tx.Jobs().GetByIDForUpdate(ctx, jobID)
		if err != nil {
			return notFound(err, "job", jobID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, j.PostedBy, "job"); err != nil {
			return err
		}
		return tx.Jobs().Delete(ctx, jobID)
	}), "delete job")
}

// GetJob returns a posting and counts the view.
func (s *JobService) GetJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) (*dto.JobView, error) {
	job, err := s.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	s.bestEffort(ctx, "job views", func(ctx context.Context) error {
		if err := s.store.Jobs().IncrementViews(ctx, jobID); err != nil {
			return err
		}
		job.ViewCount++
		return nil
	})
	return s.view(ctx, caller, job)
}

func (s *JobService) view(ctx context.Context, caller *appAuth.Caller, job *models.Job) (*dto.JobView, error) {
	views, err := s.views(ctx, caller, []*models.Job{job})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *JobService) views(ctx context.Context, caller *appAuth.Caller, jobs []*models.Job) ([]*dto.JobView, error) {
	posters := make([]uuid.UUID, len(jobs))
	var companyIDs []uuid.UUID
	for i, j := range jobs {
		posters[i] = j.PostedBy
		if j.CompanyID != nil {
			companyIDs = append(companyIDs, *j.CompanyID)
		}
	}
	users, err := summaries(ctx, s.store, posters)
	if err != nil {
		return nil, err
	}
	companies, err := s.store.Companies().GetMany(ctx, uniqueIDs(companyIDs))
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}

	out := make([]*dto.JobView, len(jobs))
	for i, j := range jobs {
		v := &dto.JobView{Job: *j, Poster: users[j.PostedBy]}
		if j.CompanyID != nil {
			v.Company = companies[*j.CompanyID]
		}
		if caller != nil {
			app, err := s.store.Applications().GetByJobAndUser(ctx, j.ID, caller.ID)
			switch {
			case err == nil:
				status := app.Status
				v.HasApplied = true
				v.ApplicationStatus = &status
			case !errors.Is(err, repositories.ErrNotFound):
				return nil, fmt.Errorf("load application: %w", err)
			}
			if v.IsSaved, err = s.store.SavedJobs().Exists(ctx, j.ID, caller.ID); err != nil {
				return nil, fmt.Errorf("load bookmark: %w", err)
			}
		}
		out[i] = v
	}
	return out, nil
}

// ListJobs lists active postings unless closed ones are asked for.
func (s *JobService) ListJobs(ctx context.Context, caller *appAuth.Caller, q dto.JobListQuery) (*dto.PaginatedResponse[*dto.JobView], error) {
	filter := repositories.JobFilter{Search: q.Search, Location: q.Location, IsRemote: q.IsRemote}
	if !q.IncludeClosed {
		active := true
		filter.IsActive = &active
	}
	if q.Type != "" {
		t := models.JobType(q.Type)
		if !t.Valid() {
			return nil, apperrors.NewValidationError("type", "unknown job type")
		}
		filter.Type = &t
	}
	if q.Level != "" {
		l := models.JobLevel(q.Level)
		if !l.Valid() {
			return nil, apperrors.NewValidationError("level", "unknown job level")
		}
		filter.Level = &l
	}
	var err error
	if filter.CompanyID, err = parseUUIDParam("companyId", q.CompanyID); err != nil {
		return nil, err
	}
	if filter.PostedBy, err = parseUUIDParam("postedBy", q.PostedBy); err != nil {
		return nil, err
	}

	page, pageNum, size := pageOf(q.PageQuery)
	jobs, total, err := s.store.Jobs().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	views, err := s.views(ctx, caller, jobs)
	if err != nil {
		return nil, err
	}
	return paginated(views, total, pageNum, size), nil
}

func parseApplicationStatus(raw string) (*models.ApplicationStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status := models.ApplicationStatus(raw)
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown application status")
	}
	return &status, nil
}

// MyApplications lists the caller's applications, newest first.
func (s *JobService) MyApplications(ctx context.Context, caller *appAuth.Caller, q dto.ApplicationListQuery) (*dto.PaginatedResponse[*dto.ApplicationView], error) {
	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	status, err := parseApplicationStatus(q.Status)
	if err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q.PageQuery)
	apps, total, err := s.store.Applications().List(ctx, repositories.ApplicationFilter{UserID: &caller.ID, Status: status}, page)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	views := make([]*dto.ApplicationView, len(apps))
	for i, a := range apps {
		a.Notes = nil // poster-only
		v := &dto.ApplicationView{Application: *a}
		job, err := s.store.Jobs().GetByID(ctx, a.JobID)
		switch {
		case err == nil:
			v.Job = dto.NewJobSummary(job)
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("load job: %w", err)
		}
		views[i] = v
	}
	return paginated(views, total, pageNum, size), nil
}

// JobApplications lists the applications to a job for its poster.
func (s *JobService) JobApplications(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID, q dto.ApplicationListQuery) (*dto.PaginatedResponse[*dto.ApplicationView], error) {
	job, err := s.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	if err := appAuth.RequireOwnerOrAdmin(caller, job.PostedBy, "job"); err != nil {
		return nil, err
	}
	status, err := parseApplicationStatus(q.Status)
	if err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q.PageQuery)
	apps, total, err := s.store.Applications().List(ctx, repositories.ApplicationFilter{JobID: &jobID, Status: status}, page)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	ids := make([]uuid.UUID, len(apps))
	for i, a := range apps {
		ids[i] = a.UserID
	}
	users, err := summaries(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}
	summary := dto.NewJobSummary(job)
	views := make([]*dto.ApplicationView, len(apps))
	for i, a := range apps {
		views[i] = &dto.ApplicationView{Application: *a, Job: summary, Applicant: users[a.UserID]}
	}
	return paginated(views, total, pageNum, size), nil
}

// SavedJobs lists the caller's bookmarks, including ones whose job is gone.
func (s *JobService) SavedJobs(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.SavedJobView], error) {
	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q)
	saved, total, err := s.store.SavedJobs().ListByUser(ctx, caller.ID, page)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	views := make([]*dto.SavedJobView, len(saved))
	for i, sj := range saved {
		v := &dto.SavedJobView{JobID: sj.JobID, SavedAt: sj.SavedAt}
		job, err := s.store.Jobs().GetByID(ctx, sj.JobID)
		switch {
		case err == nil:
			v.Job = dto.NewJobSummary(job)
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("load job: %w", err)
		}
		views[i] = v
	}
	return paginated(views, total, pageNum, size), nil
}

// CreateCompany registers an employer profile.
func (s *JobService) CreateCompany(ctx context.Context, caller *appAuth.Caller, req dto.CreateCompanyRequest) (*models.Company, error) {
	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	company := &models.Company{
		ID:          uuid.New(),
		Name:        name,
		Description: cleanText(req.Description),
		Website:     trimOptional(req.Website),
		Logo:        trimOptional(req.Logo),
		Industry:    cleanText(req.Industry),
		Location:    cleanText(req.Location),
		CreatedAt:   s.now(),
	}
	if err := s.store.Companies().Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}

// ListCompanies lists employers by name.
func (s *JobService) ListCompanies(ctx context.Context, search string, q dto.PageQuery) (*dto.PaginatedResponse[*models.Company], error) {
	page, pageNum, size := pageOf(q)
	companies, total, err := s.store.Companies().List(ctx, search, page)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return paginated(companies, total, pageNum, size), nil
}
