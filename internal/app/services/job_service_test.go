package services

import (
	"context"
	"sync"
	"testing"
	"time"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJob(t *testing.T, svc *JobService, poster *appAuth.Caller) *dto.JobView {
	t.Helper()
	deadline := baseTime.Add(7 * 24 * time.Hour)
	job, err := svc.CreateJob(context.Background(), poster, dto.CreateJobRequest{
		Title:       "Backend Engineer",
		Description: "<p>Go and Postgres</p><script>alert(1)</script>",
		Type:        models.JobFullTime,
		Level:       models.LevelMid,
		Location:    "Istanbul",
		Skills:      []string{"go", "sql"},
		Deadline:    &deadline,
	})
	require.NoError(t, err)
	return job
}

func TestCreateJob(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	ctx := context.Background()
	poster := env.user(t, "poster")

	job := postJob(t, svc, poster)
	assert.True(t, job.IsActive)
	assert.NotContains(t, job.Description, "script")
	assert.Equal(t, "poster", job.Poster.FullName)

	lo, hi := int64(100), int64(50)
	_, err := svc.CreateJob(ctx, poster, dto.CreateJobRequest{
		Title: "x", Type: models.JobContract, Level: models.LevelSenior, SalaryMin: &lo, SalaryMax: &hi,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	missing := uuid.New()
	_, err = svc.CreateJob(ctx, poster, dto.CreateJobRequest{
		Title: "x", Type: models.JobContract, Level: models.LevelSenior, CompanyID: &missing,
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	company, err := svc.CreateCompany(ctx, poster, dto.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)
	withCompany, err := svc.CreateJob(ctx, poster, dto.CreateJobRequest{
		Title: "Lead", Type: models.JobFullTime, Level: models.LevelLead, CompanyID: &company.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, withCompany.Company)
	assert.Equal(t, "Acme", withCompany.Company.Name)
}

func TestApply(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	ctx := context.Background()
	poster := env.user(t, "poster")
	alice := env.user(t, "alice")
	job := postJob(t, svc, poster)

	_, err := svc.Apply(ctx, alice, uuid.New(), dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	app, err := svc.Apply(ctx, alice, job.ID, dto.ApplyJobRequest{CoverLetter: strPtr("hello")})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)

	_, err = svc.Apply(ctx, alice, job.ID, dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	view, err := svc.GetJob(ctx, alice, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ApplicationCount)
	assert.True(t, view.HasApplied)
	require.NotNil(t, view.ApplicationStatus)
	assert.Equal(t, models.ApplicationPending, *view.ApplicationStatus)

	require.NoError(t, svc.CloseJob(ctx, poster, job.ID))
	_, err = svc.Apply(ctx, env.user(t, "bob"), job.ID, dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestApplyAfterDeadline(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	job := postJob(t, svc, env.user(t, "poster"))

	env.clock.Advance(8 * 24 * time.Hour)
	_, err := svc.Apply(context.Background(), env.user(t, "alice"), job.ID, dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestReapplyToClosedJobIsConflict(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	ctx := context.Background()
	poster := env.user(t, "poster")
	alice := env.user(t, "alice")
	job := postJob(t, svc, poster)

	_, err := svc.Apply(ctx, alice, job.ID, dto.ApplyJobRequest{})
	require.NoError(t, err)
	require.NoError(t, svc.CloseJob(ctx, poster, job.ID))

	_, err = svc.Apply(ctx, alice, job.ID, dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestConcurrentDuplicateApplications(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	job := postJob(t, svc, env.user(t, "poster"))
	alice := env.user(t, "alice")

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Apply(context.Background(), alice, job.ID, dto.ApplyJobRequest{})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	}
	assert.Equal(t, 1, ok)

	stored, err := env.store.Jobs().GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ApplicationCount)
}

func TestToggleSave(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	ctx := context.Background()
	poster := env.user(t, "poster")
	alice := env.user(t, "alice")
	job := postJob(t, svc, poster)

	res, err := svc.ToggleSave(ctx, alice, job.ID)
	require.NoError(t, err)
	assert.True(t, res.Saved)

	res, err = svc.ToggleSave(ctx, alice, job.ID)
	require.NoError(t, err)
	assert.False(t, res.Saved)

	_, err = svc.ToggleSave(ctx, alice, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	res, err = svc.ToggleSave(ctx, alice, job.ID)
	require.NoError(t, err)
	require.True(t, res.Saved)

	saved, err := svc.SavedJobs(ctx, alice, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, job.ID, saved.Items[0].Job.ID)

	_, err = svc.ToggleSave(ctx, nil, job.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestConcurrentToggleSave(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	ctx := context.Background()
	job := postJob(t, svc, env.user(t, "poster"))
	alice := env.user(t, "alice")

	const toggles = 7
	var wg sync.WaitGroup
	errs := make([]error, toggles)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ToggleSave(ctx, alice, job.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	saved, err := env.store.SavedJobs().Exists(ctx, job.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, saved, "an odd number of toggles leaves the job saved")
}

func TestUpdateApplicationStatus(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	ctx := context.Background()
	poster := env.user(t, "poster")
	alice := env.user(t, "alice")
	stranger := env.user(t, "stranger")
	job := postJob(t, svc, poster)

	app, err := svc.Apply(ctx, alice, job.ID, dto.ApplyJobRequest{})
	require.NoError(t, err)

	// strangers are refused the same way whether or not the application exists
	_, err = svc.UpdateApplicationStatus(ctx, stranger, app.ID, dto.UpdateApplicationStatusRequest{Status: models.ApplicationReviewed})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = svc.UpdateApplicationStatus(ctx, stranger, uuid.New(), dto.UpdateApplicationStatusRequest{Status: models.ApplicationReviewed})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// forward skips are allowed
	updated, err := svc.UpdateApplicationStatus(ctx, poster, app.ID, dto.UpdateApplicationStatusRequest{
		Status: models.ApplicationInterview, Notes: strPtr("strong candidate"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationInterview, updated.Status)
	assert.Equal(t, "alice", updated.Applicant.FullName)

	_, err = svc.UpdateApplicationStatus(ctx, poster, app.ID, dto.UpdateApplicationStatusRequest{Status: models.ApplicationReviewed})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = svc.UpdateApplicationStatus(ctx, poster, app.ID, dto.UpdateApplicationStatusRequest{Status: models.ApplicationRejected})
	require.NoError(t, err)
	_, err = svc.UpdateApplicationStatus(ctx, poster, app.ID, dto.UpdateApplicationStatusRequest{Status: models.ApplicationOffered})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	mine, err := svc.MyApplications(ctx, alice, dto.ApplicationListQuery{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Nil(t, mine.Items[0].Notes, "poster notes stay private")

	theirs, err := svc.JobApplications(ctx, poster, job.ID, dto.ApplicationListQuery{Status: string(models.ApplicationRejected)})
	require.NoError(t, err)
	require.Len(t, theirs.Items, 1)
	assert.NotNil(t, theirs.Items[0].Notes)

	_, err = svc.JobApplications(ctx, alice, job.ID, dto.ApplicationListQuery{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestListJobs(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewJobService(env.store, env.cfg, env.log)
	ctx := context.Background()
	poster := env.user(t, "poster")

	open := postJob(t, svc, poster)
	closed := postJob(t, svc, poster)
	require.NoError(t, svc.CloseJob(ctx, poster, closed.ID))

	res, err := svc.ListJobs(ctx, nil, dto.JobListQuery{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, open.ID, res.Items[0].ID)

	res, err = svc.ListJobs(ctx, nil, dto.JobListQuery{IncludeClosed: true, Location: "istan"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	_, err = svc.ListJobs(ctx, nil, dto.JobListQuery{CompanyID: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, svc.DeleteJob(ctx, poster, open.ID))
	_, err = svc.GetJob(ctx, nil, open.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
