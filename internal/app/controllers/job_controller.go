package controllers

import (
	"context"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JobPipeline is the jobs, applications and companies surface.
type JobPipeline interface {
	CreateJob(ctx context.Context, caller *appAuth.Caller, req dto.CreateJobRequest) (*dto.JobView, error)
	GetJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) (*dto.JobView, error)
	ListJobs(ctx context.Context, caller *appAuth.Caller, q dto.JobListQuery) (*dto.PaginatedResponse[*dto.JobView], error)
	UpdateJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID, req dto.UpdateJobRequest) (*dto.JobView, error)
	CloseJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) error
	DeleteJob(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) error
	Apply(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID, req dto.ApplyJobRequest) (*dto.ApplicationView, error)
	ToggleSave(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID) (*dto.SaveResult, error)
	UpdateApplicationStatus(ctx context.Context, caller *appAuth.Caller, applicationID uuid.UUID, req dto.UpdateApplicationStatusRequest) (*dto.ApplicationView, error)
	MyApplications(ctx context.Context, caller *appAuth.Caller, q dto.ApplicationListQuery) (*dto.PaginatedResponse[*dto.ApplicationView], error)
	JobApplications(ctx context.Context, caller *appAuth.Caller, jobID uuid.UUID, q dto.ApplicationListQuery) (*dto.PaginatedResponse[*dto.ApplicationView], error)
	SavedJobs(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.SavedJobView], error)
	CreateCompany(ctx context.Context, caller *appAuth.Caller, req dto.CreateCompanyRequest) (*models.Company, error)
	ListCompanies(ctx context.Context, search string, q dto.PageQuery) (*dto.PaginatedResponse[*models.Company], error)
}

// JobController serves /jobs, /applications and /companies
type JobController struct {
	jobs JobPipeline
}

// NewJobController creates a new JobController
func NewJobController(jobs JobPipeline) *JobController {
	return &JobController{jobs: jobs}
}

func (jc *JobController) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := jc.jobs.CreateJob(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Job posted")
}

func (jc *JobController) Get(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := jc.jobs.GetJob(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (jc *JobController) List(c *gin.Context) {
	var q dto.JobListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := jc.jobs.ListJobs(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (jc *JobController) Update(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := jc.jobs.UpdateJob(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (jc *JobController) Close(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := jc.jobs.CloseJob(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Job closed")
}

func (jc *JobController) Delete(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := jc.jobs.DeleteJob(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Job deleted")
}

func (jc *JobController) Apply(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ApplyJobRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := jc.jobs.Apply(c.Request.Context(), middleware.Caller(c), id, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Application submitted")
}

func (jc *JobController) ToggleSave(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := jc.jobs.ToggleSave(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (jc *JobController) UpdateApplicationStatus(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := jc.jobs.UpdateApplicationStatus(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (jc *JobController) MyApplications(c *gin.Context) {
	var q dto.ApplicationListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := jc.jobs.MyApplications(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (jc *JobController) Applications(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.ApplicationListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := jc.jobs.JobApplications(c.Request.Context(), middleware.Caller(c), id, q)
	reply(c, res, err)
}

func (jc *JobController) Saved(c *gin.Context) {
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := jc.jobs.SavedJobs(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (jc *JobController) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := jc.jobs.CreateCompany(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Company created")
}

func (jc *JobController) ListCompanies(c *gin.Context) {
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := jc.jobs.ListCompanies(c.Request.Context(), c.Query("search"), q)
	reply(c, res, err)
}
