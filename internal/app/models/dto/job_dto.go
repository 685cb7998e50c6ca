package dto

import (
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/google/uuid"
)

// CreateJobRequest is a new job posting
type CreateJobRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"required,max=20000"`
	CompanyID   *uuid.UUID      `json:"companyId"`
	Type        models.JobType  `json:"type" binding:"required"`
	Level       models.JobLevel `json:"level" binding:"required"`
	Location    string          `json:"location" binding:"max=200"`
	IsRemote    bool            `json:"isRemote"`
	SalaryMin   *int64          `json:"salaryMin" binding:"omitempty,min=0"`
	SalaryMax   *int64          `json:"salaryMax" binding:"omitempty,min=0"`
	Skills      []string        `json:"skills" binding:"max=50"`
	Benefits    []string        `json:"benefits" binding:"max=50"`
	Deadline    *time.Time      `json:"deadline"`
}

// UpdateJobRequest changes only the fields that are set
type UpdateJobRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=20000"`
	Type        *models.JobType  `json:"type"`
	Level       *models.JobLevel `json:"level"`
	Location    *string          `json:"location" binding:"omitempty,max=200"`
	IsRemote    *bool            `json:"isRemote"`
	SalaryMin   *int64           `json:"salaryMin" binding:"omitempty,min=0"`
	SalaryMax   *int64           `json:"salaryMax" binding:"omitempty,min=0"`
	Skills      []string         `json:"skills" binding:"max=50"`
	Benefits    []string         `json:"benefits" binding:"max=50"`
	Deadline    *time.Time       `json:"deadline"`
	IsActive    *bool            `json:"isActive"`
}

// ApplyJobRequest is an application payload
type ApplyJobRequest struct {
	CoverLetter  *string `json:"coverLetter" binding:"omitempty,max=10000"`
	ResumeURL    *string `json:"resumeUrl" binding:"omitempty,url"`
	PortfolioURL *string `json:"portfolioUrl" binding:"omitempty,url"`
}

// UpdateApplicationStatusRequest is the poster's pipeline decision
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
	Notes  *string                  `json:"notes" binding:"omitempty,max=2000"`
}

// CreateCompanyRequest registers an employer
type CreateCompanyRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Logo        *string `json:"logo" binding:"omitempty,url"`
	Industry    *string `json:"industry" binding:"omitempty,max=100"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
}

// JobListQuery filters the job board
type JobListQuery struct {
	PageQuery
	Search    string `form:"search" binding:"max=100"`
	Type      string `form:"type"`
	Level     string `form:"level"`
	Location  string `form:"location" binding:"max=100"`
	IsRemote  *bool  `form:"isRemote"`
	CompanyID string `form:"companyId" binding:"omitempty,uuid"`
	PostedBy  string `form:"postedBy" binding:"omitempty,uuid"`
	// IncludeClosed lists inactive postings as well.
	IncludeClosed bool `form:"includeClosed"`
}

// ApplicationListQuery filters applications
type ApplicationListQuery struct {
	PageQuery
	Status string `form:"status"`
}

// JobView is a posting with its company, poster and the caller's relation to it
type JobView struct {
	models.Job
	Company           *models.Company           `json:"company,omitempty"`
	Poster            *UserSummary              `json:"poster,omitempty"`
	HasApplied        bool                      `json:"hasApplied"`
	IsSaved           bool                      `json:"isSaved"`
	ApplicationStatus *models.ApplicationStatus `json:"applicationStatus,omitempty"`
}

// ApplicationView is an application with its job and applicant
type ApplicationView struct {
	models.Application
	Job       *JobSummary  `json:"job,omitempty"`
	Applicant *UserSummary `json:"applicant,omitempty"`
}

// JobSummary is the part of a job embedded in application and bookmark lists
type JobSummary struct {
	ID       uuid.UUID      `json:"id"`
	Title    string         `json:"title"`
	Type     models.JobType `json:"type"`
	Location string         `json:"location"`
	IsActive bool           `json:"isActive"`
}

// NewJobSummary trims a job for embedding.
func NewJobSummary(j *models.Job) *JobSummary {
	if j == nil {
		return nil
	}
	return &JobSummary{ID: j.ID, Title: j.Title, Type: j.Type, Location: j.Location, IsActive: j.IsActive}
}

// SavedJobView is a bookmark; Job is nil when the posting no longer exists
type SavedJobView struct {
	JobID   uuid.UUID   `json:"jobId"`
	SavedAt time.Time   `json:"savedAt"`
	Job     *JobSummary `json:"job,omitempty"`
}
