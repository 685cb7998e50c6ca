package models

import (
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobFullTime   JobType = "FULL_TIME"
	JobPartTime   JobType = "PART_TIME"
	JobContract   JobType = "CONTRACT"
	JobInternship JobType = "INTERNSHIP"
	JobFreelance  JobType = "FREELANCE"
)

func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobContract, JobInternship, JobFreelance:
		return true
	}
	return false
}

type JobLevel string

const (
	LevelEntry     JobLevel = "ENTRY"
	LevelJunior    JobLevel = "JUNIOR"
	LevelMid       JobLevel = "MID"
	LevelSenior    JobLevel = "SENIOR"
	LevelLead      JobLevel = "LEAD"
	LevelExecutive JobLevel = "EXECUTIVE"
)

func (l JobLevel) Valid() bool {
	switch l {
	case LevelEntry, LevelJunior, LevelMid, LevelSenior, LevelLead, LevelExecutive:
		return true
	}
	return false
}

// Company is an optional employer record referenced by jobs.
type Company struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Website     *string   `json:"website,omitempty" db:"website"`
	Logo        *string   `json:"logo,omitempty" db:"logo"`
	Industry    *string   `json:"industry,omitempty" db:"industry"`
	Location    *string   `json:"location,omitempty" db:"location"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Job is a posting owned by the user who posted it.
type Job struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PostedBy         uuid.UUID  `json:"postedBy" db:"posted_by"`
	CompanyID        *uuid.UUID `json:"companyId,omitempty" db:"company_id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	Type             JobType    `json:"type" db:"type"`
	Level            JobLevel   `json:"level" db:"level"`
	Location         string     `json:"location" db:"location"`
	IsRemote         bool       `json:"isRemote" db:"is_remote"`
	SalaryMin        *int64     `json:"salaryMin,omitempty" db:"salary_min"`
	SalaryMax        *int64     `json:"salaryMax,omitempty" db:"salary_max"`
	Skills           []string   `json:"skills" db:"skills"`
	Benefits         []string   `json:"benefits" db:"benefits"`
	Deadline         *time.Time `json:"deadline,omitempty" db:"deadline"`
	IsActive         bool       `json:"isActive" db:"is_active"`
	ApplicationCount int        `json:"applicationCount" db:"application_count"`
	ViewCount        int64      `json:"viewCount" db:"view_count"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// AcceptingApplications reports whether the job is open at now.
func (j *Job) AcceptingApplications(now time.Time) bool {
	return j.IsActive && (j.Deadline == nil || !now.After(*j.Deadline))
}

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "PENDING"
	ApplicationReviewed    ApplicationStatus = "REVIEWED"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationInterview   ApplicationStatus = "INTERVIEW"
	ApplicationOffered     ApplicationStatus = "OFFERED"
	ApplicationAccepted    ApplicationStatus = "ACCEPTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
)

// applicationPipeline is the forward order; any later stage may be reached directly.
var applicationPipeline = []ApplicationStatus{
	ApplicationPending,
	ApplicationReviewed,
	ApplicationShortlisted,
	ApplicationInterview,
	ApplicationOffered,
	ApplicationAccepted,
}

var applicationTransitions = func() transitionTable[ApplicationStatus] {
	t := transitionTable[ApplicationStatus]{}
	for i, from := range applicationPipeline[:len(applicationPipeline)-1] {
		next := append([]ApplicationStatus{}, applicationPipeline[i+1:]...)
		t[from] = append(next, ApplicationRejected)
	}
	return t
}()

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return applicationTransitions.allows(s, next)
}

func (s ApplicationStatus) Valid() bool {
	return s == ApplicationRejected || s == ApplicationAccepted || len(applicationTransitions[s]) > 0
}

// Application is unique per (job, applicant).
type Application struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	JobID        uuid.UUID         `json:"jobId" db:"job_id"`
	UserID       uuid.UUID         `json:"userId" db:"user_id"`
	CoverLetter  *string           `json:"coverLetter,omitempty" db:"cover_letter"`
	ResumeURL    *string           `json:"resumeUrl,omitempty" db:"resume_url"`
	PortfolioURL *string           `json:"portfolioUrl,omitempty" db:"portfolio_url"`
	Status       ApplicationStatus `json:"status" db:"status"`
	Notes        *string           `json:"notes,omitempty" db:"notes"` // poster-only
	AppliedAt    time.Time         `json:"appliedAt" db:"applied_at"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
}

// SavedJob is a bookmark, unique per (job, user).
type SavedJob struct {
	JobID   uuid.UUID `json:"jobId" db:"job_id"`
	UserID  uuid.UUID `json:"userId" db:"user_id"`
	SavedAt time.Time `json:"savedAt" db:"saved_at"`
}
