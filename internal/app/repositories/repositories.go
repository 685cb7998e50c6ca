package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("duplicate record")
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset uint64
}

// Store groups the per-entity repositories over one backing store.
// Repositories obtained from the Store passed to WithTx's callback share
// that transaction.
type Store interface {
	Users() UserRepository
	Events() EventRepository
	Registrations() RegistrationRepository
	Jobs() JobRepository
	Companies() CompanyRepository
	Applications() ApplicationRepository
	SavedJobs() SavedJobRepository
	Campaigns() CampaignRepository
	Donations() DonationRepository
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Categories() CategoryRepository
	Tags() TagRepository
	ModerationLog() ModerationLogRepository

	// WithTx runs fn atomically. fn's error rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type UserFilter struct {
	Role         *models.Role
	Status       *models.UserStatus
	Search       string // email or full name, case-insensitive
	CreatedAfter *time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus, at time.Time) error
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Profiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error)
	List(ctx context.Context, filter UserFilter, page Page) ([]*models.User, int64, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
}

type EventFilter struct {
	Statuses    []models.EventStatus
	Type        *models.EventType
	IsOnline    *bool
	OrganizerID *uuid.UUID
	StartsAfter *time.Time
	Search      string // title, description or location
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error)
	// Update writes every mutable column, including status and moderation
	// stamps. Counters are left to their own operations.
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementAttendees takes a seat only while capacity allows; false means full.
	IncrementAttendees(ctx context.Context, id uuid.UUID) (bool, error)
	DecrementAttendees(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter EventFilter, page Page) ([]*models.Event, int64, error)
	Count(ctx context.Context, filter EventFilter) (int64, error)
	// StartDue moves PUBLISHED events whose start has passed to ONGOING.
	StartDue(ctx context.Context, now time.Time) (int64, error)
	// CompleteDue moves ONGOING events whose end has passed to COMPLETED.
	CompleteDue(ctx context.Context, now time.Time) (int64, error)
}

type RegistrationFilter struct {
	EventID  *uuid.UUID
	UserID   *uuid.UUID
	Statuses []models.RegistrationStatus
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	Update(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context, filter RegistrationFilter, page Page) ([]*models.Registration, int64, error)
	Count(ctx context.Context, filter RegistrationFilter) (int64, error)
}

type JobFilter struct {
	Search    string // title or description
	Type      *models.JobType
	Level     *models.JobLevel
	Location  string // case-insensitive substring
	IsRemote  *bool
	IsActive  *bool
	CompanyID *uuid.UUID
	PostedBy  *uuid.UUID
}

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementApplications(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter JobFilter, page Page) ([]*models.Job, int64, error)
	Count(ctx context.Context, filter JobFilter) (int64, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Company, error)
	List(ctx context.Context, search string, page Page) ([]*models.Company, int64, error)
}

type ApplicationFilter struct {
	JobID  *uuid.UUID
	UserID *uuid.UUID
	Status *models.ApplicationStatus
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetByJobAndUser(ctx context.Context, jobID, userID uuid.UUID) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	List(ctx context.Context, filter ApplicationFilter, page Page) ([]*models.Application, int64, error)
}

type SavedJobRepository interface {
	// Create reports false when the bookmark already exists.
	Create(ctx context.Context, saved *models.SavedJob) (bool, error)
	// Delete reports whether a bookmark existed.
	Delete(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	Exists(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]*models.SavedJob, int64, error)
}

type CampaignFilter struct {
	Statuses  []models.CampaignStatus
	Category  *models.CampaignCategory
	CreatorID *uuid.UUID
	Search    string
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddToCurrentAmount(ctx context.Context, id uuid.UUID, amount int64) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter CampaignFilter, page Page) ([]*models.Campaign, int64, error)
	Count(ctx context.Context, filter CampaignFilter) (int64, error)
	// CompleteDue moves ACTIVE campaigns whose end date has passed to COMPLETED.
	CompleteDue(ctx context.Context, now time.Time) (int64, error)
}

type DonationFilter struct {
	CampaignID       *uuid.UUID
	DonorID          *uuid.UUID
	Statuses         []models.DonationStatus
	ExcludeAnonymous bool
}

// DonationDecision is the outcome recorded by Decide.
type DonationDecision struct {
	Status    models.DonationStatus
	DecidedBy uuid.UUID
	DecidedAt time.Time
}

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	// Decide moves a PENDING donation to decision.Status. It reports false,
	// without writing, when the donation is no longer PENDING.
	Decide(ctx context.Context, id uuid.UUID, decision DonationDecision) (bool, error)
	List(ctx context.Context, filter DonationFilter, page Page) ([]*models.Donation, int64, error)
}

type PostFilter struct {
	CategoryID *uuid.UUID
	UserID     *uuid.UUID
	Status     *models.PostStatus
	TagSlug    string
	Search     string // title or content
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads the post with its tags.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// SetTags replaces the post's tag links.
	SetTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error
	// Delete removes the post with its comments and every like on either.
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter PostFilter, page Page) ([]*models.Post, int64, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// Delete removes the comment, its replies and their likes.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPost returns every comment on the post, oldest first.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int64, error)
}

type LikeRepository interface {
	// Create reports false when the like already exists.
	Create(ctx context.Context, like *models.Like) (bool, error)
	// Delete reports whether the like existed.
	Delete(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetID uuid.UUID) (bool, error)
	Count(ctx context.Context, kind models.LikeTarget, targetID uuid.UUID) (int64, error)
	CountMany(ctx context.Context, kind models.LikeTarget, targetIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedBy(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

type TagRepository interface {
	// GetOrCreate returns the tag with slug, creating it with name when absent.
	GetOrCreate(ctx context.Context, name, slug string) (*models.Tag, error)
}

type ModerationLogRepository interface {
	Append(ctx context.Context, action *models.ModerationAction) error
	List(ctx context.Context, page Page) ([]*models.ModerationAction, int64, error)
}
