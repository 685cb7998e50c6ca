// Package memory is an in-process implementation of repositories.Store. It
// backs the test suites and the "memory" database driver.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

type savedKey struct {
	jobID, userID uuid.UUID
}

type likeKey struct {
	userID   uuid.UUID
	kind     models.LikeTarget
	targetID uuid.UUID
}

type dataset struct {
	users         map[uuid.UUID]models.User
	profiles      map[uuid.UUID]models.Profile
	events        map[uuid.UUID]models.Event
	registrations map[uuid.UUID]models.Registration
	jobs          map[uuid.UUID]models.Job
	companies     map[uuid.UUID]models.Company
	applications  map[uuid.UUID]models.Application
	savedJobs     map[savedKey]models.SavedJob
	campaigns     map[uuid.UUID]models.Campaign
	donations     map[uuid.UUID]models.Donation
	posts         map[uuid.UUID]models.Post
	postTags      map[uuid.UUID][]uuid.UUID
	comments      map[uuid.UUID]models.Comment
	likes         map[likeKey]models.Like
	categories    map[uuid.UUID]models.Category
	tags          map[uuid.UUID]models.Tag
	moderation    []models.ModerationAction
}

func newDataset() *dataset {
	return &dataset{
		users:         map[uuid.UUID]models.User{},
		profiles:      map[uuid.UUID]models.Profile{},
		events:        map[uuid.UUID]models.Event{},
		registrations: map[uuid.UUID]models.Registration{},
		jobs:          map[uuid.UUID]models.Job{},
		companies:     map[uuid.UUID]models.Company{},
		applications:  map[uuid.UUID]models.Application{},
		savedJobs:     map[savedKey]models.SavedJob{},
		campaigns:     map[uuid.UUID]models.Campaign{},
		donations:     map[uuid.UUID]models.Donation{},
		posts:         map[uuid.UUID]models.Post{},
		postTags:      map[uuid.UUID][]uuid.UUID{},
		comments:      map[uuid.UUID]models.Comment{},
		likes:         map[likeKey]models.Like{},
		categories:    map[uuid.UUID]models.Category{},
		tags:          map[uuid.UUID]models.Tag{},
	}
}

// clone copies every table. Rows are stored by value and their slices are
// never mutated in place, so a shallow map copy is a full snapshot.
func (d *dataset) clone() *dataset {
	postTags := make(map[uuid.UUID][]uuid.UUID, len(d.postTags))
	for k, v := range d.postTags {
		postTags[k] = slices.Clone(v)
	}
	return &dataset{
		users:         maps.Clone(d.users),
		profiles:      maps.Clone(d.profiles),
		events:        maps.Clone(d.events),
		registrations: maps.Clone(d.registrations),
		jobs:          maps.Clone(d.jobs),
		companies:     maps.Clone(d.companies),
		applications:  maps.Clone(d.applications),
		savedJobs:     maps.Clone(d.savedJobs),
		campaigns:     maps.Clone(d.campaigns),
		donations:     maps.Clone(d.donations),
		posts:         maps.Clone(d.posts),
		postTags:      postTags,
		comments:      maps.Clone(d.comments),
		likes:         maps.Clone(d.likes),
		categories:    maps.Clone(d.categories),
		tags:          maps.Clone(d.tags),
		moderation:    slices.Clone(d.moderation),
	}
}

type state struct {
	mu   sync.Mutex
	data *dataset
}

// Store implements repositories.Store in memory. A transaction holds the
// store-wide lock from start to commit, so transactions are serial.
type Store struct {
	st   *state
	inTx bool
}

var _ repositories.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: &state{data: newDataset()}}
}

func (s *Store) lock() {
	if !s.inTx {
		s.st.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.inTx {
		s.st.mu.Unlock()
	}
}

func (s *Store) d() *dataset {
	return s.st.data
}

// WithTx runs fn under the store lock and restores the pre-transaction
// snapshot if fn fails or panics.
func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	snapshot := s.st.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.st.data = snapshot
		}
	}()

	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Users() repositories.UserRepository                 { return userRepo{s} }
func (s *Store) Events() repositories.EventRepository               { return eventRepo{s} }
func (s *Store) Registrations() repositories.RegistrationRepository { return registrationRepo{s} }
func (s *Store) Jobs() repositories.JobRepository                   { return jobRepo{s} }
func (s *Store) Companies() repositories.CompanyRepository          { return companyRepo{s} }
func (s *Store) Applications() repositories.ApplicationRepository   { return applicationRepo{s} }
func (s *Store) SavedJobs() repositories.SavedJobRepository         { return savedJobRepo{s} }
func (s *Store) Campaigns() repositories.CampaignRepository         { return campaignRepo{s} }
func (s *Store) Donations() repositories.DonationRepository         { return donationRepo{s} }
func (s *Store) Posts() repositories.PostRepository                 { return postRepo{s} }
func (s *Store) Comments() repositories.CommentRepository           { return commentRepo{s} }
func (s *Store) Likes() repositories.LikeRepository                 { return likeRepo{s} }
func (s *Store) Categories() repositories.CategoryRepository        { return categoryRepo{s} }
func (s *Store) Tags() repositories.TagRepository                   { return tagRepo{s} }
func (s *Store) ModerationLog() repositories.ModerationLogRepository {
	return moderationRepo{s}
}

// paginate applies page to an already sorted slice.
func paginate[T any](items []T, page repositories.Page) []T {
	if page.Offset >= uint64(len(items)) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func derefContains(s *string, needle string) bool {
	return s != nil && containsFold(*s, needle)
}

// sortBy orders rows by key, breaking ties by id for stable pages.
func sortBy[T any](items []*T, less func(a, b *T) int, id func(*T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		if c := less(items[i], items[j]); c != 0 {
			return c < 0
		}
		return id(items[i]).String() < id(items[j]).String()
	})
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
