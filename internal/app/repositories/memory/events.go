package memory

import (
	"context"
	"slices"
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

type eventRepo struct{ s *Store }

func copyEvent(e models.Event) *models.Event {
	e.Tags = slices.Clone(e.Tags)
	return &e
}

func (r eventRepo) Create(ctx context.Context, event *models.Event) error {
	r.s.lock()
	defer r.s.unlock()
	ensureID(&event.ID)
	r.s.d().events[event.ID] = *copyEvent(*event)
	return nil
}

func (r eventRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	r.s.lock()
	defer r.s.unlock()
	e, ok := r.s.d().events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyEvent(e), nil
}

// GetByIDForUpdate needs no row lock: the caller's transaction already holds
// the store lock.
func (r eventRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.GetByID(ctx, id)
}

func (r eventRepo) Update(ctx context.Context, event *models.Event) error {
	r.s.lock()
	defer r.s.unlock()
	current, ok := r.s.d().events[event.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	next := *copyEvent(*event)
	// counters are owned by their own operations
	next.CurrentAttendees = current.CurrentAttendees
	next.ViewCount = current.ViewCount
	r.s.d().events[event.ID] = next
	return nil
}

func (r eventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()
	if _, ok := d.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(d.events, id)
	for rid, reg := range d.registrations {
		if reg.EventID == id {
			delete(d.registrations, rid)
		}
	}
	return nil
}

func (r eventRepo) IncrementAttendees(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	e, ok := r.s.d().events[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if e.Capacity != nil && e.CurrentAttendees >= *e.Capacity {
		return false, nil
	}
	e.CurrentAttendees++
	r.s.d().events[id] = e
	return true, nil
}

func (r eventRepo) DecrementAttendees(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	e, ok := r.s.d().events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if e.CurrentAttendees > 0 {
		e.CurrentAttendees--
	}
	r.s.d().events[id] = e
	return nil
}

func (r eventRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	e, ok := r.s.d().events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	e.ViewCount++
	r.s.d().events[id] = e
	return nil
}

func matchEvent(e models.Event, f repositories.EventFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, e.Status) {
		return false
	}
	if f.Type != nil && e.Type != *f.Type {
		return false
	}
	if f.IsOnline != nil && e.IsOnline != *f.IsOnline {
		return false
	}
	if f.OrganizerID != nil && e.OrganizerID != *f.OrganizerID {
		return false
	}
	if f.StartsAfter != nil && !e.StartDate.After(*f.StartsAfter) {
		return false
	}
	if f.Search != "" && !containsFold(e.Title, f.Search) && !containsFold(e.Description, f.Search) && !derefContains(e.Location, f.Search) {
		return false
	}
	return true
}

func (r eventRepo) List(ctx context.Context, filter repositories.EventFilter, page repositories.Page) ([]*models.Event, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Event
	for _, e := range r.s.d().events {
		if matchEvent(e, filter) {
			out = append(out, copyEvent(e))
		}
	}
	sortBy(out, func(a, b *models.Event) int { return a.StartDate.Compare(b.StartDate) }, func(e *models.Event) uuid.UUID { return e.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r eventRepo) Count(ctx context.Context, filter repositories.EventFilter) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for _, e := range r.s.d().events {
		if matchEvent(e, filter) {
			n++
		}
	}
	return n, nil
}

func (r eventRepo) advance(from, to models.EventStatus, due func(models.Event) bool, now time.Time) int64 {
	var n int64
	for id, e := range r.s.d().events {
		if e.Status == from && due(e) {
			e.Status = to
			e.UpdatedAt = now
			r.s.d().events[id] = e
			n++
		}
	}
	return n
}

func (r eventRepo) StartDue(ctx context.Context, now time.Time) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	return r.advance(models.EventPublished, models.EventOngoing, func(e models.Event) bool {
		return !e.StartDate.After(now)
	}, now), nil
}

func (r eventRepo) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	return r.advance(models.EventOngoing, models.EventCompleted, func(e models.Event) bool {
		return !e.EndDate.After(now)
	}, now), nil
}

type registrationRepo struct{ s *Store }

func (r registrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()
	if _, ok := d.events[reg.EventID]; !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range d.registrations {
		if existing.EventID == reg.EventID && existing.UserID == reg.UserID {
			return repositories.ErrDuplicate
		}
	}
	ensureID(&reg.ID)
	d.registrations[reg.ID] = *reg
	return nil
}

func (r registrationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	r.s.lock()
	defer r.s.unlock()
	reg, ok := r.s.d().registrations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &reg, nil
}

func (r registrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, reg := range r.s.d().registrations {
		if reg.EventID == eventID && reg.UserID == userID {
			return &reg, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r registrationRepo) Update(ctx context.Context, reg *models.Registration) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.d().registrations[reg.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.d().registrations[reg.ID] = *reg
	return nil
}

func matchRegistration(reg models.Registration, f repositories.RegistrationFilter) bool {
	if f.EventID != nil && reg.EventID != *f.EventID {
		return false
	}
	if f.UserID != nil && reg.UserID != *f.UserID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, reg.Status) {
		return false
	}
	return true
}

func (r registrationRepo) List(ctx context.Context, filter repositories.RegistrationFilter, page repositories.Page) ([]*models.Registration, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Registration
	for _, reg := range r.s.d().registrations {
		if matchRegistration(reg, filter) {
			reg := reg
			out = append(out, &reg)
		}
	}
	sortBy(out, func(a, b *models.Registration) int { return b.RegisteredAt.Compare(a.RegisteredAt) }, func(r *models.Registration) uuid.UUID { return r.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r registrationRepo) Count(ctx context.Context, filter repositories.RegistrationFilter) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for _, reg := range r.s.d().registrations {
		if matchRegistration(reg, filter) {
			n++
		}
	}
	return n, nil
}
