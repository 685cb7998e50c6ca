package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

var eventColumns = []string{
	"id", "organizer_id", "title", "description", "type", "status", "cover_image",
	"start_date", "end_date", "location", "is_online", "meeting_url", "capacity",
	"current_attendees", "price", "currency", "tags", "view_count",
	"approved_by", "approved_at", "rejected_by", "rejected_at", "rejection_reason",
	"created_at", "updated_at",
}

type eventRepo struct{ s *Store }

func (r eventRepo) Create(ctx context.Context, e *models.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("events").Columns(eventColumns...).Values(
		e.ID, e.OrganizerID, e.Title, e.Description, e.Type, e.Status, e.CoverImage,
		e.StartDate, e.EndDate, e.Location, e.IsOnline, e.MeetingURL, e.Capacity,
		e.CurrentAttendees, e.Price, e.Currency, nonNil(e.Tags), e.ViewCount,
		e.ApprovedBy, e.ApprovedAt, e.RejectedBy, e.RejectedAt, e.RejectionReason,
		e.CreatedAt, e.UpdatedAt,
	))
	return err
}

func (r eventRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return selectOne[models.Event](ctx, r.s.q, psql.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": id}))
}

func (r eventRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return selectOne[models.Event](ctx, r.s.q, psql.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r eventRepo) Update(ctx context.Context, e *models.Event) error {
	return execOne(ctx, r.s.q, psql.Update("events").SetMap(map[string]interface{}{
		"title":            e.Title,
		"description":      e.Description,
		"type":             e.Type,
		"status":           e.Status,
		"cover_image":      e.CoverImage,
		"start_date":       e.StartDate,
		"end_date":         e.EndDate,
		"location":         e.Location,
		"is_online":        e.IsOnline,
		"meeting_url":      e.MeetingURL,
		"capacity":         e.Capacity,
		"price":            e.Price,
		"currency":         e.Currency,
		"tags":             nonNil(e.Tags),
		"approved_by":      e.ApprovedBy,
		"approved_at":      e.ApprovedAt,
		"rejected_by":      e.RejectedBy,
		"rejected_at":      e.RejectedAt,
		"rejection_reason": e.RejectionReason,
		"updated_at":       e.UpdatedAt,
	}).Where(squirrel.Eq{"id": e.ID}))
}

func (r eventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Delete("events").Where(squirrel.Eq{"id": id}))
}

func (r eventRepo) IncrementAttendees(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := exec(ctx, r.s.q, psql.Update("events").
		Set("current_attendees", squirrel.Expr("current_attendees + 1")).
		Where(squirrel.Eq{"id": id}).
		Where("(capacity IS NULL OR current_attendees < capacity)"))
	if err != nil || n > 0 {
		return n > 0, err
	}
	found, err := exists(ctx, r.s.q, "events", squirrel.Eq{"id": id})
	if err != nil {
		return false, err
	}
	if !found {
		return false, repositories.ErrNotFound
	}
	return false, nil
}

func (r eventRepo) DecrementAttendees(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Update("events").
		Set("current_attendees", squirrel.Expr("GREATEST(current_attendees - 1, 0)")).
		Where(squirrel.Eq{"id": id}))
}

func (r eventRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Update("events").
		Set("view_count", squirrel.Expr("view_count + 1")).
		Where(squirrel.Eq{"id": id}))
}

func eventWhere(f repositories.EventFilter) squirrel.And {
	where := squirrel.And{}
	if len(f.Statuses) > 0 {
		where = append(where, squirrel.Eq{"status": f.Statuses})
	}
	if f.Type != nil {
		where = append(where, squirrel.Eq{"type": *f.Type})
	}
	if f.IsOnline != nil {
		where = append(where, squirrel.Eq{"is_online": *f.IsOnline})
	}
	if f.OrganizerID != nil {
		where = append(where, squirrel.Eq{"organizer_id": *f.OrganizerID})
	}
	if f.StartsAfter != nil {
		where = append(where, squirrel.Gt{"start_date": *f.StartsAfter})
	}
	if f.Search != "" {
		where = append(where, searchAny(f.Search, "title", "description", "location"))
	}
	return where
}

func (r eventRepo) List(ctx context.Context, filter repositories.EventFilter, page repositories.Page) ([]*models.Event, int64, error) {
	return listWithTotal[models.Event](ctx, r.s.q, eventColumns, "events", eventWhere(filter), []string{"start_date", "id"}, page)
}

func (r eventRepo) Count(ctx context.Context, filter repositories.EventFilter) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From("events").Where(eventWhere(filter)))
}

func (r eventRepo) StartDue(ctx context.Context, now time.Time) (int64, error) {
	return exec(ctx, r.s.q, psql.Update("events").
		Set("status", models.EventOngoing).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": models.EventPublished}).
		Where(squirrel.LtOrEq{"start_date": now}))
}

func (r eventRepo) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	return exec(ctx, r.s.q, psql.Update("events").
		Set("status", models.EventCompleted).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": models.EventOngoing}).
		Where(squirrel.LtOrEq{"end_date": now}))
}

var registrationColumns = []string{"id", "event_id", "user_id", "status", "notes", "attended_at", "registered_at", "updated_at"}

type registrationRepo struct{ s *Store }

func (r registrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("registrations").Columns(registrationColumns...).Values(
		reg.ID, reg.EventID, reg.UserID, reg.Status, reg.Notes, reg.AttendedAt, reg.RegisteredAt, reg.UpdatedAt,
	))
	return err
}

func (r registrationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return selectOne[models.Registration](ctx, r.s.q, psql.Select(registrationColumns...).From("registrations").Where(squirrel.Eq{"id": id}))
}

func (r registrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	return selectOne[models.Registration](ctx, r.s.q, psql.Select(registrationColumns...).From("registrations").
		Where(squirrel.Eq{"event_id": eventID, "user_id": userID}))
}

func (r registrationRepo) Update(ctx context.Context, reg *models.Registration) error {
	return execOne(ctx, r.s.q, psql.Update("registrations").SetMap(map[string]interface{}{
		"status":        reg.Status,
		"notes":         reg.Notes,
		"attended_at":   reg.AttendedAt,
		"registered_at": reg.RegisteredAt,
		"updated_at":    reg.UpdatedAt,
	}).Where(squirrel.Eq{"id": reg.ID}))
}

func registrationWhere(f repositories.RegistrationFilter) squirrel.And {
	where := squirrel.And{}
	if f.EventID != nil {
		where = append(where, squirrel.Eq{"event_id": *f.EventID})
	}
	if f.UserID != nil {
		where = append(where, squirrel.Eq{"user_id": *f.UserID})
	}
	if len(f.Statuses) > 0 {
		where = append(where, squirrel.Eq{"status": f.Statuses})
	}
	return where
}

func (r registrationRepo) List(ctx context.Context, filter repositories.RegistrationFilter, page repositories.Page) ([]*models.Registration, int64, error) {
	return listWithTotal[models.Registration](ctx, r.s.q, registrationColumns, "registrations", registrationWhere(filter), []string{"registered_at DESC", "id"}, page)
}

func (r registrationRepo) Count(ctx context.Context, filter repositories.RegistrationFilter) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From("registrations").Where(registrationWhere(filter)))
}
