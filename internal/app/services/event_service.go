package services

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// EventService runs event publication, registration and attendance.
type EventService struct {
	base
}

// NewEventService creates a new EventService
func NewEventService(store repositories.Store, cfg Config, logger zerolog.Logger) *EventService {
	return &EventService{base: newBase(store, cfg, logger, "events")}
}

func (s *EventService) submittedStatus() models.EventStatus {
	if s.cfg.RequireApproval {
		return models.EventPendingApproval
	}
	return models.EventPublished
}

func validateEventWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.NewValidationError("startDate", "start and end dates are required")
	}
	if end.Before(start) {
		return apperrors.NewValidationError("endDate", "end date must not be before start date")
	}
	return nil
}

func validateCapacity(capacity *int) error {
	if capacity != nil && *capacity <= 0 {
		return apperrors.NewValidationError("capacity", "capacity must be positive when set")
	}
	return nil
}

// Publish creates an event owned by the caller. Unless saved as a draft it is
// submitted straight away.
func (s *EventService) Publish(ctx context.Context, caller *appAuth.Caller, req dto.CreateEventRequest) (_ *dto.EventView, err error) {
	ctx, span := s.startSpan(ctx, "events.Publish")
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	title := sanitize.Text(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	if !req.Type.Valid() {
		return nil, apperrors.NewValidationError("type", "unknown event type")
	}
	if err := validateEventWindow(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := validateCapacity(req.Capacity); err != nil {
		return nil, err
	}
	if req.Price < 0 {
		return nil, apperrors.NewValidationError("price", "price must not be negative")
	}

	now := s.now()
	status := s.submittedStatus()
	if req.SaveAsDraft {
		status = models.EventDraft
	}
	event := &models.Event{
		ID:          uuid.New(),
		OrganizerID: caller.ID,
		Title:       title,
		Description: sanitize.HTML(req.Description),
		Type:        req.Type,
		Status:      status,
		CoverImage:  trimOptional(req.CoverImage),
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Location:    cleanText(req.Location),
		IsOnline:    req.IsOnline,
		MeetingURL:  trimOptional(req.MeetingURL),
		Capacity:    req.Capacity,
		Price:       req.Price,
		Currency:    currencyOr(req.Currency),
		Tags:        sanitize.TextSlice(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().
		Str("eventID", event.ID.String()).
		Str("organizerID", caller.ID.String()).
		Str("status", string(event.Status)).
		Msg("Event created")
	return s.view(ctx, s.store, caller, event)
}

// SubmitDraft moves the organizer's DRAFT event forward.
func (s *EventService) SubmitDraft(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (_ *dto.EventView, err error) {
	ctx, span := s.startSpan(ctx, "events.SubmitDraft", idAttr("event.id", eventID))
	defer func() { endSpan(span, err) }()

	var event *models.Event
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		e, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		if err := appAuth.RequireOwner(caller, e.OrganizerID, "event"); err != nil {
			return err
		}
		next := s.submittedStatus()
		if e.Status != models.EventDraft || !e.Status.CanTransitionTo(next) {
			return apperrors.NewStateError("only draft events can be submitted").
				WithDetails(map[string]interface{}{"eventId": eventID.String(), "status": string(e.Status)})
		}
		e.Status = next
		e.UpdatedAt = s.now()
		if err := tx.Events().Update(ctx, e); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		event = e
		return nil
	})
	if err != nil {
		return nil, wrap(err, "submit draft")
	}
	return s.view(ctx, s.store, caller, event)
}

// Register takes a seat at a published event for the caller. The seat check
// and the counter increment happen in one transaction under the event row lock.
func (s *EventService) Register(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, req dto.RegisterEventRequest) (_ *dto.RegistrationView, err error) {
	ctx, span := s.startSpan(ctx, "events.Register", idAttr("event.id", eventID))
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(apperrors.Kind(err)).Inc()
		endSpan(span, err)
	}()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	var reg *models.Registration
	var event *models.Event
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		e, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		if e.Status != models.EventPublished {
			return apperrors.NewStateError("event is not open for registration").
				WithDetails(map[string]interface{}{"eventId": eventID.String(), "status": string(e.Status)})
		}

		existing, err := tx.Registrations().GetByEventAndUser(ctx, eventID, caller.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("load registration: %w", err)
		}
		if existing != nil && existing.Status.HoldsSeat() {
			return apperrors.NewConflictError("already registered for this event").
				WithDetails(map[string]interface{}{"eventId": eventID.String(), "registrationId": existing.ID.String()})
		}
		if e.IsFull() {
			return apperrors.NewCapacityError("event is full").
				WithDetails(map[string]interface{}{"eventId": eventID.String(), "capacity": *e.Capacity})
		}
		now := s.now()
		if now.After(e.StartDate) {
			return apperrors.NewStateError("event has already started").WithDetail("eventId", eventID.String())
		}

		taken, err := tx.Events().IncrementAttendees(ctx, eventID)
		if err != nil {
			return fmt.Errorf("increment attendees: %w", err)
		}
		if !taken {
			return apperrors.NewCapacityError("event is full").WithDetail("eventId", eventID.String())
		}

		notes := cleanText(req.Notes)
		if existing != nil {
			if !existing.Status.CanTransitionTo(models.RegistrationRegistered) {
				return apperrors.NewStateError("registration cannot be renewed").WithDetail("registrationId", existing.ID.String())
			}
			existing.Status = models.RegistrationRegistered
			existing.Notes = notes
			existing.AttendedAt = nil
			existing.RegisteredAt = now
			existing.UpdatedAt = now
			if err := tx.Registrations().Update(ctx, existing); err != nil {
				return fmt.Errorf("renew registration: %w", err)
			}
			reg = existing
		} else {
			reg = &models.Registration{
				ID:           uuid.New(),
				EventID:      eventID,
				UserID:       caller.ID,
				Status:       models.RegistrationRegistered,
				Notes:        notes,
				RegisteredAt: now,
				UpdatedAt:    now,
			}
			if err := tx.Registrations().Create(ctx, reg); err != nil {
				if errors.Is(err, repositories.ErrDuplicate) {
					return apperrors.NewConflictError("already registered for this event").WithDetail("eventId", eventID.String())
				}
				return fmt.Errorf("create registration: %w", err)
			}
		}
		e.CurrentAttendees++
		event = e
		return nil
	})
	if err != nil {
		s.logOutcome(err, "Registration rejected", map[string]interface{}{"eventID": eventID.String(), "userID": caller.ID.String()})
		return nil, wrap(err, "register")
	}

	s.logger.Info().
		Str("eventID", eventID.String()).
		Str("userID", caller.ID.String()).
		Int("attendees", event.CurrentAttendees).
		Msg("User registered for event")
	return &dto.RegistrationView{Registration: *reg, Event: dto.NewEventSummary(event)}, nil
}

// CancelRegistration gives the caller's seat back.
func (s *EventService) CancelRegistration(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "events.CancelRegistration", idAttr("event.id", eventID))
	defer func() {
		metrics.RegistrationCancellationsTotal.WithLabelValues(apperrors.Kind(err)).Inc()
		endSpan(span, err)
	}()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Events().GetByIDForUpdate(ctx, eventID); err != nil {
			return notFound(err, "event", eventID)
		}
		reg, err := tx.Registrations().GetByEventAndUser(ctx, eventID, caller.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NewNotFoundError("registration", eventID).WithDetail("userId", caller.ID.String())
			}
			return fmt.Errorf("load registration: %w", err)
		}
		return s.cancel(ctx, tx, reg)
	})
	if err != nil {
		s.logOutcome(err, "Cancellation rejected", map[string]interface{}{"eventID": eventID.String(), "userID": caller.ID.String()})
		return wrap(err, "cancel registration")
	}
	s.logger.Info().Str("eventID", eventID.String()).Str("userID", caller.ID.String()).Msg("Registration cancelled")
	return nil
}

// cancel frees the seat held by reg. ATTENDED is terminal.
func (s *EventService) cancel(ctx context.Context, tx repositories.Store, reg *models.Registration) error {
	switch reg.Status {
	case models.RegistrationAttended:
		return apperrors.NewStateError("attended registrations cannot be cancelled").WithDetail("registrationId", reg.ID.String())
	case models.RegistrationCancelled:
		return apperrors.NewStateError("registration is already cancelled").WithDetail("registrationId", reg.ID.String())
	}
	reg.Status = models.RegistrationCancelled
	reg.UpdatedAt = s.now()
	if err := tx.Registrations().Update(ctx, reg); err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if err := tx.Events().DecrementAttendees(ctx, reg.EventID); err != nil {
		return fmt.Errorf("decrement attendees: %w", err)
	}
	return nil
}

// UpdateRegistrationStatus is the organizer's confirm/attend/cancel decision.
func (s *EventService) UpdateRegistrationStatus(ctx context.Context, caller *appAuth.Caller, registrationID uuid.UUID, req dto.UpdateRegistrationStatusRequest) (_ *dto.RegistrationView, err error) {
	ctx, span := s.startSpan(ctx, "events.UpdateRegistrationStatus", idAttr("registration.id", registrationID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown registration status")
	}

	var reg *models.Registration
	var event *models.Event
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		r, err := tx.Registrations().GetByID(ctx, registrationID)
		if err != nil {
			return notFound(err, "registration", registrationID)
		}
		e, err := tx.Events().GetByIDForUpdate(ctx, r.EventID)
		if err != nil {
			return notFound(err, "event", r.EventID)
		}
		if err := appAuth.RequireOwner(caller, e.OrganizerID, "event"); err != nil {
			return err
		}
		// Renewing a cancelled registration is the registrant's call, through Register.
		if r.Status == models.RegistrationCancelled || !r.Status.CanTransitionTo(req.Status) {
			return apperrors.NewStateError(fmt.Sprintf("cannot move registration from %s to %s", r.Status, req.Status)).
				WithDetails(map[string]interface{}{"registrationId": registrationID.String(), "from": string(r.Status), "to": string(req.Status)})
		}

		if req.Status == models.RegistrationCancelled {
			if err := s.cancel(ctx, tx, r); err != nil {
				return err
			}
			e.CurrentAttendees--
		} else {
			now := s.now()
			r.Status = req.Status
			r.UpdatedAt = now
			if req.Status == models.RegistrationAttended {
				r.AttendedAt = &now
			}
			if err := tx.Registrations().Update(ctx, r); err != nil {
				return fmt.Errorf("update registration: %w", err)
			}
		}
		reg, event = r, e
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update registration status")
	}

	s.logger.Info().
		Str("registrationID", registrationID.String()).
		Str("status", string(reg.Status)).
		Msg("Registration status updated")
	users, err := summaries(ctx, s.store, []uuid.UUID{reg.UserID})
	if err != nil {
		return nil, err
	}
	return &dto.RegistrationView{Registration: *reg, Event: dto.NewEventSummary(event), User: users[reg.UserID]}, nil
}

// canSee reports whether caller may see an event in a non-public status.
func canSee(caller *appAuth.Caller, e *models.Event) bool {
	return e.Status.Public() || caller.Is(e.OrganizerID) || caller.IsAdmin()
}

// GetEvent returns the event detail and counts the view.
func (s *EventService) GetEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (*dto.EventView, error) {
	e, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event", eventID)
	}
	if !canSee(caller, e) {
		return nil, apperrors.NewNotFoundError("event", eventID)
	}
	s.bestEffort(ctx, "event views", func(ctx context.Context) error {
		if err := s.store.Events().IncrementViews(ctx, eventID); err != nil {
			return err
		}
		e.ViewCount++
		return nil
	})
	return s.view(ctx, s.store, caller, e)
}

func (s *EventService) view(ctx context.Context, store repositories.Store, caller *appAuth.Caller, e *models.Event) (*dto.EventView, error) {
	views, err := s.views(ctx, store, caller, []*models.Event{e})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *EventService) views(ctx context.Context, store repositories.Store, caller *appAuth.Caller, events []*models.Event) ([]*dto.EventView, error) {
	ids := make([]uuid.UUID, len(events))
	for i, e := range events {
		ids[i] = e.OrganizerID
	}
	organizers, err := summaries(ctx, store, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.EventView, len(events))
	for i, e := range events {
		v := &dto.EventView{
			Event:           *e,
			Organizer:       organizers[e.OrganizerID],
			RegisteredCount: int64(e.CurrentAttendees),
			IsFull:          e.IsFull(),
		}
		if caller != nil {
			reg, err := store.Registrations().GetByEventAndUser(ctx, e.ID, caller.ID)
			switch {
			case err == nil:
				status := reg.Status
				v.RegistrationStatus = &status
				v.HasRegistered = status.HoldsSeat()
			case !errors.Is(err, repositories.ErrNotFound):
				return nil, fmt.Errorf("load registration: %w", err)
			}
		}
		out[i] = v
	}
	return out, nil
}

// ListEvents lists events, PUBLISHED ones unless a status is asked for.
// Non-admins asking for a non-public status only see their own events.
func (s *EventService) ListEvents(ctx context.Context, caller *appAuth.Caller, q dto.EventListQuery) (*dto.PaginatedResponse[*dto.EventView], error) {
	filter := repositories.EventFilter{Search: q.Search, IsOnline: q.IsOnline}

	status := models.EventPublished
	if q.Status != "" {
		status = models.EventStatus(q.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("status", "unknown event status")
		}
	}
	filter.Statuses = []models.EventStatus{status}
	if !status.Public() && !caller.IsAdmin() {
		if err := appAuth.RequireAuthenticated(caller); err != nil {
			return nil, err
		}
		filter.OrganizerID = &caller.ID
	}
	if q.Type != "" {
		t := models.EventType(q.Type)
		if !t.Valid() {
			return nil, apperrors.NewValidationError("type", "unknown event type")
		}
		filter.Type = &t
	}
	if q.Upcoming {
		now := s.now()
		filter.StartsAfter = &now
	}

	page, pageNum, size := pageOf(q.PageQuery)
	events, total, err := s.store.Events().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	views, err := s.views(ctx, s.store, caller, events)
	if err != nil {
		return nil, err
	}
	return paginated(views, total, pageNum, size), nil
}

// UpdateEvent edits the organizer's event while it is not finished.
func (s *EventService) UpdateEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, req dto.UpdateEventRequest) (_ *dto.EventView, err error) {
	ctx, span := s.startSpan(ctx, "events.UpdateEvent", idAttr("event.id", eventID))
	defer func() { endSpan(span, err) }()

	var event *models.Event
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		e, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		if err := appAuth.RequireOwner(caller, e.OrganizerID, "event"); err != nil {
			return err
		}
		if e.Status.Terminal() {
			return apperrors.NewStateError("finished events cannot be edited").WithDetail("status", string(e.Status))
		}
		if err := applyEventUpdate(e, req); err != nil {
			return err
		}
		if e.Capacity != nil && *e.Capacity < e.CurrentAttendees {
			return apperrors.NewValidationError("capacity", "capacity is below the number of registered attendees").
				WithDetail("currentAttendees", e.CurrentAttendees)
		}
		e.UpdatedAt = s.now()
		if err := tx.Events().Update(ctx, e); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		event = e
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update event")
	}
	return s.view(ctx, s.store, caller, event)
}

func applyEventUpdate(e *models.Event, req dto.UpdateEventRequest) error {
	if req.Title != nil {
		title := sanitize.Text(*req.Title)
		if title == "" {
			return apperrors.NewValidationError("title", "title must not be empty")
		}
		e.Title = title
	}
	if req.Description != nil {
		e.Description = sanitize.HTML(*req.Description)
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return apperrors.NewValidationError("type", "unknown event type")
		}
		e.Type = *req.Type
	}
	if req.CoverImage != nil {
		e.CoverImage = trimOptional(req.CoverImage)
	}
	if req.StartDate != nil {
		e.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		e.EndDate = req.EndDate.UTC()
	}
	if err := validateEventWindow(e.StartDate, e.EndDate); err != nil {
		return err
	}
	if req.Location != nil {
		e.Location = cleanText(req.Location)
	}
	if req.IsOnline != nil {
		e.IsOnline = *req.IsOnline
	}
	if req.MeetingURL != nil {
		e.MeetingURL = trimOptional(req.MeetingURL)
	}
	if req.Capacity != nil {
		if err := validateCapacity(req.Capacity); err != nil {
			return err
		}
		e.Capacity = req.Capacity
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return apperrors.NewValidationError("price", "price must not be negative")
		}
		e.Price = *req.Price
	}
	if req.Tags != nil {
		e.Tags = sanitize.TextSlice(req.Tags)
	}
	return nil
}

// CancelEvent cancels the organizer's event.
func (s *EventService) CancelEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "events.CancelEvent", idAttr("event.id", eventID))
	defer func() { endSpan(span, err) }()

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		e, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, e.OrganizerID, "event"); err != nil {
			return err
		}
		if !e.Status.CanTransitionTo(models.EventCancelled) {
			return apperrors.NewStateError("event cannot be cancelled in status " + string(e.Status))
		}
		e.Status = models.EventCancelled
		e.UpdatedAt = s.now()
		return tx.Events().Update(ctx, e)
	})
	if err != nil {
		return wrap(err, "cancel event")
	}
	s.logger.Info().Str("eventID", eventID.String()).Msg("Event cancelled")
	return nil
}

// DeleteEvent removes the event and its registrations.
func (s *EventService) DeleteEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) error {
	return wrap(s.store.WithTx(ctx, func(tx repositories.Store) error {
		e, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, e.OrganizerID, "event"); err != nil {
			return err
		}
		return tx.Events().Delete(ctx, eventID)
	}), "delete event")
}

// MyRegistrations lists the caller's registrations, newest first.
func (s *EventService) MyRegistrations(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.RegistrationView], error) {
	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q)
	regs, total, err := s.store.Registrations().List(ctx, repositories.RegistrationFilter{UserID: &caller.ID}, page)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	views := make([]*dto.RegistrationView, 0, len(regs))
	for _, r := range regs {
		v := &dto.RegistrationView{Registration: *r}
		e, err := s.store.Events().GetByID(ctx, r.EventID)
		switch {
		case err == nil:
			v.Event = dto.NewEventSummary(e)
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("load event: %w", err)
		}
		views = append(views, v)
	}
	return paginated(views, total, pageNum, size), nil
}

// EventRegistrations lists an event's registrations for its organizer.
func (s *EventService) EventRegistrations(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, q dto.PageQuery) (*dto.PaginatedResponse[*dto.RegistrationView], error) {
	e, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event", eventID)
	}
	if err := appAuth.RequireOwnerOrAdmin(caller, e.OrganizerID, "event"); err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q)
	regs, total, err := s.store.Registrations().List(ctx, repositories.RegistrationFilter{EventID: &eventID}, page)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	ids := make([]uuid.UUID, len(regs))
	for i, r := range regs {
		ids[i] = r.UserID
	}
	users, err := summaries(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}
	summary := dto.NewEventSummary(e)
	views := make([]*dto.RegistrationView, len(regs))
	for i, r := range regs {
		views[i] = &dto.RegistrationView{Registration: *r, Event: summary, User: users[r.UserID]}
	}
	return paginated(views, total, pageNum, size), nil
}
