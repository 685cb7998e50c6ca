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

func publishEvent(t *testing.T, svc *EventService, organizer *appAuth.Caller, capacity *int) *dto.EventView {
	t.Helper()
	view, err := svc.Publish(context.Background(), organizer, dto.CreateEventRequest{
		Title:     "Spring Reunion",
		Type:      models.EventReunion,
		StartDate: baseTime.Add(48 * time.Hour),
		EndDate:   baseTime.Add(52 * time.Hour),
		Capacity:  capacity,
	})
	require.NoError(t, err)
	return view
}

func TestPublishRespectsApprovalSetting(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, true)
	svc := NewEventService(env.store, env.cfg, env.log)
	org := env.user(t, "org")
	assert.Equal(t, models.EventPendingApproval, publishEvent(t, svc, org, nil).Status)

	draft, err := svc.Publish(ctx, org, dto.CreateEventRequest{
		Title: "Draft", Type: models.EventMeetup,
		StartDate: baseTime.Add(time.Hour), EndDate: baseTime.Add(2 * time.Hour),
		SaveAsDraft: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventDraft, draft.Status)

	submitted, err := svc.SubmitDraft(ctx, org, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventPendingApproval, submitted.Status)

	_, err = svc.SubmitDraft(ctx, org, draft.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	direct := newTestEnv(t, false)
	directSvc := NewEventService(direct.store, direct.cfg, direct.log)
	assert.Equal(t, models.EventPublished, publishEvent(t, directSvc, direct.user(t, "org"), nil).Status)
}

func TestPublishValidatesInput(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	org := env.user(t, "org")
	ctx := context.Background()

	_, err := svc.Publish(ctx, org, dto.CreateEventRequest{
		Title: "Backwards", Type: models.EventMeetup,
		StartDate: baseTime.Add(2 * time.Hour), EndDate: baseTime.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Publish(ctx, org, dto.CreateEventRequest{
		Title: "Zero seats", Type: models.EventMeetup,
		StartDate: baseTime.Add(time.Hour), EndDate: baseTime.Add(2 * time.Hour),
		Capacity: intPtr(0),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Publish(ctx, nil, dto.CreateEventRequest{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRegisterUntilFull(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	ctx := context.Background()
	event := publishEvent(t, svc, env.user(t, "org"), intPtr(2))

	a, b, c := env.user(t, "a"), env.user(t, "b"), env.user(t, "c")

	_, err := svc.Register(ctx, a, event.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)
	_, err = svc.Register(ctx, b, event.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)

	_, err = svc.Register(ctx, c, event.ID, dto.RegisterEventRequest{})
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	stored, err := env.store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentAttendees)

	// a seat freed by cancellation can be taken again
	require.NoError(t, svc.CancelRegistration(ctx, a, event.ID))
	_, err = svc.Register(ctx, c, event.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)

	view, err := svc.GetEvent(ctx, c, event.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFull)
	assert.True(t, view.HasRegistered)
	assert.EqualValues(t, 2, view.RegisteredCount)
}

func TestConcurrentRegistrationsNeverOverbook(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	event := publishEvent(t, svc, env.user(t, "org"), intPtr(3))

	callers := make([]*appAuth.Caller, 10)
	for i := range callers {
		callers[i] = env.user(t, uuid.NewString())
	}

	var wg sync.WaitGroup
	errs := make([]error, len(callers))
	for i, caller := range callers {
		wg.Add(1)
		go func(i int, caller *appAuth.Caller) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), caller, event.ID, dto.RegisterEventRequest{})
		}(i, caller)
	}
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperrors.Is(err, apperrors.ErrCapacityExceeded):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 7, full)

	stored, err := env.store.Events().GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentAttendees)
}

func TestRegisterErrorOrder(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	ctx := context.Background()
	org := env.user(t, "org")
	alice := env.user(t, "alice")

	_, err := svc.Register(ctx, alice, uuid.New(), dto.RegisterEventRequest{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	pending := newTestEnv(t, true)
	pendingSvc := NewEventService(pending.store, pending.cfg, pending.log)
	unpublished := publishEvent(t, pendingSvc, pending.user(t, "org"), nil)
	_, err = pendingSvc.Register(ctx, pending.user(t, "bob"), unpublished.ID, dto.RegisterEventRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	event := publishEvent(t, svc, org, intPtr(1))
	_, err = svc.Register(ctx, alice, event.ID, dto.RegisterEventRequest{Notes: strPtr("vegetarian")})
	require.NoError(t, err)

	// duplicate is reported before the event being full
	_, err = svc.Register(ctx, alice, event.ID, dto.RegisterEventRequest{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	later := publishEvent(t, svc, org, nil)
	env.clock.Advance(72 * time.Hour)
	_, err = svc.Register(ctx, env.user(t, "late"), later.ID, dto.RegisterEventRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestCancelRegistration(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	ctx := context.Background()
	org := env.user(t, "org")
	alice := env.user(t, "alice")
	event := publishEvent(t, svc, org, intPtr(5))

	err := svc.CancelRegistration(ctx, alice, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	reg, err := svc.Register(ctx, alice, event.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.CancelRegistration(ctx, alice, event.ID))
	err = svc.CancelRegistration(ctx, alice, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	stored, err := env.store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentAttendees, "decremented exactly once")

	// re-registering reuses the cancelled row
	again, err := svc.Register(ctx, alice, event.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, again.ID)
	assert.Equal(t, models.RegistrationRegistered, again.Status)

	_, err = svc.UpdateRegistrationStatus(ctx, org, again.ID, dto.UpdateRegistrationStatusRequest{Status: models.RegistrationAttended})
	require.NoError(t, err)
	err = svc.CancelRegistration(ctx, alice, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestUpdateRegistrationStatus(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	ctx := context.Background()
	org := env.user(t, "org")
	alice := env.user(t, "alice")
	event := publishEvent(t, svc, org, nil)

	reg, err := svc.Register(ctx, alice, event.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)

	_, err = svc.UpdateRegistrationStatus(ctx, alice, reg.ID, dto.UpdateRegistrationStatusRequest{Status: models.RegistrationConfirmed})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	confirmed, err := svc.UpdateRegistrationStatus(ctx, org, reg.ID, dto.UpdateRegistrationStatusRequest{Status: models.RegistrationConfirmed})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationConfirmed, confirmed.Status)
	assert.Equal(t, "alice", confirmed.User.FullName)

	_, err = svc.UpdateRegistrationStatus(ctx, org, reg.ID, dto.UpdateRegistrationStatusRequest{Status: models.RegistrationRegistered})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	cancelled, err := svc.UpdateRegistrationStatus(ctx, org, reg.ID, dto.UpdateRegistrationStatusRequest{Status: models.RegistrationCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationCancelled, cancelled.Status)

	stored, err := env.store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentAttendees)

	_, err = svc.UpdateRegistrationStatus(ctx, org, reg.ID, dto.UpdateRegistrationStatusRequest{Status: models.RegistrationRegistered})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestHiddenEventsAndListing(t *testing.T) {
	env := newTestEnv(t, true)
	svc := NewEventService(env.store, env.cfg, env.log)
	ctx := context.Background()
	org := env.user(t, "org")
	other := env.user(t, "other")
	admin := env.admin(t, "root")

	event := publishEvent(t, svc, org, nil)

	_, err := svc.GetEvent(ctx, other, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	_, err = svc.GetEvent(ctx, nil, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	view, err := svc.GetEvent(ctx, org, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.ViewCount)
	_, err = svc.GetEvent(ctx, admin, event.ID)
	require.NoError(t, err)

	public, err := svc.ListEvents(ctx, nil, dto.EventListQuery{})
	require.NoError(t, err)
	assert.Empty(t, public.Items)

	mine, err := svc.ListEvents(ctx, org, dto.EventListQuery{Status: string(models.EventPendingApproval)})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)

	theirs, err := svc.ListEvents(ctx, other, dto.EventListQuery{Status: string(models.EventPendingApproval)})
	require.NoError(t, err)
	assert.Empty(t, theirs.Items)

	_, err = svc.ListEvents(ctx, org, dto.EventListQuery{Status: "BOGUS"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateAndCancelEvent(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	ctx := context.Background()
	org := env.user(t, "org")
	event := publishEvent(t, svc, org, intPtr(5))

	for _, name := range []string{"a", "b"} {
		_, err := svc.Register(ctx, env.user(t, name), event.ID, dto.RegisterEventRequest{})
		require.NoError(t, err)
	}

	_, err := svc.UpdateEvent(ctx, org, event.ID, dto.UpdateEventRequest{Capacity: intPtr(1)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	title := "<b>Renamed</b>"
	updated, err := svc.UpdateEvent(ctx, org, event.ID, dto.UpdateEventRequest{Title: &title, Capacity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.IsFull)
	assert.Equal(t, 2, updated.CurrentAttendees)

	err = svc.CancelEvent(ctx, env.user(t, "intruder"), event.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	require.NoError(t, svc.CancelEvent(ctx, org, event.ID))
	err = svc.CancelEvent(ctx, org, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	regs, err := svc.EventRegistrations(ctx, org, event.ID, dto.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, regs.Pagination.TotalItems)

	require.NoError(t, svc.DeleteEvent(ctx, org, event.ID))
	_, err = svc.GetEvent(ctx, org, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestMyRegistrations(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewEventService(env.store, env.cfg, env.log)
	ctx := context.Background()
	org := env.user(t, "org")
	alice := env.user(t, "alice")

	first := publishEvent(t, svc, org, nil)
	second := publishEvent(t, svc, org, nil)
	_, err := svc.Register(ctx, alice, first.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = svc.Register(ctx, alice, second.ID, dto.RegisterEventRequest{})
	require.NoError(t, err)

	res, err := svc.MyRegistrations(ctx, alice, dto.PageQuery{Page: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, second.ID, res.Items[0].Event.ID)
	assert.Equal(t, 2, res.Pagination.TotalPages)

	_, err = svc.MyRegistrations(ctx, nil, dto.PageQuery{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
