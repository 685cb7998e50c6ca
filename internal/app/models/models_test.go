package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventTransitions(t *testing.T) {
	assert.True(t, EventDraft.CanTransitionTo(EventPendingApproval))
	assert.True(t, EventPendingApproval.CanTransitionTo(EventPublished))
	assert.True(t, EventPublished.CanTransitionTo(EventOngoing))
	assert.True(t, EventOngoing.CanTransitionTo(EventCompleted))

	assert.False(t, EventPublished.CanTransitionTo(EventDraft))
	assert.False(t, EventRejected.CanTransitionTo(EventPublished))
	assert.False(t, EventOngoing.CanTransitionTo(EventCancelled))
	assert.True(t, EventCompleted.Terminal())
	assert.False(t, EventPublished.Terminal())
}

func TestRegistrationTransitions(t *testing.T) {
	assert.True(t, RegistrationRegistered.CanTransitionTo(RegistrationConfirmed))
	assert.True(t, RegistrationConfirmed.CanTransitionTo(RegistrationCancelled))
	assert.True(t, RegistrationCancelled.CanTransitionTo(RegistrationRegistered))
	assert.False(t, RegistrationAttended.CanTransitionTo(RegistrationCancelled))
	assert.False(t, RegistrationConfirmed.CanTransitionTo(RegistrationRegistered))
	assert.False(t, RegistrationCancelled.HoldsSeat())
}

func TestApplicationTransitions(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{ApplicationPending, ApplicationReviewed, true},
		{ApplicationPending, ApplicationInterview, true},
		{ApplicationOffered, ApplicationAccepted, true},
		{ApplicationInterview, ApplicationRejected, true},
		{ApplicationShortlisted, ApplicationReviewed, false},
		{ApplicationPending, ApplicationPending, false},
		{ApplicationAccepted, ApplicationRejected, false},
		{ApplicationRejected, ApplicationPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.True(t, ApplicationAccepted.Valid())
	assert.False(t, ApplicationStatus("HIRED").Valid())
}

func TestCampaignAndDonationTransitions(t *testing.T) {
	assert.True(t, CampaignPendingApproval.CanTransitionTo(CampaignActive))
	assert.True(t, CampaignActive.CanTransitionTo(CampaignCompleted))
	assert.False(t, CampaignCompleted.CanTransitionTo(CampaignActive))

	assert.True(t, DonationPending.CanTransitionTo(DonationVerified))
	assert.False(t, DonationVerified.CanTransitionTo(DonationVerified))
	assert.False(t, DonationRejected.CanTransitionTo(DonationVerified))
	assert.False(t, DonationPending.IsDecision())
}

func TestUserTransitions(t *testing.T) {
	assert.True(t, UserActive.CanTransitionTo(UserSuspended))
	assert.True(t, UserSuspended.CanTransitionTo(UserActive))
	assert.True(t, UserInactive.CanTransitionTo(UserActive))
	assert.False(t, UserInactive.CanTransitionTo(UserSuspended))
}

func TestDerivedFlags(t *testing.T) {
	capacity := 2
	e := &Event{Capacity: &capacity, CurrentAttendees: 2}
	assert.True(t, e.IsFull())
	e.Capacity = nil
	assert.False(t, e.IsFull())

	now := time.Now()
	past := now.Add(-time.Hour)
	j := &Job{IsActive: true, Deadline: &past}
	assert.False(t, j.AcceptingApplications(now))
	j.Deadline = nil
	assert.True(t, j.AcceptingApplications(now))

	c := &Campaign{Status: CampaignActive, EndDate: now.Add(time.Hour)}
	assert.True(t, c.AcceptingDonations(now))
	assert.False(t, c.AcceptingDonations(now.Add(2*time.Hour)))
}
