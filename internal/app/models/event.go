package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventWebinar    EventType = "WEBINAR"
	EventWorkshop   EventType = "WORKSHOP"
	EventMeetup     EventType = "MEETUP"
	EventReunion    EventType = "REUNION"
	EventSeminar    EventType = "SEMINAR"
	EventNetworking EventType = "NETWORKING"
	EventConference EventType = "CONFERENCE"
)

func (t EventType) Valid() bool {
	switch t {
	case EventWebinar, EventWorkshop, EventMeetup, EventReunion, EventSeminar, EventNetworking, EventConference:
		return true
	}
	return false
}

type EventStatus string

const (
	EventDraft           EventStatus = "DRAFT"
	EventPendingApproval EventStatus = "PENDING_APPROVAL"
	EventPublished       EventStatus = "PUBLISHED"
	EventOngoing         EventStatus = "ONGOING"
	EventCompleted       EventStatus = "COMPLETED"
	EventRejected        EventStatus = "REJECTED"
	EventCancelled       EventStatus = "CANCELLED"
)

var eventTransitions = transitionTable[EventStatus]{
	EventDraft:           {EventPendingApproval, EventPublished, EventCancelled},
	EventPendingApproval: {EventPublished, EventRejected, EventCancelled},
	EventPublished:       {EventOngoing, EventCancelled},
	EventOngoing:         {EventCompleted},
}

func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	return eventTransitions.allows(s, next)
}

func (s EventStatus) Terminal() bool {
	return eventTransitions.terminal(s)
}

// Public reports whether events in this status are visible to everyone.
func (s EventStatus) Public() bool {
	switch s {
	case EventPublished, EventOngoing, EventCompleted, EventCancelled:
		return true
	}
	return false
}

func (s EventStatus) Valid() bool {
	_, inTable := eventTransitions[s]
	return inTable || s == EventCompleted || s == EventRejected || s == EventCancelled
}

// Event is an organizer-owned gathering with optional capacity.
type Event struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	OrganizerID      uuid.UUID   `json:"organizerId" db:"organizer_id"`
	Title            string      `json:"title" db:"title"`
	Description      string      `json:"description" db:"description"`
	Type             EventType   `json:"type" db:"type"`
	Status           EventStatus `json:"status" db:"status"`
	CoverImage       *string     `json:"coverImage,omitempty" db:"cover_image"`
	StartDate        time.Time   `json:"startDate" db:"start_date"`
	EndDate          time.Time   `json:"endDate" db:"end_date"`
	Location         *string     `json:"location,omitempty" db:"location"`
	IsOnline         bool        `json:"isOnline" db:"is_online"`
	MeetingURL       *string     `json:"meetingUrl,omitempty" db:"meeting_url"`
	Capacity         *int        `json:"capacity,omitempty" db:"capacity"` // nil means unlimited
	CurrentAttendees int         `json:"currentAttendees" db:"current_attendees"`
	Price            int64       `json:"price" db:"price"` // minor units
	Currency         string      `json:"currency" db:"currency"`
	Tags             []string    `json:"tags" db:"tags"`
	ViewCount        int64       `json:"viewCount" db:"view_count"`
	ApprovedBy       *uuid.UUID  `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt       *time.Time  `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedBy       *uuid.UUID  `json:"rejectedBy,omitempty" db:"rejected_by"`
	RejectedAt       *time.Time  `json:"rejectedAt,omitempty" db:"rejected_at"`
	RejectionReason  *string     `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}

// IsFull reports whether the attendee counter has reached capacity.
func (e *Event) IsFull() bool {
	return e.Capacity != nil && e.CurrentAttendees >= *e.Capacity
}

type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "REGISTERED"
	RegistrationConfirmed  RegistrationStatus = "CONFIRMED"
	RegistrationAttended   RegistrationStatus = "ATTENDED"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
)

var registrationTransitions = transitionTable[RegistrationStatus]{
	RegistrationRegistered: {RegistrationConfirmed, RegistrationAttended, RegistrationCancelled},
	RegistrationConfirmed:  {RegistrationAttended, RegistrationCancelled},
	RegistrationCancelled:  {RegistrationRegistered},
}

func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	return registrationTransitions.allows(s, next)
}

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationRegistered, RegistrationConfirmed, RegistrationAttended, RegistrationCancelled:
		return true
	}
	return false
}

// HoldsSeat reports whether a registration in this status counts against capacity.
func (s RegistrationStatus) HoldsSeat() bool {
	return s != RegistrationCancelled
}

// Registration is unique per (event, user).
type Registration struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	EventID      uuid.UUID          `json:"eventId" db:"event_id"`
	UserID       uuid.UUID          `json:"userId" db:"user_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	Notes        *string            `json:"notes,omitempty" db:"notes"`
	AttendedAt   *time.Time         `json:"attendedAt,omitempty" db:"attended_at"`
	RegisteredAt time.Time          `json:"registeredAt" db:"registered_at"`
	UpdatedAt    time.Time          `json:"updatedAt" db:"updated_at"`
}
