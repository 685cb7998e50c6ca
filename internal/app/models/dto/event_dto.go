package dto

import (
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/google/uuid"
)

// CreateEventRequest is an organizer's event draft
type CreateEventRequest struct {
	Title       string           `json:"title" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=20000"`
	Type        models.EventType `json:"type" binding:"required"`
	CoverImage  *string          `json:"coverImage" binding:"omitempty,url"`
	StartDate   time.Time        `json:"startDate" binding:"required"`
	EndDate     time.Time        `json:"endDate" binding:"required"`
	Location    *string          `json:"location" binding:"omitempty,max=300"`
	IsOnline    bool             `json:"isOnline"`
	MeetingURL  *string          `json:"meetingUrl" binding:"omitempty,url"`
	Capacity    *int             `json:"capacity"`
	Price       int64            `json:"price" binding:"min=0"`
	Currency    string           `json:"currency" binding:"omitempty,currency"`
	Tags        []string         `json:"tags" binding:"max=20"`
	SaveAsDraft bool             `json:"saveAsDraft"`
}

// UpdateEventRequest changes only the fields that are set
type UpdateEventRequest struct {
	Title       *string           `json:"title" binding:"omitempty,max=200"`
	Description *string           `json:"description" binding:"omitempty,max=20000"`
	Type        *models.EventType `json:"type"`
	CoverImage  *string           `json:"coverImage" binding:"omitempty,url"`
	StartDate   *time.Time        `json:"startDate"`
	EndDate     *time.Time        `json:"endDate"`
	Location    *string           `json:"location" binding:"omitempty,max=300"`
	IsOnline    *bool             `json:"isOnline"`
	MeetingURL  *string           `json:"meetingUrl" binding:"omitempty,url"`
	Capacity    *int              `json:"capacity"`
	Price       *int64            `json:"price" binding:"omitempty,min=0"`
	Tags        []string          `json:"tags" binding:"max=20"`
}

// RegisterEventRequest carries the registrant's optional note
type RegisterEventRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateRegistrationStatusRequest is an organizer's attendance decision
type UpdateRegistrationStatusRequest struct {
	Status models.RegistrationStatus `json:"status" binding:"required"`
}

// EventListQuery filters the event catalogue
type EventListQuery struct {
	PageQuery
	Status   string `form:"status"`
	Type     string `form:"type"`
	IsOnline *bool  `form:"isOnline"`
	Upcoming bool   `form:"upcoming"`
	Search   string `form:"search" binding:"max=100"`
}

// EventView is an event with the counts and caller flags a detail page needs
type EventView struct {
	models.Event
	Organizer          *UserSummary               `json:"organizer,omitempty"`
	RegisteredCount    int64                      `json:"registeredCount"`
	IsFull             bool                       `json:"isFull"`
	HasRegistered      bool                       `json:"hasRegistered"`
	RegistrationStatus *models.RegistrationStatus `json:"registrationStatus,omitempty"`
}

// RegistrationView is a registration with its event and registrant
type RegistrationView struct {
	models.Registration
	Event *EventSummary `json:"event,omitempty"`
	User  *UserSummary  `json:"user,omitempty"`
}

// EventSummary is the part of an event embedded in registration lists
type EventSummary struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Status    models.EventStatus `json:"status"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
}

// NewEventSummary trims an event for embedding.
func NewEventSummary(e *models.Event) *EventSummary {
	if e == nil {
		return nil
	}
	return &EventSummary{ID: e.ID, Title: e.Title, Status: e.Status, StartDate: e.StartDate, EndDate: e.EndDate}
}
