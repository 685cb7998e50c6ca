package controllers

import (
	"context"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventWorkflow is the event and registration surface.
type EventWorkflow interface {
	Publish(ctx context.Context, caller *appAuth.Caller, req dto.CreateEventRequest) (*dto.EventView, error)
	SubmitDraft(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (*dto.EventView, error)
	GetEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (*dto.EventView, error)
	ListEvents(ctx context.Context, caller *appAuth.Caller, q dto.EventListQuery) (*dto.PaginatedResponse[*dto.EventView], error)
	UpdateEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, req dto.UpdateEventRequest) (*dto.EventView, error)
	CancelEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) error
	DeleteEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) error
	Register(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, req dto.RegisterEventRequest) (*dto.RegistrationView, error)
	CancelRegistration(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) error
	UpdateRegistrationStatus(ctx context.Context, caller *appAuth.Caller, registrationID uuid.UUID, req dto.UpdateRegistrationStatusRequest) (*dto.RegistrationView, error)
	MyRegistrations(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.RegistrationView], error)
	EventRegistrations(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, q dto.PageQuery) (*dto.PaginatedResponse[*dto.RegistrationView], error)
}

// EventController serves /events and /registrations
type EventController struct {
	events EventWorkflow
}

// NewEventController creates a new EventController
func NewEventController(events EventWorkflow) *EventController {
	return &EventController{events: events}
}

func (ec *EventController) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ec.events.Publish(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Event created")
}

func (ec *EventController) Submit(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := ec.events.SubmitDraft(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (ec *EventController) Get(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := ec.events.GetEvent(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (ec *EventController) List(c *gin.Context) {
	var q dto.EventListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := ec.events.ListEvents(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (ec *EventController) Update(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ec.events.UpdateEvent(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (ec *EventController) Cancel(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := ec.events.CancelEvent(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Event cancelled")
}

func (ec *EventController) Delete(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := ec.events.DeleteEvent(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Event deleted")
}

func (ec *EventController) Register(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RegisterEventRequest
	if c.Request.ContentLength > 0 && !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ec.events.Register(c.Request.Context(), middleware.Caller(c), id, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Registered for event")
}

func (ec *EventController) CancelRegistration(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := ec.events.CancelRegistration(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Registration cancelled")
}

func (ec *EventController) UpdateRegistrationStatus(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRegistrationStatusRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ec.events.UpdateRegistrationStatus(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (ec *EventController) MyRegistrations(c *gin.Context) {
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := ec.events.MyRegistrations(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (ec *EventController) Registrations(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := ec.events.EventRegistrations(c.Request.Context(), middleware.Caller(c), id, q)
	reply(c, res, err)
}
