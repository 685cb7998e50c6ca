package controllers

import (
	"context"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ModerationWorkflow is the SUPER_ADMIN surface.
type ModerationWorkflow interface {
	ApproveEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (*models.Event, error)
	RejectEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, req dto.RejectRequest) (*models.Event, error)
	ApproveCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) (*models.Campaign, error)
	RejectCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, req dto.RejectRequest) (*models.Campaign, error)
	SuspendUser(ctx context.Context, caller *appAuth.Caller, userID uuid.UUID, req dto.SuspendUserRequest) (*dto.UserView, error)
	ActivateUser(ctx context.Context, caller *appAuth.Caller, userID uuid.UUID) (*dto.UserView, error)
	DeleteUser(ctx context.Context, caller *appAuth.Caller, userID uuid.UUID) (*dto.UserView, error)
	Dashboard(ctx context.Context, caller *appAuth.Caller) (*dto.DashboardView, error)
	ListUsers(ctx context.Context, caller *appAuth.Caller, q dto.UserListQuery) (*dto.PaginatedResponse[*dto.UserView], error)
	PendingEvents(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.EventView], error)
	PendingCampaigns(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.CampaignView], error)
	DeleteContent(ctx context.Context, caller *appAuth.Caller, contentType string, id uuid.UUID, req dto.DeleteContentRequest) error
	ModerationLog(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*models.ModerationAction], error)
}

// AdminController serves /admin
type AdminController struct {
	admin ModerationWorkflow
}

// NewAdminController creates a new AdminController
func NewAdminController(admin ModerationWorkflow) *AdminController {
	return &AdminController{admin: admin}
}

func (ac *AdminController) Dashboard(c *gin.Context) {
	res, err := ac.admin.Dashboard(c.Request.Context(), middleware.Caller(c))
	reply(c, res, err)
}

func (ac *AdminController) ApproveEvent(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := ac.admin.ApproveEvent(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (ac *AdminController) RejectEvent(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ac.admin.RejectEvent(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (ac *AdminController) ApproveCampaign(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := ac.admin.ApproveCampaign(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (ac *AdminController) RejectCampaign(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ac.admin.RejectCampaign(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (ac *AdminController) SuspendUser(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SuspendUserRequest
	if c.Request.ContentLength > 0 && !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ac.admin.SuspendUser(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (ac *AdminController) ActivateUser(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := ac.admin.ActivateUser(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (ac *AdminController) DeleteUser(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := ac.admin.DeleteUser(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	var q dto.UserListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := ac.admin.ListUsers(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (ac *AdminController) PendingEvents(c *gin.Context) {
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := ac.admin.PendingEvents(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (ac *AdminController) PendingCampaigns(c *gin.Context) {
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := ac.admin.PendingCampaigns(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (ac *AdminController) DeleteContent(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.DeleteContentRequest
	if c.Request.ContentLength > 0 && !middleware.BindJSON(c, &req) {
		return
	}
	if err := ac.admin.DeleteContent(c.Request.Context(), middleware.Caller(c), c.Param("type"), id, req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Content deleted")
}

func (ac *AdminController) ModerationLog(c *gin.Context) {
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := ac.admin.ModerationLog(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}
