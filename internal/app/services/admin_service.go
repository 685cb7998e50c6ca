package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Content types accepted by DeleteContent.
const (
	ContentPost     = "post"
	ContentComment  = "comment"
	ContentEvent    = "event"
	ContentJob      = "job"
	ContentCampaign = "campaign"
)

const dashboardListSize = 5

// AdminService holds the SUPER_ADMIN moderation workflow. Every decision is
// appended to the moderation log in the same transaction.
type AdminService struct {
	base
	events  *EventService
	funding *FundingService
}

// NewAdminService creates a new AdminService
func NewAdminService(store repositories.Store, cfg Config, logger zerolog.Logger) *AdminService {
	return &AdminService{
		base:    newBase(store, cfg, logger, "admin"),
		events:  NewEventService(store, cfg, logger),
		funding: NewFundingService(store, cfg, logger),
	}
}

func (s *AdminService) audit(ctx context.Context, tx repositories.Store, admin *appAuth.Caller, action models.ModerationActionType, targetType string, targetID uuid.UUID, reason *string) error {
	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.DefaultEntropy())
	if err != nil {
		return fmt.Errorf("generate audit id: %w", err)
	}
	entry := &models.ModerationAction{
		ID:         id.String(),
		AdminID:    admin.ID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		CreatedAt:  now,
	}
	if err := tx.ModerationLog().Append(ctx, entry); err != nil {
		return fmt.Errorf("append moderation log: %w", err)
	}
	return nil
}

func (s *AdminService) record(action models.ModerationActionType, targetID uuid.UUID, admin *appAuth.Caller) {
	metrics.ModerationActionsTotal.WithLabelValues(string(action)).Inc()
	s.logger.Info().
		Str("action", string(action)).
		Str("targetID", targetID.String()).
		Str("adminID", admin.ID.String()).
		Msg("Moderation action applied")
}

func requireReason(reason string) (*string, error) {
	r := strings.TrimSpace(reason)
	if r == "" {
		return nil, apperrors.NewValidationError("reason", "a rejection reason is required")
	}
	return &r, nil
}

// ApproveEvent publishes an event waiting for approval.
func (s *AdminService) ApproveEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID) (*models.Event, error) {
	return s.decideEvent(ctx, caller, eventID, models.EventPublished, nil)
}

// RejectEvent rejects an event waiting for approval. A reason is required.
func (s *AdminService) RejectEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, req dto.RejectRequest) (*models.Event, error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	reason, err := requireReason(req.Reason)
	if err != nil {
		return nil, err
	}
	return s.decideEvent(ctx, caller, eventID, models.EventRejected, reason)
}

func (s *AdminService) decideEvent(ctx context.Context, caller *appAuth.Caller, eventID uuid.UUID, to models.EventStatus, reason *string) (_ *models.Event, err error) {
	ctx, span := s.startSpan(ctx, "admin.decideEvent", idAttr("event.id", eventID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	action := models.ActionApproveEvent
	if to == models.EventRejected {
		action = models.ActionRejectEvent
	}

	var event *models.Event
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		e, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		if e.Status != models.EventPendingApproval || !e.Status.CanTransitionTo(to) {
			return apperrors.NewStateError("event is not awaiting approval").
				WithDetails(map[string]interface{}{"eventId": eventID.String(), "status": string(e.Status)})
		}
		now := s.now()
		e.Status = to
		e.UpdatedAt = now
		if to == models.EventRejected {
			e.RejectedBy, e.RejectedAt, e.RejectionReason = &caller.ID, &now, reason
		} else {
			e.ApprovedBy, e.ApprovedAt = &caller.ID, &now
		}
		if err := tx.Events().Update(ctx, e); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		event = e
		return s.audit(ctx, tx, caller, action, ContentEvent, eventID, reason)
	})
	if err != nil {
		return nil, wrap(err, "moderate event")
	}
	s.record(action, eventID, caller)
	return event, nil
}

// ApproveCampaign activates a campaign waiting for approval.
func (s *AdminService) ApproveCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) (*models.Campaign, error) {
	return s.decideCampaign(ctx, caller, campaignID, models.CampaignActive, nil)
}

// RejectCampaign rejects a campaign waiting for approval. A reason is required.
func (s *AdminService) RejectCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, req dto.RejectRequest) (*models.Campaign, error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	reason, err := requireReason(req.Reason)
	if err != nil {
		return nil, err
	}
	return s.decideCampaign(ctx, caller, campaignID, models.CampaignRejected, reason)
}

func (s *AdminService) decideCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, to models.CampaignStatus, reason *string) (_ *models.Campaign, err error) {
	ctx, span := s.startSpan(ctx, "admin.decideCampaign", idAttr("campaign.id", campaignID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	action := models.ActionApproveCampaign
	if to == models.CampaignRejected {
		action = models.ActionRejectCampaign
	}

	var campaign *models.Campaign
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		c, err := tx.Campaigns().GetByIDForUpdate(ctx, campaignID)
		if err != nil {
			return notFound(err, "campaign", campaignID)
		}
		if c.Status != models.CampaignPendingApproval || !c.Status.CanTransitionTo(to) {
			return apperrors.NewStateError("campaign is not awaiting approval").
				WithDetails(map[string]interface{}{"campaignId": campaignID.String(), "status": string(c.Status)})
		}
		now := s.now()
		c.Status = to
		c.UpdatedAt = now
		if to == models.CampaignRejected {
			c.RejectedBy, c.RejectedAt, c.RejectionReason = &caller.ID, &now, reason
		} else {
			c.ApprovedBy, c.ApprovedAt = &caller.ID, &now
		}
		if err := tx.Campaigns().Update(ctx, c); err != nil {
			return fmt.Errorf("update campaign: %w", err)
		}
		campaign = c
		return s.audit(ctx, tx, caller, action, ContentCampaign, campaignID, reason)
	})
	if err != nil {
		return nil, wrap(err, "moderate campaign")
	}
	s.record(action, campaignID, caller)
	return campaign, nil
}

// SuspendUser blocks an alumni account.
func (s *AdminService) SuspendUser(ctx context.Context, caller *appAuth.Caller, userID uuid.UUID, req dto.SuspendUserRequest) (*dto.UserView, error) {
	return s.setUserStatus(ctx, caller, userID, models.UserSuspended, models.ActionSuspendUser, cleanText(req.Reason))
}

// ActivateUser restores a suspended, inactive or unverified account.
func (s *AdminService) ActivateUser(ctx context.Context, caller *appAuth.Caller, userID uuid.UUID) (*dto.UserView, error) {
	return s.setUserStatus(ctx, caller, userID, models.UserActive, models.ActionActivateUser, nil)
}

// DeleteUser deactivates an account. Rows are kept so content stays attributed.
func (s *AdminService) DeleteUser(ctx context.Context, caller *appAuth.Caller, userID uuid.UUID) (*dto.UserView, error) {
	return s.setUserStatus(ctx, caller, userID, models.UserInactive, models.ActionDeleteUser, nil)
}

func (s *AdminService) setUserStatus(ctx context.Context, caller *appAuth.Caller, userID uuid.UUID, to models.UserStatus, action models.ModerationActionType, reason *string) (_ *dto.UserView, err error) {
	ctx, span := s.startSpan(ctx, "admin.setUserStatus", idAttr("user.id", userID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	restricting := to != models.UserActive
	if restricting && caller.ID == userID {
		return nil, apperrors.NewAuthorizationError("administrators cannot restrict their own account")
	}

	var user *models.User
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return notFound(err, "user", userID)
		}
		if restricting && u.Role == models.RoleSuperAdmin {
			return apperrors.NewAuthorizationError("super admin accounts cannot be restricted").WithDetail("userId", userID.String())
		}
		if !u.Status.CanTransitionTo(to) {
			return apperrors.NewStateError(fmt.Sprintf("cannot move user from %s to %s", u.Status, to)).
				WithDetails(map[string]interface{}{"userId": userID.String(), "status": string(u.Status)})
		}
		now := s.now()
		if err := tx.Users().UpdateStatus(ctx, userID, to, now); err != nil {
			return fmt.Errorf("update user status: %w", err)
		}
		u.Status = to
		u.UpdatedAt = now
		user = u
		return s.audit(ctx, tx, caller, action, "user", userID, reason)
	})
	if err != nil {
		return nil, wrap(err, "update user status")
	}
	s.record(action, userID, caller)
	return dto.NewUserView(user), nil
}

// Dashboard gathers the admin overview, running the independent reads concurrently.
func (s *AdminService) Dashboard(ctx context.Context, caller *appAuth.Caller) (*dto.DashboardView, error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	var view dto.DashboardView
	active, suspended := models.UserActive, models.UserSuspended
	weekAgo := s.now().Add(-7 * 24 * time.Hour)
	pendingEvents := repositories.EventFilter{Statuses: []models.EventStatus{models.EventPendingApproval}}
	pendingCampaigns := repositories.CampaignFilter{Statuses: []models.CampaignStatus{models.CampaignPendingApproval}}
	top := repositories.Page{Limit: dashboardListSize}

	var recentUsers []*models.User
	var events []*models.Event
	var campaigns []*models.Campaign

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			*dst = n
			return err
		})
	}
	users := s.store.Users()
	count(&view.Users.Total, func(ctx context.Context) (int64, error) { return users.Count(ctx, repositories.UserFilter{}) })
	count(&view.Users.Active, func(ctx context.Context) (int64, error) {
		return users.Count(ctx, repositories.UserFilter{Status: &active})
	})
	count(&view.Users.Suspended, func(ctx context.Context) (int64, error) {
		return users.Count(ctx, repositories.UserFilter{Status: &suspended})
	})
	count(&view.Users.NewLast7d, func(ctx context.Context) (int64, error) {
		return users.Count(ctx, repositories.UserFilter{CreatedAfter: &weekAgo})
	})
	count(&view.Events.Total, func(ctx context.Context) (int64, error) {
		return s.store.Events().Count(ctx, repositories.EventFilter{})
	})
	count(&view.Events.Pending, func(ctx context.Context) (int64, error) { return s.store.Events().Count(ctx, pendingEvents) })
	count(&view.Campaigns.Total, func(ctx context.Context) (int64, error) {
		return s.store.Campaigns().Count(ctx, repositories.CampaignFilter{})
	})
	count(&view.Campaigns.Pending, func(ctx context.Context) (int64, error) {
		return s.store.Campaigns().Count(ctx, pendingCampaigns)
	})
	count(&view.Jobs, func(ctx context.Context) (int64, error) { return s.store.Jobs().Count(ctx, repositories.JobFilter{}) })
	count(&view.Posts, func(ctx context.Context) (int64, error) { return s.store.Posts().Count(ctx, repositories.PostFilter{}) })
	g.Go(func() (err error) {
		recentUsers, _, err = users.List(gctx, repositories.UserFilter{}, top)
		return err
	})
	g.Go(func() (err error) {
		events, _, err = s.store.Events().List(gctx, pendingEvents, top)
		return err
	})
	g.Go(func() (err error) {
		campaigns, _, err = s.store.Campaigns().List(gctx, pendingCampaigns, top)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	view.RecentUsers = make([]*dto.UserView, len(recentUsers))
	for i, u := range recentUsers {
		view.RecentUsers[i] = dto.NewUserView(u)
	}
	var err error
	if view.PendingEvents, err = s.events.views(ctx, s.store, caller, events); err != nil {
		return nil, err
	}
	if view.PendingCampaigns, err = s.funding.views(ctx, caller, campaigns, false); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListUsers lists accounts, newest first.
func (s *AdminService) ListUsers(ctx context.Context, caller *appAuth.Caller, q dto.UserListQuery) (*dto.PaginatedResponse[*dto.UserView], error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	filter := repositories.UserFilter{Search: q.Search}
	if q.Role != "" {
		role := models.Role(q.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("role", "unknown role")
		}
		filter.Role = &role
	}
	if q.Status != "" {
		status := models.UserStatus(q.Status)
		filter.Status = &status
	}
	page, pageNum, size := pageOf(q.PageQuery)
	users, total, err := s.store.Users().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	views := make([]*dto.UserView, len(users))
	for i, u := range users {
		views[i] = dto.NewUserView(u)
	}
	return paginated(views, total, pageNum, size), nil
}

// PendingEvents lists the event approval queue.
func (s *AdminService) PendingEvents(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.EventView], error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.events.ListEvents(ctx, caller, dto.EventListQuery{PageQuery: q, Status: string(models.EventPendingApproval)})
}

// PendingCampaigns lists the campaign approval queue.
func (s *AdminService) PendingCampaigns(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.CampaignView], error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.funding.ListCampaigns(ctx, caller, dto.CampaignListQuery{PageQuery: q, Status: string(models.CampaignPendingApproval)})
}

// DeleteContent removes any user content by type and id.
func (s *AdminService) DeleteContent(ctx context.Context, caller *appAuth.Caller, contentType string, id uuid.UUID, req dto.DeleteContentRequest) (err error) {
	ctx, span := s.startSpan(ctx, "admin.DeleteContent", idAttr("content.id", id))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAdmin(caller); err != nil {
		return err
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		var del func(context.Context, uuid.UUID) error
		switch contentType {
		case ContentPost:
			del = tx.Posts().Delete
		case ContentComment:
			del = tx.Comments().Delete
		case ContentEvent:
			del = tx.Events().Delete
		case ContentJob:
			del = tx.Jobs().Delete
		case ContentCampaign:
			del = tx.Campaigns().Delete
		default:
			return apperrors.NewValidationError("type", "unknown content type").WithDetail("type", contentType)
		}
		if err := del(ctx, id); err != nil {
			return notFound(err, contentType, id)
		}
		return s.audit(ctx, tx, caller, models.ActionDeleteContent, contentType, id, cleanText(req.Reason))
	})
	if err != nil {
		return wrap(err, "delete content")
	}
	s.record(models.ActionDeleteContent, id, caller)
	return nil
}

// ModerationLog lists audit entries, newest first.
func (s *AdminService) ModerationLog(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*models.ModerationAction], error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q)
	entries, total, err := s.store.ModerationLog().List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list moderation log: %w", err)
	}
	return paginated(entries, total, pageNum, size), nil
}
