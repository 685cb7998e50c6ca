package services

import (
	"context"
	"testing"
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveAndRejectEvents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	events := NewEventService(env.store, env.cfg, env.log)
	admin := NewAdminService(env.store, env.cfg, env.log)
	root := env.admin(t, "root")
	org := env.user(t, "org")

	first := publishEvent(t, events, org, nil)
	second := publishEvent(t, events, org, nil)

	_, err := admin.ApproveEvent(ctx, org, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = admin.ApproveEvent(ctx, root, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	approved, err := admin.ApproveEvent(ctx, root, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventPublished, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, root.ID, *approved.ApprovedBy)

	_, err = admin.ApproveEvent(ctx, root, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = admin.RejectEvent(ctx, root, second.ID, dto.RejectRequest{Reason: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	rejected, err := admin.RejectEvent(ctx, root, second.ID, dto.RejectRequest{Reason: " Duplicate listing "})
	require.NoError(t, err)
	assert.Equal(t, models.EventRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Duplicate listing", *rejected.RejectionReason)

	log, err := admin.ModerationLog(ctx, root, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, log.Items, 2)
	assert.Equal(t, models.ActionRejectEvent, log.Items[0].Action)
	assert.Equal(t, models.ActionApproveEvent, log.Items[1].Action)
	assert.Len(t, log.Items[0].ID, 26)
	assert.Equal(t, root.ID, log.Items[0].AdminID)
}

func TestApproveAndRejectCampaigns(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	funding := NewFundingService(env.store, env.cfg, env.log)
	admin := NewAdminService(env.store, env.cfg, env.log)
	root := env.admin(t, "root")
	creator := env.user(t, "creator")

	pending := openCampaign(t, funding, creator, 10_000)
	require.Equal(t, models.CampaignPendingApproval, pending.Status)

	_, err := funding.CreateDonation(ctx, env.user(t, "donor"), pending.ID, dto.CreateDonationRequest{Amount: 100})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	active, err := admin.ApproveCampaign(ctx, root, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignActive, active.Status)

	other := openCampaign(t, funding, creator, 5_000)
	rejected, err := admin.RejectCampaign(ctx, root, other.ID, dto.RejectRequest{Reason: "Missing details"})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignRejected, rejected.Status)

	_, err = admin.RejectCampaign(ctx, root, other.ID, dto.RejectRequest{Reason: "again"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestUserStatusChanges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	admin := NewAdminService(env.store, env.cfg, env.log)
	root := env.admin(t, "root")
	peer := env.admin(t, "peer")
	alice := env.user(t, "alice")

	_, err := admin.SuspendUser(ctx, root, root.ID, dto.SuspendUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = admin.SuspendUser(ctx, root, peer.ID, dto.SuspendUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = admin.SuspendUser(ctx, root, uuid.New(), dto.SuspendUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	_, err = admin.SuspendUser(ctx, alice, root.ID, dto.SuspendUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	suspended, err := admin.SuspendUser(ctx, root, alice.ID, dto.SuspendUserRequest{Reason: strPtr("spam")})
	require.NoError(t, err)
	assert.Equal(t, models.UserSuspended, suspended.Status)

	_, err = admin.SuspendUser(ctx, root, alice.ID, dto.SuspendUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	active, err := admin.ActivateUser(ctx, root, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, active.Status)

	deleted, err := admin.DeleteUser(ctx, root, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserInactive, deleted.Status)

	stored, err := env.store.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserInactive, stored.Status)

	log, err := admin.ModerationLog(ctx, root, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, log.Items, 3)
	assert.Equal(t, models.ActionDeleteUser, log.Items[0].Action)
	assert.Equal(t, models.ActionSuspendUser, log.Items[2].Action)
	require.NotNil(t, log.Items[2].Reason)
	assert.Equal(t, "spam", *log.Items[2].Reason)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	admin := NewAdminService(env.store, env.cfg, env.log)
	events := NewEventService(env.store, env.cfg, env.log)
	funding := NewFundingService(env.store, env.cfg, env.log)

	root := env.admin(t, "root")
	env.clock.Advance(-30 * 24 * time.Hour)
	old := env.user(t, "old")
	env.clock.Advance(30 * 24 * time.Hour)
	org := env.user(t, "org")

	_, err := admin.SuspendUser(ctx, root, old.ID, dto.SuspendUserRequest{})
	require.NoError(t, err)
	publishEvent(t, events, org, nil)
	openCampaign(t, funding, org, 1_000)

	_, err = admin.Dashboard(ctx, org)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	dash, err := admin.Dashboard(ctx, root)
	require.NoError(t, err)
	assert.EqualValues(t, 3, dash.Users.Total)
	assert.EqualValues(t, 2, dash.Users.Active)
	assert.EqualValues(t, 1, dash.Users.Suspended)
	assert.EqualValues(t, 2, dash.Users.NewLast7d)
	assert.EqualValues(t, 1, dash.Events.Pending)
	assert.EqualValues(t, 1, dash.Campaigns.Pending)
	assert.Len(t, dash.RecentUsers, 3)
	require.Len(t, dash.PendingEvents, 1)
	assert.Equal(t, "org", dash.PendingEvents[0].Organizer.FullName)
	assert.Len(t, dash.PendingCampaigns, 1)

	queue, err := admin.PendingEvents(ctx, root, dto.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, queue.Pagination.TotalItems)
}

func TestDeleteContent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	admin := NewAdminService(env.store, env.cfg, env.log)
	jobs := NewJobService(env.store, env.cfg, env.log)
	root := env.admin(t, "root")

	job := postJob(t, jobs, env.user(t, "poster"))

	err := admin.DeleteContent(ctx, root, "widget", job.ID, dto.DeleteContentRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	err = admin.DeleteContent(ctx, root, ContentPost, job.ID, dto.DeleteContentRequest{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, admin.DeleteContent(ctx, root, "Job", job.ID, dto.DeleteContentRequest{Reason: strPtr("scam")}))
	_, err = jobs.GetJob(ctx, nil, job.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	log, err := admin.ModerationLog(ctx, root, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, log.Items, 1)
	assert.Equal(t, ContentJob, log.Items[0].TargetType)
	assert.Equal(t, job.ID, log.Items[0].TargetID)
}
