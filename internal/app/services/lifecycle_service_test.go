package services

import (
	"context"
	"testing"
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleSweeps(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	events := NewEventService(env.store, env.cfg, env.log)
	funding := NewFundingService(env.store, env.cfg, env.log)
	lifecycle := NewLifecycleService(env.store, env.cfg, env.log)

	org := env.user(t, "org")
	event := publishEvent(t, events, org, nil)
	campaign := openCampaign(t, funding, org, 1_000)

	res, err := lifecycle.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, LifecycleResult{}, res)

	env.clock.Advance(49 * time.Hour)
	res, err = lifecycle.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.EventsStarted)
	assert.Zero(t, res.EventsCompleted)

	_, err = events.Register(ctx, env.user(t, "late"), event.ID, dto.RegisterEventRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	env.clock.Advance(4 * time.Hour)
	res, err = lifecycle.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.EventsCompleted)

	stored, err := env.store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, stored.Status)

	env.clock.Advance(10 * 24 * time.Hour)
	res, err = lifecycle.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.CampaignsCompleted)

	view, err := funding.GetCampaign(ctx, nil, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignCompleted, view.Status)

	res, err = lifecycle.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, LifecycleResult{}, res)
}

func TestLifecycleSkipsUnpublishedEvents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	events := NewEventService(env.store, env.cfg, env.log)
	lifecycle := NewLifecycleService(env.store, env.cfg, env.log)

	pending := publishEvent(t, events, env.user(t, "org"), nil)
	env.clock.Advance(60 * time.Hour)

	res, err := lifecycle.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.EventsStarted)

	stored, err := env.store.Events().GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventPendingApproval, stored.Status)
}
