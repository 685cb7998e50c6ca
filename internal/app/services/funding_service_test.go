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

func openCampaign(t *testing.T, svc *FundingService, creator *appAuth.Caller, goal int64) *dto.CampaignView {
	t.Helper()
	c, err := svc.CreateCampaign(context.Background(), creator, dto.CreateCampaignRequest{
		Title:       "Library Fund",
		Description: "Books for the new library",
		Category:    models.CategoryInfrastructure,
		GoalAmount:  goal,
		EndDate:     baseTime.Add(10 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return c
}

func TestDeriveProgress(t *testing.T) {
	now := baseTime
	tests := []struct {
		name     string
		campaign models.Campaign
		pct      float64
		days     int
	}{
		{"half way", models.Campaign{GoalAmount: 1000, CurrentAmount: 500, EndDate: now.Add(36 * time.Hour)}, 50, 2},
		{"over goal is clamped", models.Campaign{GoalAmount: 100, CurrentAmount: 250, EndDate: now.Add(24 * time.Hour)}, 100, 1},
		{"zero goal", models.Campaign{GoalAmount: 0, CurrentAmount: 10, EndDate: now.Add(time.Hour)}, 0, 1},
		{"ended", models.Campaign{GoalAmount: 100, CurrentAmount: 10, EndDate: now.Add(-time.Hour)}, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DeriveProgress(&tt.campaign, now)
			assert.InDelta(t, tt.pct, p.Percentage, 0.0001)
			assert.Equal(t, tt.days, p.DaysLeft)
		})
	}
}

func TestCreateCampaign(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	svc := NewFundingService(env.store, env.cfg, env.log)
	creator := env.user(t, "creator")

	c := openCampaign(t, svc, creator, 1000)
	assert.Equal(t, models.CampaignPendingApproval, c.Status)
	assert.Equal(t, "USD", c.Currency)

	_, err := svc.CreateCampaign(ctx, creator, dto.CreateCampaignRequest{
		Title: "x", Category: models.CategoryOther, GoalAmount: 0, EndDate: baseTime.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	draft, err := svc.CreateCampaign(ctx, creator, dto.CreateCampaignRequest{
		Title: "Draft", Category: models.CategoryOther, GoalAmount: 10, EndDate: baseTime.Add(time.Hour), SaveAsDraft: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignDraft, draft.Status)

	_, err = svc.GetCampaign(ctx, env.user(t, "other"), draft.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	submitted, err := svc.SubmitCampaign(ctx, creator, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignPendingApproval, submitted.Status)
}

func TestDonationLedger(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewFundingService(env.store, env.cfg, env.log)
	ctx := context.Background()
	creator := env.user(t, "creator")
	donor := env.user(t, "donor")
	campaign := openCampaign(t, svc, creator, 1000)
	require.Equal(t, models.CampaignActive, campaign.Status)

	_, err := svc.CreateDonation(ctx, donor, campaign.ID, dto.CreateDonationRequest{Amount: 0})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	_, err = svc.CreateDonation(ctx, donor, uuid.New(), dto.CreateDonationRequest{Amount: 10})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	d, err := svc.CreateDonation(ctx, donor, campaign.ID, dto.CreateDonationRequest{Amount: 300})
	require.NoError(t, err)
	assert.Equal(t, models.DonationPending, d.Status)

	view, err := svc.GetCampaign(ctx, donor, campaign.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, view.CurrentAmount, "pending donations are not credited")
	assert.True(t, view.HasDonated)

	_, err = svc.VerifyDonation(ctx, donor, d.ID, dto.VerifyDonationRequest{Status: models.DonationVerified})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = svc.VerifyDonation(ctx, creator, d.ID, dto.VerifyDonationRequest{Status: models.DonationPending})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	verified, err := svc.VerifyDonation(ctx, creator, d.ID, dto.VerifyDonationRequest{Status: models.DonationVerified})
	require.NoError(t, err)
	assert.Equal(t, models.DonationVerified, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, creator.ID, *verified.VerifiedBy)

	_, err = svc.VerifyDonation(ctx, creator, d.ID, dto.VerifyDonationRequest{Status: models.DonationVerified})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	view, err = svc.GetCampaign(ctx, creator, campaign.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 300, view.CurrentAmount)
	assert.InDelta(t, 30.0, view.Progress.Percentage, 0.0001)
	assert.EqualValues(t, 1, view.DonorCount)
}

func TestConcurrentVerificationCreditsOnce(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewFundingService(env.store, env.cfg, env.log)
	ctx := context.Background()
	creator := env.user(t, "creator")
	campaign := openCampaign(t, svc, creator, 1000)
	d, err := svc.CreateDonation(ctx, env.user(t, "donor"), campaign.ID, dto.CreateDonationRequest{Amount: 250})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.VerifyDonation(ctx, creator, d.ID, dto.VerifyDonationRequest{Status: models.DonationVerified})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	}
	assert.Equal(t, 1, ok)

	stored, err := env.store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 250, stored.CurrentAmount)
}

func TestRejectedDonationIsNotCredited(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewFundingService(env.store, env.cfg, env.log)
	ctx := context.Background()
	creator := env.user(t, "creator")
	campaign := openCampaign(t, svc, creator, 1000)
	d, err := svc.CreateDonation(ctx, env.user(t, "donor"), campaign.ID, dto.CreateDonationRequest{Amount: 40})
	require.NoError(t, err)

	_, err = svc.VerifyDonation(ctx, creator, d.ID, dto.VerifyDonationRequest{Status: models.DonationRejected})
	require.NoError(t, err)
	_, err = svc.VerifyDonation(ctx, creator, d.ID, dto.VerifyDonationRequest{Status: models.DonationVerified})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	stored, err := env.store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stored.CurrentAmount)
}

func TestDonationsClosedAfterEndDate(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewFundingService(env.store, env.cfg, env.log)
	campaign := openCampaign(t, svc, env.user(t, "creator"), 1000)

	env.clock.Advance(11 * 24 * time.Hour)
	_, err := svc.CreateDonation(context.Background(), env.user(t, "donor"), campaign.ID, dto.CreateDonationRequest{Amount: 10})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestDonationListings(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewFundingService(env.store, env.cfg, env.log)
	ctx := context.Background()
	creator := env.user(t, "creator")
	named := env.user(t, "named")
	hidden := env.user(t, "hidden")
	campaign := openCampaign(t, svc, creator, 1000)

	d1, err := svc.CreateDonation(ctx, named, campaign.ID, dto.CreateDonationRequest{Amount: 10})
	require.NoError(t, err)
	d2, err := svc.CreateDonation(ctx, hidden, campaign.ID, dto.CreateDonationRequest{Amount: 20, IsAnonymous: true})
	require.NoError(t, err)
	_, err = svc.CreateDonation(ctx, named, campaign.ID, dto.CreateDonationRequest{Amount: 30})
	require.NoError(t, err)
	for _, id := range []uuid.UUID{d1.ID, d2.ID} {
		_, err := svc.VerifyDonation(ctx, creator, id, dto.VerifyDonationRequest{Status: models.DonationVerified})
		require.NoError(t, err)
	}

	public, err := svc.PublicDonations(ctx, campaign.ID, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, public.Items, 1)
	assert.Equal(t, d1.ID, public.Items[0].ID)
	assert.Equal(t, "named", public.Items[0].Donor.FullName)

	all, err := svc.CampaignDonations(ctx, creator, campaign.ID, dto.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Pagination.TotalItems)

	_, err = svc.CampaignDonations(ctx, named, campaign.ID, dto.PageQuery{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	mine, err := svc.MyDonations(ctx, named, dto.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Pagination.TotalItems)
}

func TestCancelCampaign(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewFundingService(env.store, env.cfg, env.log)
	ctx := context.Background()
	creator := env.user(t, "creator")
	campaign := openCampaign(t, svc, creator, 1000)

	assert.ErrorIs(t, svc.CancelCampaign(ctx, env.user(t, "other"), campaign.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, svc.CancelCampaign(ctx, creator, campaign.ID))
	assert.ErrorIs(t, svc.CancelCampaign(ctx, creator, campaign.ID), apperrors.ErrInvalidState)

	_, err := svc.CreateDonation(ctx, env.user(t, "donor"), campaign.ID, dto.CreateDonationRequest{Amount: 5})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	listed, err := svc.ListCampaigns(ctx, nil, dto.CampaignListQuery{})
	require.NoError(t, err)
	assert.Empty(t, listed.Items)
}
