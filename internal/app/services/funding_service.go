package services

import (
	"context"
	"fmt"
	"time"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/helpers"
	"github.com/alumniconnect/platform/internal/pkg/metrics"
	"github.com/alumniconnect/platform/internal/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FundingService runs fundraising campaigns and the donation ledger.
// A campaign's current amount only ever grows through verified donations.
type FundingService struct {
	base
}

// NewFundingService creates a new FundingService
func NewFundingService(store repositories.Store, cfg Config, logger zerolog.Logger) *FundingService {
	return &FundingService{base: newBase(store, cfg, logger, "funding")}
}

// DeriveProgress computes a campaign's progress at now.
func DeriveProgress(c *models.Campaign, now time.Time) dto.Progress {
	var pct float64
	if c.GoalAmount > 0 {
		pct = float64(c.CurrentAmount) / float64(c.GoalAmount) * 100
		if pct > 100 {
			pct = 100
		}
	}
	return dto.Progress{Percentage: pct, DaysLeft: helpers.DaysUntil(c.EndDate, now)}
}

func (s *FundingService) submittedStatus() models.CampaignStatus {
	if s.cfg.RequireApproval {
		return models.CampaignPendingApproval
	}
	return models.CampaignActive
}

// CreateCampaign opens a fundraiser owned by the caller.
func (s *FundingService) CreateCampaign(ctx context.Context, caller *appAuth.Caller, req dto.CreateCampaignRequest) (_ *dto.CampaignView, err error) {
	ctx, span := s.startSpan(ctx, "funding.CreateCampaign")
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	title := sanitize.Text(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	if !req.Category.Valid() {
		return nil, apperrors.NewValidationError("category", "unknown campaign category")
	}
	if req.GoalAmount <= 0 {
		return nil, apperrors.NewValidationError("goalAmount", "goal amount must be positive")
	}
	now := s.now()
	start := now
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	if !req.EndDate.After(start) {
		return nil, apperrors.NewValidationError("endDate", "end date must be after the start date")
	}

	status := s.submittedStatus()
	if req.SaveAsDraft {
		status = models.CampaignDraft
	}
	campaign := &models.Campaign{
		ID:          uuid.New(),
		CreatorID:   caller.ID,
		Title:       title,
		Description: sanitize.HTML(req.Description),
		Category:    req.Category,
		CoverImage:  trimOptional(req.CoverImage),
		GoalAmount:  req.GoalAmount,
		Currency:    currencyOr(req.Currency),
		StartDate:   start,
		EndDate:     req.EndDate.UTC(),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Campaigns().Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	s.logger.Info().
		Str("campaignID", campaign.ID.String()).
		Str("creatorID", caller.ID.String()).
		Str("status", string(status)).
		Msg("Campaign created")
	return s.view(ctx, caller, campaign)
}

// SubmitCampaign moves the creator's DRAFT campaign forward.
func (s *FundingService) SubmitCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) (*dto.CampaignView, error) {
	campaign, err := s.mutate(ctx, caller, campaignID, func(c *models.Campaign) error {
		next := s.submittedStatus()
		if c.Status != models.CampaignDraft || !c.Status.CanTransitionTo(next) {
			return apperrors.NewStateError("only draft campaigns can be submitted").WithDetail("status", string(c.Status))
		}
		c.Status = next
		return nil
	})
	if err != nil {
		return nil, wrap(err, "submit campaign")
	}
	return s.view(ctx, caller, campaign)
}

// UpdateCampaign edits a campaign that is still open.
func (s *FundingService) UpdateCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, req dto.UpdateCampaignRequest) (*dto.CampaignView, error) {
	campaign, err := s.mutate(ctx, caller, campaignID, func(c *models.Campaign) error {
		switch c.Status {
		case models.CampaignCompleted, models.CampaignRejected, models.CampaignCancelled:
			return apperrors.NewStateError("finished campaigns cannot be edited").WithDetail("status", string(c.Status))
		}
		if req.Title != nil {
			title := sanitize.Text(*req.Title)
			if title == "" {
				return apperrors.NewValidationError("title", "title must not be empty")
			}
			c.Title = title
		}
		if req.Description != nil {
			c.Description = sanitize.HTML(*req.Description)
		}
		if req.Category != nil {
			if !req.Category.Valid() {
				return apperrors.NewValidationError("category", "unknown campaign category")
			}
			c.Category = *req.Category
		}
		if req.CoverImage != nil {
			c.CoverImage = trimOptional(req.CoverImage)
		}
		if req.GoalAmount != nil {
			if *req.GoalAmount <= 0 {
				return apperrors.NewValidationError("goalAmount", "goal amount must be positive")
			}
			c.GoalAmount = *req.GoalAmount
		}
		if req.EndDate != nil {
			if !req.EndDate.After(c.StartDate) {
				return apperrors.NewValidationError("endDate", "end date must be after the start date")
			}
			c.EndDate = req.EndDate.UTC()
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update campaign")
	}
	return s.view(ctx, caller, campaign)
}

// CancelCampaign stops a campaign. Pending donations stay pending.
func (s *FundingService) CancelCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) error {
	_, err := s.mutate(ctx, caller, campaignID, func(c *models.Campaign) error {
		if !c.Status.CanTransitionTo(models.CampaignCancelled) {
			return apperrors.NewStateError("campaign cannot be cancelled in status " + string(c.Status))
		}
		c.Status = models.CampaignCancelled
		return nil
	})
	if err != nil {
		return wrap(err, "cancel campaign")
	}
	s.logger.Info().Str("campaignID", campaignID.String()).Msg("Campaign cancelled")
	return nil
}

// mutate loads the campaign under lock, checks the caller created it (or is
// an admin), applies fn and writes it back.
func (s *FundingService) mutate(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, fn func(*models.Campaign) error) (*models.Campaign, error) {
	var campaign *models.Campaign
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		c, err := tx.Campaigns().GetByIDForUpdate(ctx, campaignID)
		if err != nil {
			return notFound(err, "campaign", campaignID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, c.CreatorID, "campaign"); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		c.UpdatedAt = s.now()
		if err := tx.Campaigns().Update(ctx, c); err != nil {
			return fmt.Errorf("update campaign: %w", err)
		}
		campaign = c
		return nil
	})
	return campaign, err
}

// GetCampaign returns a campaign with its progress and counts the view.
// Unpublished campaigns are only visible to their creator and admins.
func (s *FundingService) GetCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) (*dto.CampaignView, error) {
	c, err := s.store.Campaigns().GetByID(ctx, campaignID)
	if err != nil {
		return nil, notFound(err, "campaign", campaignID)
	}
	if !c.Status.Public() && c.Status != models.CampaignCancelled && !caller.Is(c.CreatorID) && !caller.IsAdmin() {
		return nil, apperrors.NewNotFoundError("campaign", campaignID)
	}
	s.bestEffort(ctx, "campaign views", func(ctx context.Context) error {
		if err := s.store.Campaigns().IncrementViews(ctx, campaignID); err != nil {
			return err
		}
		c.ViewCount++
		return nil
	})
	return s.view(ctx, caller, c)
}

func (s *FundingService) view(ctx context.Context, caller *appAuth.Caller, c *models.Campaign) (*dto.CampaignView, error) {
	views, err := s.views(ctx, caller, []*models.Campaign{c}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views decorates campaigns. detail adds the donor count and the caller's
// own donation.
func (s *FundingService) views(ctx context.Context, caller *appAuth.Caller, campaigns []*models.Campaign, detail bool) ([]*dto.CampaignView, error) {
	ids := make([]uuid.UUID, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.CreatorID
	}
	creators, err := summaries(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	verified := []models.DonationStatus{models.DonationVerified}
	out := make([]*dto.CampaignView, len(campaigns))
	for i, c := range campaigns {
		v := &dto.CampaignView{Campaign: *c, Creator: creators[c.CreatorID], Progress: DeriveProgress(c, now)}
		if detail {
			_, donors, err := s.store.Donations().List(ctx, repositories.DonationFilter{CampaignID: &c.ID, Statuses: verified}, repositories.Page{Limit: 1})
			if err != nil {
				return nil, fmt.Errorf("count donors: %w", err)
			}
			v.DonorCount = donors
			if caller != nil {
				mine, _, err := s.store.Donations().List(ctx, repositories.DonationFilter{CampaignID: &c.ID, DonorID: &caller.ID}, repositories.Page{Limit: 1})
				if err != nil {
					return nil, fmt.Errorf("load donation: %w", err)
				}
				if len(mine) > 0 {
					v.HasDonated = true
					v.MyDonation = mine[0]
				}
			}
		}
		out[i] = v
	}
	return out, nil
}

// ListCampaigns lists ACTIVE campaigns unless a status is asked for.
func (s *FundingService) ListCampaigns(ctx context.Context, caller *appAuth.Caller, q dto.CampaignListQuery) (*dto.PaginatedResponse[*dto.CampaignView], error) {
	filter := repositories.CampaignFilter{Search: q.Search}
	status := models.CampaignActive
	if q.Status != "" {
		status = models.CampaignStatus(q.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("status", "unknown campaign status")
		}
	}
	filter.Statuses = []models.CampaignStatus{status}
	if !status.Public() && status != models.CampaignCancelled && !caller.IsAdmin() {
		if err := appAuth.RequireAuthenticated(caller); err != nil {
			return nil, err
		}
		filter.CreatorID = &caller.ID
	}
	if q.Category != "" {
		cat := models.CampaignCategory(q.Category)
		if !cat.Valid() {
			return nil, apperrors.NewValidationError("category", "unknown campaign category")
		}
		filter.Category = &cat
	}

	page, pageNum, size := pageOf(q.PageQuery)
	campaigns, total, err := s.store.Campaigns().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	views, err := s.views(ctx, caller, campaigns, false)
	if err != nil {
		return nil, err
	}
	return paginated(views, total, pageNum, size), nil
}

// CreateDonation records a PENDING pledge. The campaign total is untouched
// until the creator verifies it.
func (s *FundingService) CreateDonation(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, req dto.CreateDonationRequest) (_ *models.Donation, err error) {
	ctx, span := s.startSpan(ctx, "funding.CreateDonation", idAttr("campaign.id", campaignID))
	defer func() {
		metrics.DonationsTotal.WithLabelValues("create", apperrors.Kind(err)).Inc()
		endSpan(span, err)
	}()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	var donation *models.Donation
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		c, err := tx.Campaigns().GetByID(ctx, campaignID)
		if err != nil {
			return notFound(err, "campaign", campaignID)
		}
		now := s.now()
		if !c.AcceptingDonations(now) {
			return apperrors.NewStateError("campaign is not accepting donations").
				WithDetails(map[string]interface{}{"campaignId": campaignID.String(), "status": string(c.Status)})
		}
		if req.Amount <= 0 {
			return apperrors.NewValidationError("amount", "amount must be positive")
		}
		d := &models.Donation{
			ID:           uuid.New(),
			CampaignID:   campaignID,
			DonorID:      caller.ID,
			Amount:       req.Amount,
			Message:      cleanText(req.Message),
			IsAnonymous:  req.IsAnonymous,
			PaymentProof: trimOptional(req.PaymentProof),
			Status:       models.DonationPending,
			DonatedAt:    now,
		}
		if err := tx.Donations().Create(ctx, d); err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		donation = d
		return nil
	})
	if err != nil {
		s.logOutcome(err, "Donation rejected", map[string]interface{}{"campaignID": campaignID.String(), "userID": caller.ID.String()})
		return nil, wrap(err, "create donation")
	}
	s.logger.Info().
		Str("donationID", donation.ID.String()).
		Str("campaignID", campaignID.String()).
		Int64("amount", donation.Amount).
		Msg("Donation pledged")
	return donation, nil
}

// VerifyDonation records the creator's decision on a PENDING donation. A
// verified amount is credited to the campaign exactly once, however many
// times the decision is submitted.
func (s *FundingService) VerifyDonation(ctx context.Context, caller *appAuth.Caller, donationID uuid.UUID, req dto.VerifyDonationRequest) (_ *models.Donation, err error) {
	ctx, span := s.startSpan(ctx, "funding.VerifyDonation", idAttr("donation.id", donationID))
	action := "verify"
	if req.Status == models.DonationRejected {
		action = "reject"
	}
	defer func() {
		metrics.DonationsTotal.WithLabelValues(action, apperrors.Kind(err)).Inc()
		endSpan(span, err)
	}()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	var donation *models.Donation
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		d, err := tx.Donations().GetByID(ctx, donationID)
		if err != nil {
			return notFound(err, "donation", donationID)
		}
		c, err := tx.Campaigns().GetByIDForUpdate(ctx, d.CampaignID)
		if err != nil {
			return notFound(err, "campaign", d.CampaignID)
		}
		if err := appAuth.RequireOwner(caller, c.CreatorID, "campaign"); err != nil {
			return err
		}
		if !req.Status.IsDecision() {
			return apperrors.NewValidationError("status", "decision must be VERIFIED or REJECTED")
		}
		if d.Status != models.DonationPending {
			return apperrors.NewStateError("donation has already been decided").
				WithDetails(map[string]interface{}{"donationId": donationID.String(), "status": string(d.Status)})
		}

		now := s.now()
		decided, err := tx.Donations().Decide(ctx, donationID, repositories.DonationDecision{
			Status:    req.Status,
			DecidedBy: caller.ID,
			DecidedAt: now,
		})
		if err != nil {
			return fmt.Errorf("decide donation: %w", err)
		}
		if !decided {
			return apperrors.NewStateError("donation has already been decided").WithDetail("donationId", donationID.String())
		}
		if req.Status == models.DonationVerified {
			if err := tx.Campaigns().AddToCurrentAmount(ctx, c.ID, d.Amount); err != nil {
				return fmt.Errorf("credit campaign: %w", err)
			}
		}
		d.Status = req.Status
		d.VerifiedBy = &caller.ID
		d.VerifiedAt = &now
		donation = d
		return nil
	})
	if err != nil {
		s.logOutcome(err, "Donation decision rejected", map[string]interface{}{"donationID": donationID.String()})
		return nil, wrap(err, "verify donation")
	}

	if donation.Status == models.DonationVerified {
		metrics.VerifiedAmountTotal.Add(float64(donation.Amount))
	}
	s.logger.Info().
		Str("donationID", donationID.String()).
		Str("status", string(donation.Status)).
		Int64("amount", donation.Amount).
		Msg("Donation decided")
	return donation, nil
}

func (s *FundingService) donationViews(ctx context.Context, donations []*models.Donation, hideAnonymous bool) ([]*dto.DonationView, error) {
	ids := make([]uuid.UUID, 0, len(donations))
	for _, d := range donations {
		ids = append(ids, d.DonorID)
	}
	donors, err := summaries(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DonationView, len(donations))
	for i, d := range donations {
		v := &dto.DonationView{Donation: *d}
		if !(hideAnonymous && d.IsAnonymous) {
			v.Donor = donors[d.DonorID]
		}
		out[i] = v
	}
	return out, nil
}

// CampaignDonations lists every donation to a campaign for its creator.
func (s *FundingService) CampaignDonations(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, q dto.PageQuery) (*dto.PaginatedResponse[*dto.DonationView], error) {
	c, err := s.store.Campaigns().GetByID(ctx, campaignID)
	if err != nil {
		return nil, notFound(err, "campaign", campaignID)
	}
	if err := appAuth.RequireOwnerOrAdmin(caller, c.CreatorID, "campaign"); err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q)
	donations, total, err := s.store.Donations().List(ctx, repositories.DonationFilter{CampaignID: &campaignID}, page)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	views, err := s.donationViews(ctx, donations, false)
	if err != nil {
		return nil, err
	}
	return paginated(views, total, pageNum, size), nil
}

// PublicDonations lists verified, non-anonymous donations to a campaign.
func (s *FundingService) PublicDonations(ctx context.Context, campaignID uuid.UUID, q dto.PageQuery) (*dto.PaginatedResponse[*dto.DonationView], error) {
	if _, err := s.store.Campaigns().GetByID(ctx, campaignID); err != nil {
		return nil, notFound(err, "campaign", campaignID)
	}
	page, pageNum, size := pageOf(q)
	donations, total, err := s.store.Donations().List(ctx, repositories.DonationFilter{
		CampaignID:       &campaignID,
		Statuses:         []models.DonationStatus{models.DonationVerified},
		ExcludeAnonymous: true,
	}, page)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	for _, d := range donations {
		d.PaymentProof = nil
	}
	views, err := s.donationViews(ctx, donations, true)
	if err != nil {
		return nil, err
	}
	return paginated(views, total, pageNum, size), nil
}

// MyDonations lists the caller's donations across campaigns.
func (s *FundingService) MyDonations(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.DonationView], error) {
	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	page, pageNum, size := pageOf(q)
	donations, total, err := s.store.Donations().List(ctx, repositories.DonationFilter{DonorID: &caller.ID}, page)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	views := make([]*dto.DonationView, len(donations))
	for i, d := range donations {
		views[i] = &dto.DonationView{Donation: *d}
	}
	return paginated(views, total, pageNum, size), nil
}

