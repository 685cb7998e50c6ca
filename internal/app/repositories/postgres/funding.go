package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

var campaignColumns = []string{
	"id", "creator_id", "title", "description", "category", "cover_image", "goal_amount",
	"current_amount", "currency", "start_date", "end_date", "status", "view_count",
	"approved_by", "approved_at", "rejected_by", "rejected_at", "rejection_reason",
	"created_at", "updated_at",
}

type campaignRepo struct{ s *Store }

func (r campaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("campaigns").Columns(campaignColumns...).Values(
		c.ID, c.CreatorID, c.Title, c.Description, c.Category, c.CoverImage, c.GoalAmount,
		c.CurrentAmount, c.Currency, c.StartDate, c.EndDate, c.Status, c.ViewCount,
		c.ApprovedBy, c.ApprovedAt, c.RejectedBy, c.RejectedAt, c.RejectionReason,
		c.CreatedAt, c.UpdatedAt,
	))
	return err
}

func (r campaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return selectOne[models.Campaign](ctx, r.s.q, psql.Select(campaignColumns...).From("campaigns").Where(squirrel.Eq{"id": id}))
}

func (r campaignRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return selectOne[models.Campaign](ctx, r.s.q, psql.Select(campaignColumns...).From("campaigns").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r campaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	return execOne(ctx, r.s.q, psql.Update("campaigns").SetMap(map[string]interface{}{
		"title":            c.Title,
		"description":      c.Description,
		"category":         c.Category,
		"cover_image":      c.CoverImage,
		"goal_amount":      c.GoalAmount,
		"currency":         c.Currency,
		"start_date":       c.StartDate,
		"end_date":         c.EndDate,
		"status":           c.Status,
		"approved_by":      c.ApprovedBy,
		"approved_at":      c.ApprovedAt,
		"rejected_by":      c.RejectedBy,
		"rejected_at":      c.RejectedAt,
		"rejection_reason": c.RejectionReason,
		"updated_at":       c.UpdatedAt,
	}).Where(squirrel.Eq{"id": c.ID}))
}

func (r campaignRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Delete("campaigns").Where(squirrel.Eq{"id": id}))
}

func (r campaignRepo) AddToCurrentAmount(ctx context.Context, id uuid.UUID, amount int64) error {
	return execOne(ctx, r.s.q, psql.Update("campaigns").
		Set("current_amount", squirrel.Expr("current_amount + ?", amount)).
		Where(squirrel.Eq{"id": id}))
}

func (r campaignRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Update("campaigns").
		Set("view_count", squirrel.Expr("view_count + 1")).
		Where(squirrel.Eq{"id": id}))
}

func campaignWhere(f repositories.CampaignFilter) squirrel.And {
	where := squirrel.And{}
	if len(f.Statuses) > 0 {
		where = append(where, squirrel.Eq{"status": f.Statuses})
	}
	if f.Category != nil {
		where = append(where, squirrel.Eq{"category": *f.Category})
	}
	if f.CreatorID != nil {
		where = append(where, squirrel.Eq{"creator_id": *f.CreatorID})
	}
	if f.Search != "" {
		where = append(where, searchAny(f.Search, "title", "description"))
	}
	return where
}

func (r campaignRepo) List(ctx context.Context, filter repositories.CampaignFilter, page repositories.Page) ([]*models.Campaign, int64, error) {
	return listWithTotal[models.Campaign](ctx, r.s.q, campaignColumns, "campaigns", campaignWhere(filter), []string{"created_at DESC", "id"}, page)
}

func (r campaignRepo) Count(ctx context.Context, filter repositories.CampaignFilter) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From("campaigns").Where(campaignWhere(filter)))
}

func (r campaignRepo) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	return exec(ctx, r.s.q, psql.Update("campaigns").
		Set("status", models.CampaignCompleted).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": models.CampaignActive}).
		Where(squirrel.Lt{"end_date": now}))
}

var donationColumns = []string{
	"id", "campaign_id", "donor_id", "amount", "message", "is_anonymous", "payment_proof",
	"status", "verified_by", "verified_at", "donated_at",
}

type donationRepo struct{ s *Store }

func (r donationRepo) Create(ctx context.Context, d *models.Donation) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("donations").Columns(donationColumns...).Values(
		d.ID, d.CampaignID, d.DonorID, d.Amount, d.Message, d.IsAnonymous, d.PaymentProof,
		d.Status, d.VerifiedBy, d.VerifiedAt, d.DonatedAt,
	))
	return err
}

func (r donationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	return selectOne[models.Donation](ctx, r.s.q, psql.Select(donationColumns...).From("donations").Where(squirrel.Eq{"id": id}))
}

func (r donationRepo) Decide(ctx context.Context, id uuid.UUID, decision repositories.DonationDecision) (bool, error) {
	n, err := exec(ctx, r.s.q, psql.Update("donations").
		Set("status", decision.Status).
		Set("verified_by", decision.DecidedBy).
		Set("verified_at", decision.DecidedAt).
		Where(squirrel.Eq{"id": id, "status": models.DonationPending}))
	if err != nil || n > 0 {
		return n > 0, err
	}
	found, err := exists(ctx, r.s.q, "donations", squirrel.Eq{"id": id})
	if err != nil {
		return false, err
	}
	if !found {
		return false, repositories.ErrNotFound
	}
	return false, nil
}

func (r donationRepo) List(ctx context.Context, filter repositories.DonationFilter, page repositories.Page) ([]*models.Donation, int64, error) {
	where := squirrel.And{}
	if filter.CampaignID != nil {
		where = append(where, squirrel.Eq{"campaign_id": *filter.CampaignID})
	}
	if filter.DonorID != nil {
		where = append(where, squirrel.Eq{"donor_id": *filter.DonorID})
	}
	if len(filter.Statuses) > 0 {
		where = append(where, squirrel.Eq{"status": filter.Statuses})
	}
	if filter.ExcludeAnonymous {
		where = append(where, squirrel.Eq{"is_anonymous": false})
	}
	return listWithTotal[models.Donation](ctx, r.s.q, donationColumns, "donations", where, []string{"donated_at DESC", "id"}, page)
}
