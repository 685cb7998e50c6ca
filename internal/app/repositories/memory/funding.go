package memory

import (
	"context"
	"slices"
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

type campaignRepo struct{ s *Store }

func (r campaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	r.s.lock()
	defer r.s.unlock()
	ensureID(&campaign.ID)
	r.s.d().campaigns[campaign.ID] = *campaign
	return nil
}

func (r campaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	r.s.lock()
	defer r.s.unlock()
	c, ok := r.s.d().campaigns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r campaignRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return r.GetByID(ctx, id)
}

func (r campaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	r.s.lock()
	defer r.s.unlock()
	current, ok := r.s.d().campaigns[campaign.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	next := *campaign
	next.CurrentAmount = current.CurrentAmount
	next.ViewCount = current.ViewCount
	r.s.d().campaigns[campaign.ID] = next
	return nil
}

func (r campaignRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()
	if _, ok := d.campaigns[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(d.campaigns, id)
	for did, don := range d.donations {
		if don.CampaignID == id {
			delete(d.donations, did)
		}
	}
	return nil
}

func (r campaignRepo) bump(id uuid.UUID, apply func(*models.Campaign)) error {
	r.s.lock()
	defer r.s.unlock()
	c, ok := r.s.d().campaigns[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(&c)
	r.s.d().campaigns[id] = c
	return nil
}

func (r campaignRepo) AddToCurrentAmount(ctx context.Context, id uuid.UUID, amount int64) error {
	return r.bump(id, func(c *models.Campaign) { c.CurrentAmount += amount })
}

func (r campaignRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.bump(id, func(c *models.Campaign) { c.ViewCount++ })
}

func matchCampaign(c models.Campaign, f repositories.CampaignFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, c.Status) {
		return false
	}
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	if f.CreatorID != nil && c.CreatorID != *f.CreatorID {
		return false
	}
	if f.Search != "" && !containsFold(c.Title, f.Search) && !containsFold(c.Description, f.Search) {
		return false
	}
	return true
}

func (r campaignRepo) List(ctx context.Context, filter repositories.CampaignFilter, page repositories.Page) ([]*models.Campaign, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Campaign
	for _, c := range r.s.d().campaigns {
		if matchCampaign(c, filter) {
			c := c
			out = append(out, &c)
		}
	}
	sortBy(out, func(a, b *models.Campaign) int { return b.CreatedAt.Compare(a.CreatedAt) }, func(c *models.Campaign) uuid.UUID { return c.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r campaignRepo) Count(ctx context.Context, filter repositories.CampaignFilter) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for _, c := range r.s.d().campaigns {
		if matchCampaign(c, filter) {
			n++
		}
	}
	return n, nil
}

func (r campaignRepo) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for id, c := range r.s.d().campaigns {
		if c.Status == models.CampaignActive && c.EndDate.Before(now) {
			c.Status = models.CampaignCompleted
			c.UpdatedAt = now
			r.s.d().campaigns[id] = c
			n++
		}
	}
	return n, nil
}

type donationRepo struct{ s *Store }

func (r donationRepo) Create(ctx context.Context, donation *models.Donation) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.d().campaigns[donation.CampaignID]; !ok {
		return repositories.ErrNotFound
	}
	ensureID(&donation.ID)
	r.s.d().donations[donation.ID] = *donation
	return nil
}

func (r donationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	r.s.lock()
	defer r.s.unlock()
	d, ok := r.s.d().donations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (r donationRepo) Decide(ctx context.Context, id uuid.UUID, decision repositories.DonationDecision) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	d, ok := r.s.d().donations[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if d.Status != models.DonationPending {
		return false, nil
	}
	by, at := decision.DecidedBy, decision.DecidedAt
	d.Status = decision.Status
	d.VerifiedBy = &by
	d.VerifiedAt = &at
	r.s.d().donations[id] = d
	return true, nil
}

func (r donationRepo) List(ctx context.Context, filter repositories.DonationFilter, page repositories.Page) ([]*models.Donation, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Donation
	for _, d := range r.s.d().donations {
		if filter.CampaignID != nil && d.CampaignID != *filter.CampaignID {
			continue
		}
		if filter.DonorID != nil && d.DonorID != *filter.DonorID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, d.Status) {
			continue
		}
		if filter.ExcludeAnonymous && d.IsAnonymous {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sortBy(out, func(a, b *models.Donation) int { return b.DonatedAt.Compare(a.DonatedAt) }, func(d *models.Donation) uuid.UUID { return d.ID })
	return paginate(out, page), int64(len(out)), nil
}
