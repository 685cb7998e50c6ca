package dto

import (
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
)

// CreateCampaignRequest is a new fundraiser
type CreateCampaignRequest struct {
	Title       string                  `json:"title" binding:"required,max=200"`
	Description string                  `json:"description" binding:"required,max=20000"`
	Category    models.CampaignCategory `json:"category" binding:"required"`
	CoverImage  *string                 `json:"coverImage" binding:"omitempty,url"`
	GoalAmount  int64                   `json:"goalAmount" binding:"required"`
	Currency    string                  `json:"currency" binding:"omitempty,currency"`
	StartDate   *time.Time              `json:"startDate"`
	EndDate     time.Time               `json:"endDate" binding:"required"`
	SaveAsDraft bool                    `json:"saveAsDraft"`
}

// UpdateCampaignRequest changes only the fields that are set
type UpdateCampaignRequest struct {
	Title       *string                  `json:"title" binding:"omitempty,max=200"`
	Description *string                  `json:"description" binding:"omitempty,max=20000"`
	Category    *models.CampaignCategory `json:"category"`
	CoverImage  *string                  `json:"coverImage" binding:"omitempty,url"`
	GoalAmount  *int64                   `json:"goalAmount"`
	EndDate     *time.Time               `json:"endDate"`
}

// CreateDonationRequest is a pledge awaiting verification
type CreateDonationRequest struct {
	Amount       int64   `json:"amount" binding:"required"`
	Message      *string `json:"message" binding:"omitempty,max=1000"`
	IsAnonymous  bool    `json:"isAnonymous"`
	PaymentProof *string `json:"paymentProof" binding:"omitempty,url"`
}

// VerifyDonationRequest is the creator's decision on a pending donation
type VerifyDonationRequest struct {
	Status models.DonationStatus `json:"status" binding:"required"`
}

// CampaignListQuery filters the campaign list
type CampaignListQuery struct {
	PageQuery
	Status   string `form:"status"`
	Category string `form:"category"`
	Search   string `form:"search" binding:"max=100"`
}

// Progress is derived on every read and never stored
type Progress struct {
	Percentage float64 `json:"percentage"`
	DaysLeft   int     `json:"daysLeft"`
}

// CampaignView is a campaign with derived progress and the caller's donation state
type CampaignView struct {
	models.Campaign
	Creator    *UserSummary     `json:"creator,omitempty"`
	Progress   Progress         `json:"progress"`
	DonorCount int64            `json:"donorCount"`
	HasDonated bool             `json:"hasDonated"`
	MyDonation *models.Donation `json:"myDonation,omitempty"`
}

// DonationView is a donation with its donor; Donor is nil for anonymous public listings
type DonationView struct {
	models.Donation
	Donor *UserSummary `json:"donor,omitempty"`
}
