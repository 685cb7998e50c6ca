package models

import (
	"time"

	"github.com/google/uuid"
)

type CampaignCategory string

const (
	CategoryScholarship    CampaignCategory = "SCHOLARSHIP"
	CategoryResearch       CampaignCategory = "RESEARCH"
	CategoryEvent          CampaignCategory = "EVENT"
	CategoryInfrastructure CampaignCategory = "INFRASTRUCTURE"
	CategoryOther          CampaignCategory = "OTHER"
)

func (c CampaignCategory) Valid() bool {
	switch c {
	case CategoryScholarship, CategoryResearch, CategoryEvent, CategoryInfrastructure, CategoryOther:
		return true
	}
	return false
}

type CampaignStatus string

const (
	CampaignDraft           CampaignStatus = "DRAFT"
	CampaignPendingApproval CampaignStatus = "PENDING_APPROVAL"
	CampaignActive          CampaignStatus = "ACTIVE"
	CampaignCompleted       CampaignStatus = "COMPLETED"
	CampaignRejected        CampaignStatus = "REJECTED"
	CampaignCancelled       CampaignStatus = "CANCELLED"
)

var campaignTransitions = transitionTable[CampaignStatus]{
	CampaignDraft:           {CampaignPendingApproval, CampaignActive, CampaignCancelled},
	CampaignPendingApproval: {CampaignActive, CampaignRejected, CampaignCancelled},
	CampaignActive:          {CampaignCompleted, CampaignCancelled},
}

func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	return campaignTransitions.allows(s, next)
}

func (s CampaignStatus) Public() bool {
	return s == CampaignActive || s == CampaignCompleted
}

func (s CampaignStatus) Valid() bool {
	_, inTable := campaignTransitions[s]
	return inTable || s == CampaignCompleted || s == CampaignRejected || s == CampaignCancelled
}

// Campaign is a fundraiser. CurrentAmount only ever grows by verified donations.
type Campaign struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	CreatorID       uuid.UUID        `json:"creatorId" db:"creator_id"`
	Title           string           `json:"title" db:"title"`
	Description     string           `json:"description" db:"description"`
	Category        CampaignCategory `json:"category" db:"category"`
	CoverImage      *string          `json:"coverImage,omitempty" db:"cover_image"`
	GoalAmount      int64            `json:"goalAmount" db:"goal_amount"`
	CurrentAmount   int64            `json:"currentAmount" db:"current_amount"`
	Currency        string           `json:"currency" db:"currency"`
	StartDate       time.Time        `json:"startDate" db:"start_date"`
	EndDate         time.Time        `json:"endDate" db:"end_date"`
	Status          CampaignStatus   `json:"status" db:"status"`
	ViewCount       int64            `json:"viewCount" db:"view_count"`
	ApprovedBy      *uuid.UUID       `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time       `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedBy      *uuid.UUID       `json:"rejectedBy,omitempty" db:"rejected_by"`
	RejectedAt      *time.Time       `json:"rejectedAt,omitempty" db:"rejected_at"`
	RejectionReason *string          `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// AcceptingDonations reports whether donations may be submitted at now.
func (c *Campaign) AcceptingDonations(now time.Time) bool {
	return c.Status == CampaignActive && !now.After(c.EndDate)
}

type DonationStatus string

const (
	DonationPending  DonationStatus = "PENDING"
	DonationVerified DonationStatus = "VERIFIED"
	DonationRejected DonationStatus = "REJECTED"
)

var donationTransitions = transitionTable[DonationStatus]{
	DonationPending: {DonationVerified, DonationRejected},
}

func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	return donationTransitions.allows(s, next)
}

// IsDecision reports whether s is an outcome a creator may choose.
func (s DonationStatus) IsDecision() bool {
	return s == DonationVerified || s == DonationRejected
}

// Donation is a pledge awaiting verification by the campaign creator.
type Donation struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	CampaignID   uuid.UUID      `json:"campaignId" db:"campaign_id"`
	DonorID      uuid.UUID      `json:"donorId" db:"donor_id"`
	Amount       int64          `json:"amount" db:"amount"`
	Message      *string        `json:"message,omitempty" db:"message"`
	IsAnonymous  bool           `json:"isAnonymous" db:"is_anonymous"`
	PaymentProof *string        `json:"paymentProof,omitempty" db:"payment_proof"`
	Status       DonationStatus `json:"status" db:"status"`
	VerifiedBy   *uuid.UUID     `json:"verifiedBy,omitempty" db:"verified_by"`
	VerifiedAt   *time.Time     `json:"verifiedAt,omitempty" db:"verified_at"`
	DonatedAt    time.Time      `json:"donatedAt" db:"donated_at"`
}
