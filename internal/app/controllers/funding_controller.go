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

// FundingLedger is the campaign and donation surface.
type FundingLedger interface {
	CreateCampaign(ctx context.Context, caller *appAuth.Caller, req dto.CreateCampaignRequest) (*dto.CampaignView, error)
	SubmitCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) (*dto.CampaignView, error)
	UpdateCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, req dto.UpdateCampaignRequest) (*dto.CampaignView, error)
	CancelCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) error
	GetCampaign(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID) (*dto.CampaignView, error)
	ListCampaigns(ctx context.Context, caller *appAuth.Caller, q dto.CampaignListQuery) (*dto.PaginatedResponse[*dto.CampaignView], error)
	CreateDonation(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, req dto.CreateDonationRequest) (*models.Donation, error)
	VerifyDonation(ctx context.Context, caller *appAuth.Caller, donationID uuid.UUID, req dto.VerifyDonationRequest) (*models.Donation, error)
	CampaignDonations(ctx context.Context, caller *appAuth.Caller, campaignID uuid.UUID, q dto.PageQuery) (*dto.PaginatedResponse[*dto.DonationView], error)
	PublicDonations(ctx context.Context, campaignID uuid.UUID, q dto.PageQuery) (*dto.PaginatedResponse[*dto.DonationView], error)
	MyDonations(ctx context.Context, caller *appAuth.Caller, q dto.PageQuery) (*dto.PaginatedResponse[*dto.DonationView], error)
}

// FundingController serves /campaigns and /donations
type FundingController struct {
	funding FundingLedger
}

// NewFundingController creates a new FundingController
func NewFundingController(funding FundingLedger) *FundingController {
	return &FundingController{funding: funding}
}

func (fc *FundingController) Create(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.funding.CreateCampaign(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Campaign created")
}

func (fc *FundingController) Submit(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := fc.funding.SubmitCampaign(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (fc *FundingController) Update(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCampaignRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.funding.UpdateCampaign(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (fc *FundingController) Cancel(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := fc.funding.CancelCampaign(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Campaign cancelled")
}

func (fc *FundingController) Get(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := fc.funding.GetCampaign(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (fc *FundingController) List(c *gin.Context) {
	var q dto.CampaignListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := fc.funding.ListCampaigns(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (fc *FundingController) Donate(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateDonationRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.funding.CreateDonation(c.Request.Context(), middleware.Caller(c), id, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Donation recorded, awaiting verification")
}

func (fc *FundingController) Verify(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.VerifyDonationRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.funding.VerifyDonation(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

// Donations lists every donation for the creator, public ones for everybody else.
func (fc *FundingController) Donations(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	if c.Query("scope") == "all" {
		res, err := fc.funding.CampaignDonations(c.Request.Context(), middleware.Caller(c), id, q)
		reply(c, res, err)
		return
	}
	res, err := fc.funding.PublicDonations(c.Request.Context(), id, q)
	reply(c, res, err)
}

func (fc *FundingController) MyDonations(c *gin.Context) {
	var q dto.PageQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := fc.funding.MyDonations(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}
