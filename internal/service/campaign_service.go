package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type campaignRepository interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error)
	ListAll(ctx context.Context) ([]models.Campaign, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
}

type campaignClientFinder interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
}

// CreateCampaignRequest is the payload for creating a campaign.
type CreateCampaignRequest struct {
	Name      string     `json:"name" validate:"required"`
	ClientID  string     `json:"client_id" validate:"required"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// UpdateCampaignRequest is the payload for updating a campaign.
type UpdateCampaignRequest struct {
	Name      *string    `json:"name"`
	Status    *string    `json:"status"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// CampaignService manages monitored campaigns.
type CampaignService struct {
	campaigns campaignRepository
	clients   campaignClientFinder
	cache     *CacheService
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(campaigns campaignRepository, clients campaignClientFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{campaigns: campaigns, clients: clients, cache: cache, validate: validate, logger: logger}
}

// Get returns a campaign by id.
func (s *CampaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	return campaign, nil
}

// List returns campaigns matching the filter with pagination metadata.
func (s *CampaignService) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, *models.Pagination, error) {
	campaigns, total, err := s.campaigns.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaigns")
	}
	return campaigns, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Create validates and stores a new campaign for an existing client.
func (s *CampaignService) Create(ctx context.Context, req CreateCampaignRequest) (*models.Campaign, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	status := models.CampaignStatus(strings.ToUpper(req.Status))
	if req.Status == "" {
		status = models.CampaignStatusDraft
	} else if !validCampaignStatus(status) {
		return nil, appErrors.ErrValidation.WithMessage("unknown campaign status")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, appErrors.ErrValidation.WithMessage("end date precedes start date")
	}
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrValidation.WithMessage("client does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check client")
	}

	campaign := &models.Campaign{
		Name:      strings.TrimSpace(req.Name),
		ClientID:  req.ClientID,
		Status:    status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campaign")
	}
	s.invalidate(ctx)
	return campaign, nil
}

// Update applies partial changes to a campaign.
func (s *CampaignService) Update(ctx context.Context, id string, req UpdateCampaignRequest) (*models.Campaign, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		campaign.Name = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		status := models.CampaignStatus(strings.ToUpper(*req.Status))
		if !validCampaignStatus(status) {
			return nil, appErrors.ErrValidation.WithMessage("unknown campaign status")
		}
		campaign.Status = status
	}
	if req.StartDate != nil {
		campaign.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = req.EndDate
	}
	if campaign.StartDate != nil && campaign.EndDate != nil && campaign.EndDate.Before(*campaign.StartDate) {
		return nil, appErrors.ErrValidation.WithMessage("end date precedes start date")
	}
	if err := s.campaigns.Update(ctx, campaign); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update campaign")
	}
	s.invalidate(ctx)
	return campaign, nil
}

// Delete removes a campaign.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if err := s.campaigns.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound.WithMessage("campaign not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete campaign")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CampaignService) invalidate(ctx context.Context) {
	if s.cache.Enabled() {
		s.cache.Invalidate(ctx, "dashboard:*")
		s.cache.Invalidate(ctx, "workload:*")
	}
}

func validCampaignStatus(status models.CampaignStatus) bool {
	switch status {
	case models.CampaignStatusDraft, models.CampaignStatusActive, models.CampaignStatusPaused, models.CampaignStatusCompleted:
		return true
	}
	return false
}
