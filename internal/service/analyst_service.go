package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type analystRepository interface {
	FindByID(ctx context.Context, id string) (*models.Analyst, error)
	FindByUserID(ctx context.Context, userID string) (*models.Analyst, error)
	List(ctx context.Context, filter models.AnalystFilter) ([]models.Analyst, int, error)
	ListAll(ctx context.Context) ([]models.Analyst, error)
	Create(ctx context.Context, analyst *models.Analyst) error
	Update(ctx context.Context, analyst *models.Analyst) error
	Delete(ctx context.Context, id string) error
}

type analystUserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateAnalystRequest attaches a monitoring profile to an ANALYST user.
type CreateAnalystRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Region string `json:"region"`
}

// UpdateAnalystRequest is the payload for updating an analyst profile.
type UpdateAnalystRequest struct {
	Region *string `json:"region"`
	Active *bool   `json:"active"`
}

// AnalystService manages analyst monitoring profiles.
type AnalystService struct {
	analysts analystRepository
	users    analystUserFinder
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAnalystService constructs an AnalystService.
func NewAnalystService(analysts analystRepository, users analystUserFinder, validate *validator.Validate, logger *zap.Logger) *AnalystService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalystService{analysts: analysts, users: users, validate: validate, logger: logger}
}

// Get returns an analyst profile by id.
func (s *AnalystService) Get(ctx context.Context, id string) (*models.Analyst, error) {
	analyst, err := s.analysts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("analyst not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load analyst")
	}
	return analyst, nil
}

// List returns analyst profiles matching the filter with pagination metadata.
func (s *AnalystService) List(ctx context.Context, filter models.AnalystFilter) ([]models.Analyst, *models.Pagination, error) {
	analysts, total, err := s.analysts.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list analysts")
	}
	return analysts, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Create validates and stores a new analyst profile. The referenced user must
// exist, be active and carry the ANALYST role.
func (s *AnalystService) Create(ctx context.Context, req CreateAnalystRequest) (*models.Analyst, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrValidation.WithMessage("user does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check user")
	}
	if user.Role != models.RoleAnalyst {
		return nil, appErrors.ErrValidation.WithMessage("user does not have the analyst role")
	}
	if _, err := s.analysts.FindByUserID(ctx, req.UserID); err == nil {
		return nil, appErrors.ErrConflict.WithMessage("user already has an analyst profile")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check analyst profile")
	}

	analyst := &models.Analyst{
		UserID: req.UserID,
		Region: req.Region,
		Active: true,
	}
	if err := s.analysts.Create(ctx, analyst); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create analyst")
	}
	analyst.FullName = user.FullName
	return analyst, nil
}

// Update applies partial changes to an analyst profile.
func (s *AnalystService) Update(ctx context.Context, id string, req UpdateAnalystRequest) (*models.Analyst, error) {
	analyst, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Region != nil {
		analyst.Region = *req.Region
	}
	if req.Active != nil {
		analyst.Active = *req.Active
	}
	if err := s.analysts.Update(ctx, analyst); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("analyst not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update analyst")
	}
	return analyst, nil
}

// Delete removes an analyst profile.
func (s *AnalystService) Delete(ctx context.Context, id string) error {
	if err := s.analysts.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound.WithMessage("analyst not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete analyst")
	}
	return nil
}
