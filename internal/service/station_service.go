package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type stationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Station, error)
	List(ctx context.Context, filter models.StationFilter) ([]models.Station, int, error)
	ListAll(ctx context.Context) ([]models.Station, error)
	Create(ctx context.Context, station *models.Station) error
	Update(ctx context.Context, station *models.Station) error
	Delete(ctx context.Context, id string) error
}

// CreateStationRequest is the payload for creating a station.
type CreateStationRequest struct {
	Name   string `json:"name" validate:"required"`
	Region string `json:"region"`
	Kind   string `json:"kind" validate:"omitempty,oneof=radio tv"`
}

// UpdateStationRequest is the payload for updating a station.
type UpdateStationRequest struct {
	Name   *string `json:"name"`
	Region *string `json:"region"`
	Kind   *string `json:"kind" validate:"omitempty,oneof=radio tv"`
	Active *bool   `json:"active"`
}

// StationService manages broadcast stations.
type StationService struct {
	stations stationRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewStationService constructs a StationService.
func NewStationService(stations stationRepository, validate *validator.Validate, logger *zap.Logger) *StationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StationService{stations: stations, validate: validate, logger: logger}
}

// Get returns a station by id.
func (s *StationService) Get(ctx context.Context, id string) (*models.Station, error) {
	station, err := s.stations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("station not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load station")
	}
	return station, nil
}

// List returns stations matching the filter with pagination metadata.
func (s *StationService) List(ctx context.Context, filter models.StationFilter) ([]models.Station, *models.Pagination, error) {
	stations, total, err := s.stations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stations")
	}
	return stations, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Create validates and stores a new station.
func (s *StationService) Create(ctx context.Context, req CreateStationRequest) (*models.Station, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	kind := req.Kind
	if kind == "" {
		kind = "radio"
	}
	station := &models.Station{
		Name:   strings.TrimSpace(req.Name),
		Region: req.Region,
		Kind:   kind,
		Active: true,
	}
	if err := s.stations.Create(ctx, station); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create station")
	}
	return station, nil
}

// Update applies partial changes to a station.
func (s *StationService) Update(ctx context.Context, id string, req UpdateStationRequest) (*models.Station, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	station, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		station.Name = strings.TrimSpace(*req.Name)
	}
	if req.Region != nil {
		station.Region = *req.Region
	}
	if req.Kind != nil {
		station.Kind = *req.Kind
	}
	if req.Active != nil {
		station.Active = *req.Active
	}
	if err := s.stations.Update(ctx, station); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("station not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update station")
	}
	return station, nil
}

// Delete removes a station.
func (s *StationService) Delete(ctx context.Context, id string) error {
	if err := s.stations.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound.WithMessage("station not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete station")
	}
	return nil
}
