package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	ListAll(ctx context.Context) ([]models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentAnalystFinder interface {
	FindByID(ctx context.Context, id string) (*models.Analyst, error)
}

type assignmentNotifier interface {
	Notify(ctx context.Context, userID, kind, message string) error
}

// CreateAssignmentRequest is the payload for creating an assignment.
type CreateAssignmentRequest struct {
	CampaignID   string     `json:"campaign" validate:"required"`
	StationID    *string    `json:"station"`
	AnalystID    string     `json:"analyst" validate:"required"`
	DueDate      *time.Time `json:"due_date"`
	PlannedSpots int        `json:"planned_spots" validate:"gte=0"`
}

// UpdateAssignmentRequest is the payload for updating an assignment.
type UpdateAssignmentRequest struct {
	StationID        *string    `json:"station"`
	Status           *string    `json:"status"`
	DueDate          *time.Time `json:"due_date"`
	PlannedSpots     *int       `json:"planned_spots" validate:"omitempty,gte=0"`
	MissedSpots      *int       `json:"missed_spots" validate:"omitempty,gte=0"`
	TransmittedSpots *int       `json:"transmitted_spots" validate:"omitempty,gte=0"`
	GainSpots        *int       `json:"gain_spots" validate:"omitempty,gte=0"`
}

// AssignmentService manages monitoring assignments and their lifecycle.
type AssignmentService struct {
	assignments assignmentRepository
	campaigns   campaignClientFinderByID
	analysts    assignmentAnalystFinder
	notifier    assignmentNotifier
	cache       *CacheService
	validate    *validator.Validate
	logger      *zap.Logger
}

type campaignClientFinderByID interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

// AssignmentServiceParams bundles the dependencies for NewAssignmentService.
type AssignmentServiceParams struct {
	Assignments assignmentRepository
	Campaigns   campaignClientFinderByID
	Analysts    assignmentAnalystFinder
	Notifier    assignmentNotifier
	Cache       *CacheService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService with defaults filled in.
func NewAssignmentService(params AssignmentServiceParams) *AssignmentService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: params.Assignments,
		campaigns:   params.Campaigns,
		analysts:    params.Analysts,
		notifier:    params.Notifier,
		cache:       params.Cache,
		validate:    params.Validator,
		logger:      params.Logger,
	}
}

// Get returns an assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// List returns assignments matching the filter with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 100
	}
	return assignments, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Create validates references and stores a new WIP assignment. The assigned
// analyst is notified.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	campaign, err := s.campaigns.FindByID(ctx, req.CampaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrValidation.WithMessage("campaign does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check campaign")
	}
	analyst, err := s.analysts.FindByID(ctx, req.AnalystID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrValidation.WithMessage("analyst does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check analyst")
	}

	assignment := &models.Assignment{
		CampaignID:   req.CampaignID,
		StationID:    req.StationID,
		AnalystID:    req.AnalystID,
		Status:       models.AssignmentStatusWIP,
		DueDate:      req.DueDate,
		PlannedSpots: req.PlannedSpots,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	assignment.AnalystUserID = analyst.UserID
	assignment.AnalystUserFullName = analyst.FullName

	s.notify(ctx, analyst.UserID, "assignment_created", fmt.Sprintf("New assignment for campaign %s", campaign.Name))
	s.invalidate(ctx)
	return assignment, nil
}

// Update applies partial changes to an assignment, enforcing the status
// lifecycle and notifying the analyst on approval or rejection.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStatus := assignment.Status
	if req.Status != nil {
		status := models.AssignmentStatus(strings.ToUpper(*req.Status))
		if !models.ValidAssignmentStatus(status) {
			return nil, appErrors.ErrValidation.WithMessage("unknown assignment status")
		}
		if !validTransition(previousStatus, status) {
			return nil, appErrors.ErrValidation.WithMessage(fmt.Sprintf("cannot move assignment from %s to %s", previousStatus, status))
		}
		assignment.Status = status
	}
	if req.StationID != nil {
		assignment.StationID = req.StationID
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate
	}
	if req.PlannedSpots != nil {
		assignment.PlannedSpots = *req.PlannedSpots
	}
	if req.MissedSpots != nil {
		assignment.MissedSpots = *req.MissedSpots
	}
	if req.TransmittedSpots != nil {
		assignment.TransmittedSpots = *req.TransmittedSpots
	}
	if req.GainSpots != nil {
		assignment.GainSpots = *req.GainSpots
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}

	if assignment.Status != previousStatus {
		switch assignment.Status {
		case models.AssignmentStatusApproved:
			s.notify(ctx, assignment.AnalystUserID, "assignment_approved", "Your submission was approved")
		case models.AssignmentStatusRejected:
			s.notify(ctx, assignment.AnalystUserID, "assignment_rejected", "Your submission was rejected, please rework it")
		}
	}
	s.invalidate(ctx)
	return assignment, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound.WithMessage("assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.invalidate(ctx)
	return nil
}

// validTransition encodes the submission/approval lifecycle. Rejected work
// goes back to WIP for rework.
func validTransition(from, to models.AssignmentStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.AssignmentStatusWIP:
		return to == models.AssignmentStatusSubmitted
	case models.AssignmentStatusSubmitted:
		return to == models.AssignmentStatusApproved || to == models.AssignmentStatusRejected
	case models.AssignmentStatusRejected:
		return to == models.AssignmentStatusWIP
	case models.AssignmentStatusApproved:
		return false
	}
	return false
}

func (s *AssignmentService) notify(ctx context.Context, userID, kind, message string) {
	if s.notifier == nil || userID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, message); err != nil {
		s.logger.Warn("failed to create notification", zap.String("kind", kind), zap.Error(err))
	}
}

func (s *AssignmentService) invalidate(ctx context.Context) {
	if s.cache.Enabled() {
		s.cache.Invalidate(ctx, "workload:*")
		s.cache.Invalidate(ctx, "dashboard:*")
	}
}
