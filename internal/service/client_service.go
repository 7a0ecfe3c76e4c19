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

type clientRepository interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	ListAll(ctx context.Context) ([]models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

// CreateClientRequest is the payload for creating a client.
type CreateClientRequest struct {
	Name         string `json:"name" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
}

// UpdateClientRequest is the payload for updating a client.
type UpdateClientRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	Active       *bool   `json:"active"`
}

// ClientService manages advertiser clients.
type ClientService struct {
	clients  clientRepository
	cache    *CacheService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewClientService constructs a ClientService.
func NewClientService(clients clientRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{clients: clients, cache: cache, validate: validate, logger: logger}
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

// List returns clients matching the filter with pagination metadata.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, *models.Pagination, error) {
	clients, total, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	return clients, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Create validates and stores a new client.
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	client := &models.Client{
		Name:         strings.TrimSpace(req.Name),
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Active:       true,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	s.invalidate(ctx)
	return client, nil
}

// Update applies partial changes to a client.
func (s *ClientService) Update(ctx context.Context, id string, req UpdateClientRequest) (*models.Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactEmail != nil {
		client.ContactEmail = *req.ContactEmail
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Active != nil {
		client.Active = *req.Active
	}
	if err := s.clients.Update(ctx, client); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client")
	}
	s.invalidate(ctx)
	return client, nil
}

// Delete removes a client.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound.WithMessage("client not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete client")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ClientService) invalidate(ctx context.Context) {
	if s.cache.Enabled() {
		s.cache.Invalidate(ctx, "dashboard:*")
	}
}

// paginationFor normalises page/pageSize the same way the repositories do so
// response metadata matches the executed query.
func paginationFor(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
