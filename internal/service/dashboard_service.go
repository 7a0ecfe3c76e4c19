package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/dto"
	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type dashboardUnreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

// DashboardService composes the role-specific landing views. Results are
// cached per role (and per user for the analyst view).
type DashboardService struct {
	clients       clientRepository
	campaigns     campaignRepository
	stations      stationRepository
	analysts      analystRepository
	assignments   workloadAssignmentLister
	execution     executionAssignmentLister
	messages      dashboardUnreadCounter
	notifications dashboardUnreadCounter

	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cacheTTL time.Duration
}

// DashboardServiceParams bundles the dependencies for NewDashboardService.
type DashboardServiceParams struct {
	Clients       clientRepository
	Campaigns     campaignRepository
	Stations      stationRepository
	Analysts      analystRepository
	Assignments   workloadAssignmentLister
	Execution     executionAssignmentLister
	Messages      dashboardUnreadCounter
	Notifications dashboardUnreadCounter
	Cache         *CacheService
	Logger        *zap.Logger
	CacheTTL      time.Duration
}

// NewDashboardService constructs a DashboardService with defaults filled in.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		clients:       params.Clients,
		campaigns:     params.Campaigns,
		stations:      params.Stations,
		analysts:      params.Analysts,
		assignments:   params.Assignments,
		execution:     params.Execution,
		messages:      params.Messages,
		notifications: params.Notifications,
		cache:         params.Cache,
		logger:        params.Logger,
		now:           time.Now,
		cacheTTL:      params.CacheTTL,
	}
}

// Admin composes platform-wide counters for the admin landing view.
func (s *DashboardService) Admin(ctx context.Context, userID string) (*dto.AdminDashboardResponse, bool, error) {
	const cacheKey = "dashboard:admin"
	var cached dto.AdminDashboardResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		cached.UnreadCount = s.unreadFor(ctx, userID)
		return &cached, true, nil
	}

	_, totalClients, err := s.clients.List(ctx, models.ClientFilter{PageSize: 1})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count clients")
	}
	campaigns, err := s.campaigns.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count campaigns")
	}
	totalCampaigns := len(campaigns)
	_, totalStations, err := s.stations.List(ctx, models.StationFilter{PageSize: 1})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count stations")
	}
	_, totalAnalysts, err := s.analysts.List(ctx, models.AnalystFilter{PageSize: 1})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count analysts")
	}
	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	now := s.now()
	activeCampaigns := 0
	for _, c := range campaigns {
		if c.Status == models.CampaignStatusActive {
			activeCampaigns++
		}
	}

	open, overdue, pending, rejectedThisMonth := 0, 0, 0, 0
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, a := range assignments {
		switch a.Status {
		case models.AssignmentStatusWIP:
			open++
			if a.IsOverdue(now) {
				overdue++
			}
		case models.AssignmentStatusSubmitted:
			pending++
		case models.AssignmentStatusRejected:
			if a.UpdatedAt.After(monthStart) {
				rejectedThisMonth++
			}
		}
	}

	workload := AggregateWorkload(assignments, campaigns, nil, now)
	top := workload.Groups
	if len(top) > 5 {
		top = top[:5]
	}

	response := dto.AdminDashboardResponse{
		TotalClients:      totalClients,
		TotalCampaigns:    totalCampaigns,
		ActiveCampaigns:   activeCampaigns,
		TotalStations:     totalStations,
		TotalAnalysts:     totalAnalysts,
		OpenAssignments:   open,
		OverdueCount:      overdue,
		TopAnalysts:       top,
		PendingApprovals:  pending,
		RejectedThisMonth: rejectedThisMonth,
	}

	if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache admin dashboard", zap.Error(err))
	}
	response.UnreadCount = s.unreadFor(ctx, userID)
	return &response, false, nil
}

// Manager composes the workload ranking and calendar for assignment planning.
func (s *DashboardService) Manager(ctx context.Context, userID string) (*dto.ManagerDashboardResponse, bool, error) {
	const cacheKey = "dashboard:manager"
	var cached dto.ManagerDashboardResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		cached.UnreadCount = s.unreadFor(ctx, userID)
		return &cached, true, nil
	}

	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	campaigns, err := s.campaigns.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaigns")
	}

	now := s.now()
	workload := AggregateWorkload(assignments, campaigns, nil, now)
	overdue := 0
	for _, group := range workload.Groups {
		overdue += group.OverdueCount
	}

	response := dto.ManagerDashboardResponse{
		Workload:     workload,
		Calendar:     BucketAssignments(assignments, now),
		OverdueCount: overdue,
	}

	if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache manager dashboard", zap.Error(err))
	}
	response.UnreadCount = s.unreadFor(ctx, userID)
	return &response, false, nil
}

// Accountant composes per-client campaign execution rollups.
func (s *DashboardService) Accountant(ctx context.Context, userID string) (*dto.AccountantDashboardResponse, bool, error) {
	const cacheKey = "dashboard:accountant"
	var cached dto.AccountantDashboardResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		cached.UnreadCount = s.unreadFor(ctx, userID)
		return &cached, true, nil
	}

	clients, err := s.clients.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}

	summaries := make([]dto.ClientExecutionSummary, 0, len(clients))
	for _, client := range clients {
		assignments, err := s.execution.ListByClient(ctx, client.ID, nil, nil)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client assignments")
		}
		summaries = append(summaries, SummariseExecution(client, assignments))
	}

	response := dto.AccountantDashboardResponse{ClientSummaries: summaries}
	if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache accountant dashboard", zap.Error(err))
	}
	response.UnreadCount = s.unreadFor(ctx, userID)
	return &response, false, nil
}

// Analyst composes the analyst's own queue and calendar. The view is scoped
// to the authenticated user and cached per user.
func (s *DashboardService) Analyst(ctx context.Context, userID string) (*dto.AnalystDashboardResponse, bool, error) {
	cacheKey := "dashboard:analyst:" + userID
	var cached dto.AnalystDashboardResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		cached.UnreadCount = s.unreadFor(ctx, userID)
		return &cached, true, nil
	}

	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	now := s.now()
	own := make([]models.Assignment, 0)
	wip, overdue := 0, 0
	for _, a := range assignments {
		if a.AnalystUserID != userID {
			continue
		}
		own = append(own, a)
		if a.Status == models.AssignmentStatusWIP {
			wip++
			if a.IsOverdue(now) {
				overdue++
			}
		}
	}

	response := dto.AnalystDashboardResponse{
		WIPCount:     wip,
		OverdueCount: overdue,
		Calendar:     BucketAssignments(own, now),
	}
	if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache analyst dashboard", zap.Error(err))
	}
	response.UnreadCount = s.unreadFor(ctx, userID)
	return &response, false, nil
}

// unreadFor sums unread messages and notifications for the header badge.
func (s *DashboardService) unreadFor(ctx context.Context, userID string) int {
	total := 0
	if s.messages != nil {
		if count, err := s.messages.CountUnread(ctx, userID); err == nil {
			total += count
		}
	}
	if s.notifications != nil {
		if count, err := s.notifications.CountUnread(ctx, userID); err == nil {
			total += count
		}
	}
	return total
}
