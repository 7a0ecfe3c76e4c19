package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/dto"
	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type workloadAssignmentLister interface {
	ListAll(ctx context.Context) ([]models.Assignment, error)
}

type workloadCampaignLister interface {
	ListAll(ctx context.Context) ([]models.Campaign, error)
}

// WorkloadService ranks analysts by open work using the assignment snapshot.
type WorkloadService struct {
	assignments workloadAssignmentLister
	campaigns   workloadCampaignLister
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cacheTTL    time.Duration
}

// NewWorkloadService constructs a WorkloadService.
func NewWorkloadService(assignments workloadAssignmentLister, campaigns workloadCampaignLister, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &WorkloadService{
		assignments: assignments,
		campaigns:   campaigns,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
		cacheTTL:    cacheTTL,
	}
}

// Workload returns the ranked analyst groups, optionally filtered to a single
// due date. The second return value reports cache utilisation.
func (s *WorkloadService) Workload(ctx context.Context, date *time.Time) (*dto.WorkloadResponse, bool, error) {
	cacheKey := "workload:all"
	if date != nil {
		cacheKey = fmt.Sprintf("workload:%s", date.UTC().Format("2006-01-02"))
	}
	if s.cache.Enabled() {
		var cached dto.WorkloadResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	campaigns, err := s.campaigns.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaigns")
	}

	result := AggregateWorkload(assignments, campaigns, date, s.now())
	if result.Dropped > 0 {
		s.logger.Debug("workload aggregation dropped records without analyst identity", zap.Int("dropped", result.Dropped))
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache workload", zap.Error(err))
		}
	}
	return &result, false, nil
}

// AggregateWorkload groups assignments by analyst user, then by campaign, and
// ranks the groups by urgency. Records missing the analyst user id or name are
// dropped and counted. The result is deterministic for a given input and now.
func AggregateWorkload(assignments []models.Assignment, campaigns []models.Campaign, date *time.Time, now time.Time) dto.WorkloadResponse {
	campaignNames := make(map[string]string, len(campaigns))
	for _, c := range campaigns {
		campaignNames[c.ID] = c.Name
	}

	type analystAccum struct {
		name      string
		wip       int
		overdue   int
		campaigns map[string][]models.Assignment
		order     []string
	}

	accums := make(map[string]*analystAccum)
	var analystOrder []string
	dropped := 0

	for _, a := range assignments {
		if date != nil {
			if a.DueDate == nil || !sameDay(*a.DueDate, *date) {
				continue
			}
		}
		if a.AnalystUserID == "" || a.AnalystUserFullName == "" {
			dropped++
			continue
		}

		acc, ok := accums[a.AnalystUserID]
		if !ok {
			acc = &analystAccum{name: a.AnalystUserFullName, campaigns: make(map[string][]models.Assignment)}
			accums[a.AnalystUserID] = acc
			analystOrder = append(analystOrder, a.AnalystUserID)
		}

		if a.Status == models.AssignmentStatusWIP {
			acc.wip++
			if a.IsOverdue(now) {
				acc.overdue++
			}
		}

		if _, seen := acc.campaigns[a.CampaignID]; !seen {
			acc.order = append(acc.order, a.CampaignID)
		}
		acc.campaigns[a.CampaignID] = append(acc.campaigns[a.CampaignID], a)
	}

	groups := make([]dto.AnalystWorkload, 0, len(accums))
	for _, userID := range analystOrder {
		acc := accums[userID]
		campaignGroups := make([]dto.CampaignGroup, 0, len(acc.order))
		for _, campaignID := range acc.order {
			members := acc.campaigns[campaignID]
			sort.SliceStable(members, func(i, j int) bool {
				return dueAfter(members[i].DueDate, members[j].DueDate)
			})
			name := campaignNames[campaignID]
			if name == "" {
				name = fmt.Sprintf("Campaign #%s", campaignID)
			}
			campaignGroups = append(campaignGroups, dto.CampaignGroup{
				CampaignID:   campaignID,
				CampaignName: name,
				Assignments:  members,
			})
		}
		groups = append(groups, dto.AnalystWorkload{
			AnalystUserID:  userID,
			AnalystName:    acc.name,
			WIPCount:       acc.wip,
			OverdueCount:   acc.overdue,
			CampaignGroups: campaignGroups,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].OverdueCount != groups[j].OverdueCount {
			return groups[i].OverdueCount > groups[j].OverdueCount
		}
		if groups[i].WIPCount != groups[j].WIPCount {
			return groups[i].WIPCount > groups[j].WIPCount
		}
		return groups[i].AnalystName < groups[j].AnalystName
	})

	return dto.WorkloadResponse{Groups: groups, Dropped: dropped}
}

// dueAfter orders by due date descending, with missing due dates last.
func dueAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
