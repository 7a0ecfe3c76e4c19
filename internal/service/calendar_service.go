package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/dto"
	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

// CalendarService buckets assignments by due day for calendar views.
type CalendarService struct {
	assignments workloadAssignmentLister
	logger      *zap.Logger
	now         func() time.Time
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(assignments workloadAssignmentLister, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{assignments: assignments, logger: logger, now: time.Now}
}

// Calendar returns day buckets for every assignment, optionally restricted to
// a single analyst user.
func (s *CalendarService) Calendar(ctx context.Context, analystUserID string) (*dto.CalendarResponse, error) {
	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	if analystUserID != "" {
		filtered := assignments[:0]
		for _, a := range assignments {
			if a.AnalystUserID == analystUserID {
				filtered = append(filtered, a)
			}
		}
		assignments = filtered
	}
	days := BucketAssignments(assignments, s.now())
	return &dto.CalendarResponse{Days: days}, nil
}

// BucketAssignments groups assignments by due day (falling back to the
// assignment day) and classifies each day by its most urgent member.
// Precedence: overdue > upcoming > approved > none.
func BucketAssignments(assignments []models.Assignment, now time.Time) map[string]dto.CalendarDay {
	days := make(map[string]dto.CalendarDay)
	for _, a := range assignments {
		key := dayKey(a)
		if key == "" {
			continue
		}
		day, ok := days[key]
		if !ok {
			day = dto.CalendarDay{Date: key, Status: dto.DayStatusNone}
		}
		day.Assignments = append(day.Assignments, a)
		if status := classify(a, now); precedence(status) > precedence(day.Status) {
			day.Status = status
		}
		days[key] = day
	}
	return days
}

func dayKey(a models.Assignment) string {
	if a.DueDate != nil {
		return a.DueDate.UTC().Format("2006-01-02")
	}
	if !a.AssignedAt.IsZero() {
		return a.AssignedAt.UTC().Format("2006-01-02")
	}
	return ""
}

func classify(a models.Assignment, now time.Time) dto.DayStatus {
	switch {
	case a.Status == models.AssignmentStatusApproved:
		return dto.DayStatusApproved
	case a.Status == models.AssignmentStatusWIP && a.IsOverdue(now):
		return dto.DayStatusOverdue
	case a.Status == models.AssignmentStatusWIP:
		return dto.DayStatusUpcoming
	}
	return dto.DayStatusNone
}

func precedence(status dto.DayStatus) int {
	switch status {
	case dto.DayStatusOverdue:
		return 3
	case dto.DayStatusUpcoming:
		return 2
	case dto.DayStatusApproved:
		return 1
	}
	return 0
}
