package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/dto"
	"github.com/mediatrack/campaign-api/internal/models"
)

func TestBucketAssignmentsGroupsByDueDay(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 1)},
		{ID: "a2", Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 1)},
		{ID: "a3", Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 2)},
	}

	days := BucketAssignments(assignments, now)
	require.Len(t, days, 2)
	assert.Len(t, days["2024-07-01"].Assignments, 2)
	assert.Len(t, days["2024-07-02"].Assignments, 1)
}

func TestBucketAssignmentsFallsBackToAssignedDay(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", Status: models.AssignmentStatusWIP,
			AssignedAt: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)},
	}

	days := BucketAssignments(assignments, now)
	require.Contains(t, days, "2024-05-10")
}

func TestBucketAssignmentsSkipsUndatedRecords(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	days := BucketAssignments([]models.Assignment{{ID: "a1", Status: models.AssignmentStatusWIP}}, now)
	assert.Empty(t, days)
}

func TestBucketAssignmentsStatusPrecedence(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Overdue outranks approved on the same day.
	assignments := []models.Assignment{
		{ID: "a1", Status: models.AssignmentStatusApproved, DueDate: datePtr(2024, 5, 1)},
		{ID: "a2", Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 5, 1)},
	}
	days := BucketAssignments(assignments, now)
	assert.Equal(t, dto.DayStatusOverdue, days["2024-05-01"].Status)

	// A future WIP is upcoming and outranks approved.
	assignments = []models.Assignment{
		{ID: "a1", Status: models.AssignmentStatusApproved, DueDate: datePtr(2024, 7, 1)},
		{ID: "a2", Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 1)},
	}
	days = BucketAssignments(assignments, now)
	assert.Equal(t, dto.DayStatusUpcoming, days["2024-07-01"].Status)

	// Submitted/rejected records leave the day unclassified.
	assignments = []models.Assignment{
		{ID: "a1", Status: models.AssignmentStatusSubmitted, DueDate: datePtr(2024, 7, 1)},
	}
	days = BucketAssignments(assignments, now)
	assert.Equal(t, dto.DayStatusNone, days["2024-07-01"].Status)
}

func TestCalendarServiceFiltersByAnalyst(t *testing.T) {
	lister := &mockAssignmentLister{items: []models.Assignment{
		{ID: "a1", AnalystUserID: "1", Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 1)},
		{ID: "a2", AnalystUserID: "2", Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 1)},
	}}

	svc := NewCalendarService(lister, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	result, err := svc.Calendar(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, result.Days["2024-07-01"].Assignments, 1)
	assert.Equal(t, "a1", result.Days["2024-07-01"].Assignments[0].ID)
}

func TestCalendarServicePropagatesListerError(t *testing.T) {
	svc := NewCalendarService(&mockAssignmentLister{err: assert.AnError}, zap.NewNop())
	_, err := svc.Calendar(context.Background(), "")
	require.Error(t, err)
}
