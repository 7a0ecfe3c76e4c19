package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/models"
)

type mockAssignmentLister struct {
	items []models.Assignment
	err   error
}

func (m *mockAssignmentLister) ListAll(ctx context.Context) ([]models.Assignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

type mockCampaignLister struct {
	items []models.Campaign
	err   error
}

func (m *mockCampaignLister) ListAll(ctx context.Context) ([]models.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestAggregateWorkloadCountsAndOrdering(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 1, 1)},
		{ID: "a2", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusApproved, DueDate: datePtr(2024, 2, 1)},
	}
	campaigns := []models.Campaign{{ID: "10", Name: "Spring Launch"}}

	result := AggregateWorkload(assignments, campaigns, nil, now)

	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, "1", group.AnalystUserID)
	assert.Equal(t, "Ana", group.AnalystName)
	assert.Equal(t, 1, group.WIPCount)
	assert.Equal(t, 1, group.OverdueCount)
	assert.Equal(t, 0, result.Dropped)

	require.Len(t, group.CampaignGroups, 1)
	cg := group.CampaignGroups[0]
	assert.Equal(t, "Spring Launch", cg.CampaignName)
	require.Len(t, cg.Assignments, 2)
	assert.Equal(t, "a2", cg.Assignments[0].ID)
	assert.Equal(t, "a1", cg.Assignments[1].ID)
}

func TestAggregateWorkloadDropsMissingIdentity(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", CampaignID: "10", AnalystUserID: "", AnalystUserFullName: "Ghost",
			Status: models.AssignmentStatusWIP},
		{ID: "a2", CampaignID: "10", AnalystUserID: "2", AnalystUserFullName: "",
			Status: models.AssignmentStatusWIP},
		{ID: "a3", CampaignID: "10", AnalystUserID: "3", AnalystUserFullName: "Cleo",
			Status: models.AssignmentStatusWIP},
	}

	result := AggregateWorkload(assignments, nil, nil, now)
	assert.Equal(t, 2, result.Dropped)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "3", result.Groups[0].AnalystUserID)
}

func TestAggregateWorkloadRanking(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		// Bea: 2 WIP, none overdue.
		{ID: "b1", CampaignID: "10", AnalystUserID: "2", AnalystUserFullName: "Bea",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 1)},
		{ID: "b2", CampaignID: "10", AnalystUserID: "2", AnalystUserFullName: "Bea",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 8, 1)},
		// Ana: 1 WIP, 1 overdue.
		{ID: "a1", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 1, 1)},
		// Cleo: 2 WIP, none overdue, ties with Bea on counts.
		{ID: "c1", CampaignID: "11", AnalystUserID: "3", AnalystUserFullName: "Cleo",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 15)},
		{ID: "c2", CampaignID: "11", AnalystUserID: "3", AnalystUserFullName: "Cleo",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 9, 1)},
	}

	result := AggregateWorkload(assignments, nil, nil, now)
	require.Len(t, result.Groups, 3)
	assert.Equal(t, "Ana", result.Groups[0].AnalystName)
	assert.Equal(t, "Bea", result.Groups[1].AnalystName)
	assert.Equal(t, "Cleo", result.Groups[2].AnalystName)
}

func TestAggregateWorkloadOverdueCountsWIPOnly(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusSubmitted, DueDate: datePtr(2024, 1, 1)},
		{ID: "a2", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusApproved, DueDate: datePtr(2024, 1, 2)},
	}

	result := AggregateWorkload(assignments, nil, nil, now)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, 0, result.Groups[0].WIPCount)
	assert.Equal(t, 0, result.Groups[0].OverdueCount)
}

func TestAggregateWorkloadDateFilter(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 3, 1)},
		{ID: "a2", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 3, 2)},
		{ID: "a3", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP},
	}

	result := AggregateWorkload(assignments, nil, datePtr(2024, 3, 1), now)
	require.Len(t, result.Groups, 1)
	require.Len(t, result.Groups[0].CampaignGroups, 1)
	require.Len(t, result.Groups[0].CampaignGroups[0].Assignments, 1)
	assert.Equal(t, "a1", result.Groups[0].CampaignGroups[0].Assignments[0].ID)
}

func TestAggregateWorkloadMissingDueDatesSortLast(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP},
		{ID: "a2", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 7, 1)},
	}

	result := AggregateWorkload(assignments, nil, nil, now)
	members := result.Groups[0].CampaignGroups[0].Assignments
	require.Len(t, members, 2)
	assert.Equal(t, "a2", members[0].ID)
	assert.Equal(t, "a1", members[1].ID)
}

func TestAggregateWorkloadCampaignNameFallback(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", CampaignID: "99", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP},
	}

	result := AggregateWorkload(assignments, nil, nil, now)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Campaign #99", result.Groups[0].CampaignGroups[0].CampaignName)
}

func TestWorkloadServiceWithoutCache(t *testing.T) {
	assignments := &mockAssignmentLister{items: []models.Assignment{
		{ID: "a1", CampaignID: "10", AnalystUserID: "1", AnalystUserFullName: "Ana",
			Status: models.AssignmentStatusWIP, DueDate: datePtr(2024, 1, 1)},
	}}
	campaigns := &mockCampaignLister{items: []models.Campaign{{ID: "10", Name: "Spring Launch"}}}

	svc := NewWorkloadService(assignments, campaigns, nil, zap.NewNop(), time.Minute)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	result, hit, err := svc.Workload(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, 1, result.Groups[0].OverdueCount)
}

func TestWorkloadServicePropagatesListerError(t *testing.T) {
	assignments := &mockAssignmentLister{err: assert.AnError}
	campaigns := &mockCampaignLister{}

	svc := NewWorkloadService(assignments, campaigns, nil, zap.NewNop(), time.Minute)
	_, _, err := svc.Workload(context.Background(), nil)
	require.Error(t, err)
}
