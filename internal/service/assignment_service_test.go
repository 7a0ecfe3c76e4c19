package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatrack/campaign-api/internal/models"
)

type mockAssignmentRepo struct {
	items   map[string]*models.Assignment
	deleted []string
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{items: make(map[string]*models.Assignment)}
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	var result []models.Assignment
	for _, a := range m.items {
		result = append(result, *a)
	}
	return result, len(result), nil
}

func (m *mockAssignmentRepo) ListAll(ctx context.Context) ([]models.Assignment, error) {
	list, _, err := m.List(ctx, models.AssignmentFilter{})
	return list, err
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = "generated"
	}
	assignment.AssignedAt = time.Now()
	cp := *assignment
	m.items[assignment.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	if _, ok := m.items[assignment.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *assignment
	m.items[assignment.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCampaignFinder struct {
	items map[string]*models.Campaign
}

func (m *mockCampaignFinder) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	if c, ok := m.items[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockAnalystFinder struct {
	items map[string]*models.Analyst
}

func (m *mockAnalystFinder) FindByID(ctx context.Context, id string) (*models.Analyst, error) {
	if a, ok := m.items[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

type recordingNotifier struct {
	kinds   []string
	userIDs []string
}

func (m *recordingNotifier) Notify(ctx context.Context, userID, kind, message string) error {
	m.userIDs = append(m.userIDs, userID)
	m.kinds = append(m.kinds, kind)
	return nil
}

func newAssignmentFixture() (*AssignmentService, *mockAssignmentRepo, *recordingNotifier) {
	repo := newMockAssignmentRepo()
	notifier := &recordingNotifier{}
	svc := NewAssignmentService(AssignmentServiceParams{
		Assignments: repo,
		Campaigns: &mockCampaignFinder{items: map[string]*models.Campaign{
			"c1": {ID: "c1", Name: "Spring Launch"},
		}},
		Analysts: &mockAnalystFinder{items: map[string]*models.Analyst{
			"an1": {ID: "an1", UserID: "u1", FullName: "Ana"},
		}},
		Notifier: notifier,
	})
	return svc, repo, notifier
}

func TestAssignmentServiceCreateNotifiesAnalyst(t *testing.T) {
	svc, repo, notifier := newAssignmentFixture()

	assignment, err := svc.Create(context.Background(), CreateAssignmentRequest{
		CampaignID: "c1", AnalystID: "an1", PlannedSpots: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusWIP, assignment.Status)
	assert.Equal(t, "u1", assignment.AnalystUserID)
	assert.Len(t, repo.items, 1)

	require.Len(t, notifier.kinds, 1)
	assert.Equal(t, "assignment_created", notifier.kinds[0])
	assert.Equal(t, "u1", notifier.userIDs[0])
}

func TestAssignmentServiceCreateRejectsUnknownReferences(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.Create(context.Background(), CreateAssignmentRequest{CampaignID: "missing", AnalystID: "an1"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateAssignmentRequest{CampaignID: "c1", AnalystID: "missing"})
	require.Error(t, err)
}

func statusPtr(s string) *string { return &s }

func TestAssignmentServiceLifecycle(t *testing.T) {
	svc, repo, notifier := newAssignmentFixture()
	repo.items["a1"] = &models.Assignment{
		ID: "a1", CampaignID: "c1", AnalystID: "an1",
		Status: models.AssignmentStatusWIP, AnalystUserID: "u1", AnalystUserFullName: "Ana",
	}

	// WIP -> SUBMITTED
	updated, err := svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: statusPtr("submitted")})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusSubmitted, updated.Status)

	// SUBMITTED -> APPROVED notifies.
	updated, err = svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: statusPtr("APPROVED")})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusApproved, updated.Status)
	require.NotEmpty(t, notifier.kinds)
	assert.Equal(t, "assignment_approved", notifier.kinds[len(notifier.kinds)-1])

	// APPROVED is terminal.
	_, err = svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: statusPtr("WIP")})
	require.Error(t, err)
}

func TestAssignmentServiceRejectionReturnsToWIP(t *testing.T) {
	svc, repo, notifier := newAssignmentFixture()
	repo.items["a1"] = &models.Assignment{
		ID: "a1", CampaignID: "c1", AnalystID: "an1",
		Status: models.AssignmentStatusSubmitted, AnalystUserID: "u1",
	}

	updated, err := svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: statusPtr("REJECTED")})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusRejected, updated.Status)
	assert.Equal(t, "assignment_rejected", notifier.kinds[len(notifier.kinds)-1])

	updated, err = svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: statusPtr("WIP")})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusWIP, updated.Status)
}

func TestAssignmentServiceInvalidTransitions(t *testing.T) {
	svc, repo, _ := newAssignmentFixture()
	repo.items["a1"] = &models.Assignment{
		ID: "a1", CampaignID: "c1", AnalystID: "an1", Status: models.AssignmentStatusWIP,
	}

	_, err := svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: statusPtr("APPROVED")})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: statusPtr("NONSENSE")})
	require.Error(t, err)
}

func TestAssignmentServiceSameStatusUpdateIsAllowed(t *testing.T) {
	svc, repo, _ := newAssignmentFixture()
	repo.items["a1"] = &models.Assignment{
		ID: "a1", CampaignID: "c1", AnalystID: "an1", Status: models.AssignmentStatusWIP,
	}

	spots := 7
	updated, err := svc.Update(context.Background(), "a1", UpdateAssignmentRequest{
		Status: statusPtr("WIP"), TransmittedSpots: &spots,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.TransmittedSpots)
}

func TestAssignmentServiceDelete(t *testing.T) {
	svc, repo, _ := newAssignmentFixture()
	repo.items["a1"] = &models.Assignment{ID: "a1", Status: models.AssignmentStatusWIP}

	require.NoError(t, svc.Delete(context.Background(), "a1"))
	require.Error(t, svc.Delete(context.Background(), "a1"))
}

func TestValidTransitionTable(t *testing.T) {
	cases := []struct {
		from, to models.AssignmentStatus
		ok       bool
	}{
		{models.AssignmentStatusWIP, models.AssignmentStatusSubmitted, true},
		{models.AssignmentStatusWIP, models.AssignmentStatusApproved, false},
		{models.AssignmentStatusSubmitted, models.AssignmentStatusApproved, true},
		{models.AssignmentStatusSubmitted, models.AssignmentStatusRejected, true},
		{models.AssignmentStatusSubmitted, models.AssignmentStatusWIP, false},
		{models.AssignmentStatusRejected, models.AssignmentStatusWIP, true},
		{models.AssignmentStatusRejected, models.AssignmentStatusApproved, false},
		{models.AssignmentStatusApproved, models.AssignmentStatusWIP, false},
		{models.AssignmentStatusApproved, models.AssignmentStatusApproved, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, validTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
