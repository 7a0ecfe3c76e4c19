package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatrack/campaign-api/internal/middleware"
	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/internal/service"
)

type fakeAssignmentRepo struct {
	items      map[string]*models.Assignment
	lastFilter models.AssignmentFilter
}

func (f *fakeAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := f.items[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *fakeAssignmentRepo) ListAll(ctx context.Context) ([]models.Assignment, error) {
	var all []models.Assignment
	for _, a := range f.items {
		all = append(all, *a)
	}
	return all, nil
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	return nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	f.items[assignment.ID] = assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeCampaignFinder struct{}

func (f *fakeCampaignFinder) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	return &models.Campaign{ID: id, Name: "Spring Launch"}, nil
}

type fakeAnalystFinder struct{}

func (f *fakeAnalystFinder) FindByID(ctx context.Context, id string) (*models.Analyst, error) {
	return &models.Analyst{ID: id, UserID: "u1"}, nil
}

func newAssignmentHandlerFixture(repo *fakeAssignmentRepo) *AssignmentHandler {
	assignments := service.NewAssignmentService(service.AssignmentServiceParams{
		Assignments: repo,
		Campaigns:   &fakeCampaignFinder{},
		Analysts:    &fakeAnalystFinder{},
	})
	workload := service.NewWorkloadService(repo, &emptyCampaignLister{}, nil, nil, 0)
	calendar := service.NewCalendarService(repo, nil)
	return NewAssignmentHandler(assignments, workload, calendar)
}

type emptyCampaignLister struct{}

func (e *emptyCampaignLister) ListAll(ctx context.Context) ([]models.Campaign, error) {
	return nil, nil
}

func analystClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleAnalyst}
}

func TestAssignmentHandlerWorkloadRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAssignmentHandlerFixture(&fakeAssignmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assignments/workload?date=31-12-2024", nil)

	handler.Workload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignmentHandlerWorkloadSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAssignmentHandlerFixture(&fakeAssignmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assignments/workload?date=2024-06-01", nil)

	handler.Workload(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAssignmentHandlerListScopesAnalystToSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAssignmentRepo{}
	handler := newAssignmentHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assignments?analyst_user_id=u9", nil)
	c.Set(middleware.ContextUserKey, analystClaims("u1"))

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", repo.lastFilter.AnalystUserID)
}

func TestAssignmentHandlerGetBlocksOtherAnalysts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", CampaignID: "c1", AnalystID: "an1", AnalystUserID: "u2", Status: models.AssignmentStatusWIP},
	}}
	handler := newAssignmentHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assignments/a1", nil)
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	c.Set(middleware.ContextUserKey, analystClaims("u1"))

	handler.Get(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAssignmentHandlerUpdateAnalystCannotApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", CampaignID: "c1", AnalystID: "an1", AnalystUserID: "u1", Status: models.AssignmentStatusSubmitted},
	}}
	handler := newAssignmentHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := bytes.NewBufferString(`{"status":"APPROVED"}`)
	c.Request = httptest.NewRequest(http.MethodPatch, "/assignments/a1", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	c.Set(middleware.ContextUserKey, analystClaims("u1"))

	handler.Update(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAssignmentHandlerUpdateAnalystSubmitsOwnWork(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", CampaignID: "c1", AnalystID: "an1", AnalystUserID: "u1", Status: models.AssignmentStatusWIP},
	}}
	handler := newAssignmentHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := bytes.NewBufferString(`{"status":"SUBMITTED"}`)
	c.Request = httptest.NewRequest(http.MethodPatch, "/assignments/a1", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	c.Set(middleware.ContextUserKey, analystClaims("u1"))

	handler.Update(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AssignmentStatusSubmitted, repo.items["a1"].Status)
}

func TestAssignmentHandlerCalendarScopesAnalystToSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", CampaignID: "c1", AnalystUserID: "u1", Status: models.AssignmentStatusWIP, DueDate: &due},
		"a2": {ID: "a2", CampaignID: "c1", AnalystUserID: "u2", Status: models.AssignmentStatusWIP, DueDate: &due},
	}}
	handler := newAssignmentHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assignments/calendar?analyst_user_id=u2", nil)
	c.Set(middleware.ContextUserKey, analystClaims("u1"))

	handler.Calendar(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"u2"`)
}
