package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediatrack/campaign-api/internal/middleware"
	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/internal/service"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
	"github.com/mediatrack/campaign-api/pkg/response"
)

// AssignmentHandler wires HTTP endpoints to the assignment, workload and
// calendar services.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	workload    *service.WorkloadService
	calendar    *service.CalendarService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(assignments *service.AssignmentService, workload *service.WorkloadService, calendar *service.CalendarService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, workload: workload, calendar: calendar}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param campaign query string false "Filter by campaign"
// @Param station query string false "Filter by station"
// @Param analyst_user_id query string false "Filter by analyst user"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	filter := models.AssignmentFilter{
		CampaignID:    c.Query("campaign"),
		StationID:     c.Query("station"),
		AnalystUserID: c.Query("analyst_user_id"),
		Page:          queryInt(c, "page"),
		PageSize:      queryInt(c, "page_size"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AssignmentStatus(strings.ToUpper(raw))
		filter.Status = &status
	}

	// Analysts only ever see their own queue.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleAnalyst {
		filter.AnalystUserID = claims.UserID
	}

	assignments, pagination, err := h.assignments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.assignments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleAnalyst && assignment.AnalystUserID != claims.UserID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	// Analysts can only work their own assignments and cannot approve them.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleAnalyst {
		existing, err := h.assignments.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		if existing.AnalystUserID != claims.UserID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		if req.Status != nil {
			status := models.AssignmentStatus(strings.ToUpper(*req.Status))
			if status == models.AssignmentStatusApproved || status == models.AssignmentStatusRejected {
				response.Error(c, appErrors.ErrForbidden.WithMessage("analysts cannot approve or reject work"))
				return
			}
		}
	}

	assignment, err := h.assignments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Workload godoc
// @Summary Analyst workload ranking
// @Description Groups assignments by analyst and campaign, ranked by urgency
// @Tags Assignments
// @Produce json
// @Param date query string false "Restrict to one due date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/workload [get]
func (h *AssignmentHandler) Workload(c *gin.Context) {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.ErrValidation.WithMessage("date must be YYYY-MM-DD"))
			return
		}
		date = &ts
	}

	result, hit, err := h.workload.Workload(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Calendar godoc
// @Summary Assignment calendar
// @Description Buckets assignments by due day with per-day urgency status
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/calendar [get]
func (h *AssignmentHandler) Calendar(c *gin.Context) {
	analystUserID := c.Query("analyst_user_id")
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleAnalyst {
		analystUserID = claims.UserID
	}

	result, err := h.calendar.Calendar(c.Request.Context(), analystUserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
