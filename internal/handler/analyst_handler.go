package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/internal/service"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
	"github.com/mediatrack/campaign-api/pkg/response"
)

// AnalystHandler wires HTTP endpoints to the analyst service.
type AnalystHandler struct {
	service *service.AnalystService
}

// NewAnalystHandler creates a new handler.
func NewAnalystHandler(svc *service.AnalystService) *AnalystHandler {
	return &AnalystHandler{service: svc}
}

// List godoc
// @Summary List analysts
// @Tags Analysts
// @Produce json
// @Param region query string false "Filter by region"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /analysts [get]
func (h *AnalystHandler) List(c *gin.Context) {
	filter := models.AnalystFilter{
		Region:   c.Query("region"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}

	analysts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysts, pagination)
}

// Get godoc
// @Summary Get analyst
// @Tags Analysts
// @Produce json
// @Param id path string true "Analyst ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analysts/{id} [get]
func (h *AnalystHandler) Get(c *gin.Context) {
	analyst, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analyst, nil)
}

// Create godoc
// @Summary Create analyst profile
// @Tags Analysts
// @Accept json
// @Produce json
// @Param payload body service.CreateAnalystRequest true "Analyst payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analysts [post]
func (h *AnalystHandler) Create(c *gin.Context) {
	var req service.CreateAnalystRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analyst payload"))
		return
	}

	analyst, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, analyst)
}

// Update godoc
// @Summary Update analyst profile
// @Tags Analysts
// @Accept json
// @Produce json
// @Param id path string true "Analyst ID"
// @Param payload body service.UpdateAnalystRequest true "Analyst payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analysts/{id} [put]
func (h *AnalystHandler) Update(c *gin.Context) {
	var req service.UpdateAnalystRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analyst payload"))
		return
	}

	analyst, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analyst, nil)
}

// Delete godoc
// @Summary Delete analyst profile
// @Tags Analysts
// @Produce json
// @Param id path string true "Analyst ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analysts/{id} [delete]
func (h *AnalystHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
