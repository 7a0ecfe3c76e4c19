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

// StationHandler wires HTTP endpoints to the station service.
type StationHandler struct {
	service *service.StationService
}

// NewStationHandler creates a new handler.
func NewStationHandler(svc *service.StationService) *StationHandler {
	return &StationHandler{service: svc}
}

// List godoc
// @Summary List stations
// @Tags Stations
// @Produce json
// @Param region query string false "Filter by region"
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /stations [get]
func (h *StationHandler) List(c *gin.Context) {
	filter := models.StationFilter{
		Region:   c.Query("region"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}

	stations, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stations, pagination)
}

// Get godoc
// @Summary Get station
// @Tags Stations
// @Produce json
// @Param id path string true "Station ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stations/{id} [get]
func (h *StationHandler) Get(c *gin.Context) {
	station, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, station, nil)
}

// Create godoc
// @Summary Create station
// @Tags Stations
// @Accept json
// @Produce json
// @Param payload body service.CreateStationRequest true "Station payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /stations [post]
func (h *StationHandler) Create(c *gin.Context) {
	var req service.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid station payload"))
		return
	}

	station, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, station)
}

// Update godoc
// @Summary Update station
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station ID"
// @Param payload body service.UpdateStationRequest true "Station payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stations/{id} [put]
func (h *StationHandler) Update(c *gin.Context) {
	var req service.UpdateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid station payload"))
		return
	}

	station, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, station, nil)
}

// Delete godoc
// @Summary Delete station
// @Tags Stations
// @Produce json
// @Param id path string true "Station ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stations/{id} [delete]
func (h *StationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
