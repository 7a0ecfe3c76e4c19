package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediatrack/campaign-api/internal/middleware"
	"github.com/mediatrack/campaign-api/internal/service"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
	"github.com/mediatrack/campaign-api/pkg/response"
)

// DashboardHandler wires HTTP endpoints to the dashboard service.
type DashboardHandler struct {
	service *service.DashboardService
	enabled bool
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService, enabled bool) *DashboardHandler {
	return &DashboardHandler{service: svc, enabled: enabled}
}

// Admin godoc
// @Summary Admin dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !h.enabled {
		response.Error(c, appErrors.ErrNotFound.WithMessage("dashboards are disabled"))
		return
	}

	result, hit, err := h.service.Admin(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Manager godoc
// @Summary Manager dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/manager [get]
func (h *DashboardHandler) Manager(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !h.enabled {
		response.Error(c, appErrors.ErrNotFound.WithMessage("dashboards are disabled"))
		return
	}

	result, hit, err := h.service.Manager(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Accountant godoc
// @Summary Accountant dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/accountant [get]
func (h *DashboardHandler) Accountant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !h.enabled {
		response.Error(c, appErrors.ErrNotFound.WithMessage("dashboards are disabled"))
		return
	}

	result, hit, err := h.service.Accountant(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Analyst godoc
// @Summary Analyst dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/analyst [get]
func (h *DashboardHandler) Analyst(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !h.enabled {
		response.Error(c, appErrors.ErrNotFound.WithMessage("dashboards are disabled"))
		return
	}

	result, hit, err := h.service.Analyst(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
