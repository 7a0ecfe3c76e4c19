package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/internal/service"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
	"github.com/mediatrack/campaign-api/pkg/response"
)

// ImportExportHandler wires the synchronous tabular import/export endpoints.
type ImportExportHandler struct {
	service *service.ExportService
}

// NewImportExportHandler creates a new handler.
func NewImportExportHandler(svc *service.ExportService) *ImportExportHandler {
	return &ImportExportHandler{service: svc}
}

// Export godoc
// @Summary Export a resource collection
// @Tags ImportExport
// @Produce octet-stream
// @Param type path string true "Resource type (clients, campaigns, stations, analysts, assignments)"
// @Param format query string false "csv, xlsx or pdf (default csv)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /import_export/{type}/export [get]
func (h *ImportExportHandler) Export(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	if !models.ValidExportFormat(format) {
		response.Error(c, appErrors.ErrUnsupportedFormat)
		return
	}

	payload, contentType, filename, err := h.service.Export(c.Request.Context(), c.Param("type"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}

// Import godoc
// @Summary Import records into a resource collection
// @Tags ImportExport
// @Accept mpfd
// @Produce json
// @Param type path string true "Resource type (clients, campaigns, stations)"
// @Param file formData file true "CSV or XLSX upload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /import_export/{type}/import [post]
func (h *ImportExportHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	upload, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.ErrValidation.WithMessage("file upload is required"))
		return
	}

	format := models.ExportFormatCSV
	if strings.HasSuffix(strings.ToLower(upload.Filename), ".xlsx") {
		format = models.ExportFormatXLSX
	}

	file, err := upload.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to open upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	raw, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}

	created, err := h.service.Import(c.Request.Context(), c.Param("type"), format, raw, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"created": created}, nil)
}
