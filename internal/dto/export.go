package dto

import "github.com/mediatrack/campaign-api/internal/models"

// ExportJobRequest creates an async campaign-execution export.
type ExportJobRequest struct {
	ClientID  string              `json:"client_id" validate:"required"`
	Format    models.ExportFormat `json:"format" validate:"required"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
}

// ExportJobResponse acknowledges a queued job.
type ExportJobResponse struct {
	ID       string                 `json:"id"`
	Status   models.ExportJobStatus `json:"status"`
	Progress int                    `json:"progress"`
}

// ExportStatusResponse reports job progress and the signed result URL.
type ExportStatusResponse struct {
	ID        string                 `json:"id"`
	Status    models.ExportJobStatus `json:"status"`
	Progress  int                    `json:"progress"`
	ResultURL *string                `json:"result_url,omitempty"`
	Error     *string                `json:"error,omitempty"`
}
