package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ExportFormat identifies a rendered export format.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ValidExportFormat reports whether the format can be rendered.
func ValidExportFormat(format ExportFormat) bool {
	switch format {
	case ExportFormatCSV, ExportFormatXLSX, ExportFormatPDF:
		return true
	}
	return false
}

// ExportJobStatus tracks the async export lifecycle.
type ExportJobStatus string

const (
	ExportStatusQueued     ExportJobStatus = "QUEUED"
	ExportStatusProcessing ExportJobStatus = "PROCESSING"
	ExportStatusFinished   ExportJobStatus = "FINISHED"
	ExportStatusFailed     ExportJobStatus = "FAILED"
)

// ExportJobParams captures the campaign-execution export request.
type ExportJobParams struct {
	ClientID  string       `json:"client_id"`
	Format    ExportFormat `json:"format"`
	StartDate *time.Time   `json:"start_date,omitempty"`
	EndDate   *time.Time   `json:"end_date,omitempty"`
}

// Value serialises params for storage in a jsonb column.
func (p ExportJobParams) Value() ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export params: %w", err)
	}
	return raw, nil
}

// ExportJob is a queued campaign-execution export.
type ExportJob struct {
	ID           string          `db:"id" json:"id"`
	Params       ExportJobParams `db:"-" json:"params"`
	RawParams    []byte          `db:"params" json:"-"`
	Status       ExportJobStatus `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}

// DecodeParams hydrates Params from the stored jsonb payload.
func (j *ExportJob) DecodeParams() error {
	if len(j.RawParams) == 0 {
		return nil
	}
	if err := json.Unmarshal(j.RawParams, &j.Params); err != nil {
		return fmt.Errorf("unmarshal export params: %w", err)
	}
	return nil
}
