package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/dto"
	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/internal/repository"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
	"github.com/mediatrack/campaign-api/pkg/export"
	"github.com/mediatrack/campaign-api/pkg/jobs"
	"github.com/mediatrack/campaign-api/pkg/storage"
)

// Resource types accepted by the sync import/export endpoints.
const (
	ExportResourceClients     = "clients"
	ExportResourceCampaigns   = "campaigns"
	ExportResourceStations    = "stations"
	ExportResourceAnalysts    = "analysts"
	ExportResourceAssignments = "assignments"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
}

type executionAssignmentLister interface {
	ListByClient(ctx context.Context, clientID string, from, to *time.Time) ([]models.Assignment, error)
}

type exportMetrics interface {
	CountExportJob(status string)
}

type exportAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ExportService renders tabular exports, ingests imports and runs the async
// campaign-execution export pipeline.
type ExportService struct {
	clients     clientRepository
	campaigns   campaignRepository
	stations    stationRepository
	analysts    analystRepository
	assignments assignmentRepository
	execution   executionAssignmentLister
	jobsRepo    exportJobStore
	auditor     exportAuditor

	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	metrics exportMetrics

	csv    *export.CSVExporter
	xlsx   *export.XLSXExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	now    func() time.Time
}

// ExportServiceParams bundles the dependencies for NewExportService.
type ExportServiceParams struct {
	Clients     clientRepository
	Campaigns   campaignRepository
	Stations    stationRepository
	Analysts    analystRepository
	Assignments assignmentRepository
	Execution   executionAssignmentLister
	Jobs        exportJobStore
	Auditor     exportAuditor
	Store       *storage.LocalStorage
	Signer      *storage.SignedURLSigner
	Metrics     exportMetrics
	Logger      *zap.Logger
	QueueConfig jobs.QueueConfig
}

// NewExportService constructs an ExportService and its worker queue. Call
// Start before enqueueing jobs and Stop on shutdown.
func NewExportService(params ExportServiceParams) *ExportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	s := &ExportService{
		clients:     params.Clients,
		campaigns:   params.Campaigns,
		stations:    params.Stations,
		analysts:    params.Analysts,
		assignments: params.Assignments,
		execution:   params.Execution,
		jobsRepo:    params.Jobs,
		auditor:     params.Auditor,
		store:       params.Store,
		signer:      params.Signer,
		metrics:     params.Metrics,
		csv:         export.NewCSVExporter(),
		xlsx:        export.NewXLSXExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      params.Logger,
		now:         time.Now,
	}
	if params.QueueConfig.Logger == nil {
		params.QueueConfig.Logger = params.Logger
	}
	s.queue = jobs.NewQueue("campaign-execution-exports", s.processJob, params.QueueConfig)
	return s
}

// Start launches the export worker queue.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export worker queue.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Export renders the named resource collection into the requested format and
// returns the payload with its content type and suggested filename.
func (s *ExportService) Export(ctx context.Context, resource string, format models.ExportFormat) ([]byte, string, string, error) {
	dataset, err := s.datasetFor(ctx, resource)
	if err != nil {
		return nil, "", "", err
	}

	payload, contentType, err := s.render(dataset, format, resource)
	if err != nil {
		return nil, "", "", err
	}
	filename := fmt.Sprintf("%s_%s.%s", resource, s.now().UTC().Format("20060102_150405"), format)
	return payload, contentType, filename, nil
}

// Import ingests uploaded tabular data into the named resource collection and
// returns the number of created records.
func (s *ExportService) Import(ctx context.Context, resource string, format models.ExportFormat, raw []byte, actorID string) (int, error) {
	var dataset export.Dataset
	var err error
	switch format {
	case models.ExportFormatCSV:
		dataset, err = s.csv.Parse(raw)
	case models.ExportFormatXLSX:
		dataset, err = s.xlsx.Parse(raw)
	default:
		return 0, appErrors.ErrUnsupportedFormat.WithMessage(fmt.Sprintf("cannot import from %s", format))
	}
	if err != nil {
		return 0, appErrors.ErrValidation.Wrap(err)
	}

	created := 0
	switch resource {
	case ExportResourceClients:
		created, err = s.importClients(ctx, dataset)
	case ExportResourceStations:
		created, err = s.importStations(ctx, dataset)
	case ExportResourceCampaigns:
		created, err = s.importCampaigns(ctx, dataset)
	default:
		return 0, appErrors.ErrValidation.WithMessage(fmt.Sprintf("resource %q does not support import", resource))
	}
	if err != nil {
		return created, err
	}

	s.audit(ctx, actorID, models.AuditActionImport, resource)
	return created, nil
}

// EnqueueExecutionExport validates and queues an async campaign-execution
// export for a client.
func (s *ExportService) EnqueueExecutionExport(ctx context.Context, userID string, req dto.ExportJobRequest) (*dto.ExportJobResponse, error) {
	if req.ClientID == "" {
		return nil, appErrors.ErrValidation.WithMessage("client_id is required")
	}
	if !models.ValidExportFormat(req.Format) {
		return nil, appErrors.ErrUnsupportedFormat
	}
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check client")
	}

	params := models.ExportJobParams{ClientID: req.ClientID, Format: req.Format}
	if req.StartDate != "" {
		ts, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, appErrors.ErrValidation.WithMessage("start_date must be YYYY-MM-DD")
		}
		params.StartDate = &ts
	}
	if req.EndDate != "" {
		ts, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, appErrors.ErrValidation.WithMessage("end_date must be YYYY-MM-DD")
		}
		params.EndDate = &ts
	}

	job := &models.ExportJob{Params: params, CreatedBy: userID}
	if err := s.jobsRepo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "campaign-execution"}); err != nil {
		msg := "worker queue unavailable"
		status := models.ExportStatusFailed
		_ = s.jobsRepo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &status, ErrorMessage: &msg})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export job")
	}

	s.audit(ctx, userID, models.AuditActionExport, "campaign-execution")
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// RenderExecution builds the campaign-execution report for one client and
// renders it synchronously, without going through the worker queue.
func (s *ExportService) RenderExecution(ctx context.Context, req dto.ExportJobRequest) ([]byte, string, string, error) {
	if req.ClientID == "" {
		return nil, "", "", appErrors.ErrValidation.WithMessage("client_id is required")
	}
	if !models.ValidExportFormat(req.Format) {
		return nil, "", "", appErrors.ErrUnsupportedFormat
	}
	var from, to *time.Time
	if req.StartDate != "" {
		ts, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, "", "", appErrors.ErrValidation.WithMessage("start_date must be YYYY-MM-DD")
		}
		from = &ts
	}
	if req.EndDate != "" {
		ts, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, "", "", appErrors.ErrValidation.WithMessage("end_date must be YYYY-MM-DD")
		}
		to = &ts
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", "", appErrors.ErrNotFound.WithMessage("client not found")
		}
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	assignments, err := s.execution.ListByClient(ctx, client.ID, from, to)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client assignments")
	}
	campaigns, err := s.campaigns.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client campaigns")
	}

	dataset := executionDataset(*client, campaigns, assignments)
	payload, contentType, err := s.render(dataset, req.Format, "Campaign Execution")
	if err != nil {
		return nil, "", "", err
	}
	filename := fmt.Sprintf("execution_%s_%s.%s", client.ID, s.now().UTC().Format("20060102"), req.Format)
	return payload, contentType, filename, nil
}

// JobStatus reports progress and the signed result URL for a job.
func (s *ExportService) JobStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, err := s.jobsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.WithMessage("export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return &dto.ExportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// Download resolves a signed token to the stored export file.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.ErrForbidden.WithMessage("invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.ErrNotFound.WithMessage("export file no longer available")
	}
	return file, relPath, nil
}

// CleanupExpired deletes stored export files older than the TTL.
func (s *ExportService) CleanupExpired(ttl time.Duration) {
	deleted, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("removed expired export files", zap.Int("count", len(deleted)))
	}
}

// ExecutionSummary computes the spot rollup for a single client.
func (s *ExportService) ExecutionSummary(ctx context.Context, client models.Client, from, to *time.Time) (dto.ClientExecutionSummary, error) {
	assignments, err := s.execution.ListByClient(ctx, client.ID, from, to)
	if err != nil {
		return dto.ClientExecutionSummary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client assignments")
	}
	return SummariseExecution(client, assignments), nil
}

// SummariseExecution rolls assignment spot counters up to a per-client
// execution summary. The rate is transmitted over planned, in percent.
func SummariseExecution(client models.Client, assignments []models.Assignment) dto.ClientExecutionSummary {
	summary := dto.ClientExecutionSummary{ClientID: client.ID, ClientName: client.Name}
	for _, a := range assignments {
		summary.PlannedSpots += a.PlannedSpots
		summary.TransmittedSpots += a.TransmittedSpots
		summary.MissedSpots += a.MissedSpots
		summary.GainSpots += a.GainSpots
	}
	if summary.PlannedSpots > 0 {
		summary.ExecutionRate = float64(summary.TransmittedSpots) / float64(summary.PlannedSpots) * 100
	}
	return summary
}

func (s *ExportService) processJob(ctx context.Context, job jobs.Job) error {
	stored, err := s.jobsRepo.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", job.ID, err)
	}

	processing := models.ExportStatusProcessing
	progress := 10
	if err := s.jobsRepo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}

	if err := s.buildExecutionExport(ctx, stored); err != nil {
		// The queue retries on error; only the final attempt is recorded as
		// FAILED so a retry cannot flip a terminally failed job back to life.
		if job.Attempt >= s.queue.MaxRetries() {
			s.failJob(ctx, job.ID, err)
		}
		return err
	}
	return nil
}

func (s *ExportService) buildExecutionExport(ctx context.Context, job *models.ExportJob) error {
	client, err := s.clients.FindByID(ctx, job.Params.ClientID)
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}
	assignments, err := s.execution.ListByClient(ctx, client.ID, job.Params.StartDate, job.Params.EndDate)
	if err != nil {
		return fmt.Errorf("load client assignments: %w", err)
	}
	campaigns, err := s.campaigns.ListByClient(ctx, client.ID)
	if err != nil {
		return fmt.Errorf("load client campaigns: %w", err)
	}

	dataset := executionDataset(*client, campaigns, assignments)
	payload, _, err := s.render(dataset, job.Params.Format, "Campaign Execution")
	if err != nil {
		return err
	}

	relPath := fmt.Sprintf("%s/execution_%s.%s", job.ID, client.ID, job.Params.Format)
	if _, err := s.store.Save(relPath, payload); err != nil {
		return fmt.Errorf("store export file: %w", err)
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return fmt.Errorf("sign export url: %w", err)
	}
	resultURL := fmt.Sprintf("/export/campaign-execution/download?token=%s", token)

	finished := models.ExportStatusFinished
	progress := 100
	now := s.now().UTC()
	if err := s.jobsRepo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:     &finished,
		Progress:   &progress,
		ResultURL:  &resultURL,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("finish export job: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CountExportJob(string(finished))
	}
	return nil
}

func (s *ExportService) failJob(ctx context.Context, id string, cause error) {
	failed := models.ExportStatusFailed
	msg := cause.Error()
	now := s.now().UTC()
	if err := s.jobsRepo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &failed,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Error("failed to mark export job failed", zap.String("job_id", id), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.CountExportJob(string(failed))
	}
}

func (s *ExportService) render(dataset export.Dataset, format models.ExportFormat, title string) ([]byte, string, error) {
	switch format {
	case models.ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case models.ExportFormatXLSX:
		payload, err := s.xlsx.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx")
		}
		return payload, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case models.ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	}
	return nil, "", appErrors.ErrUnsupportedFormat
}

func (s *ExportService) datasetFor(ctx context.Context, resource string) (export.Dataset, error) {
	switch resource {
	case ExportResourceClients:
		clients, err := s.clients.ListAll(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
		}
		dataset := export.Dataset{Headers: []string{"id", "name", "contact_email", "phone", "active"}}
		for _, c := range clients {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id": c.ID, "name": c.Name, "contact_email": c.ContactEmail,
				"phone": c.Phone, "active": strconv.FormatBool(c.Active),
			})
		}
		return dataset, nil

	case ExportResourceCampaigns:
		campaigns, err := s.campaigns.ListAll(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaigns")
		}
		dataset := export.Dataset{Headers: []string{"id", "name", "client_id", "status", "start_date", "end_date"}}
		for _, c := range campaigns {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id": c.ID, "name": c.Name, "client_id": c.ClientID, "status": string(c.Status),
				"start_date": formatDate(c.StartDate), "end_date": formatDate(c.EndDate),
			})
		}
		return dataset, nil

	case ExportResourceStations:
		stations, err := s.stations.ListAll(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stations")
		}
		dataset := export.Dataset{Headers: []string{"id", "name", "region", "kind", "active"}}
		for _, st := range stations {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id": st.ID, "name": st.Name, "region": st.Region, "kind": st.Kind,
				"active": strconv.FormatBool(st.Active),
			})
		}
		return dataset, nil

	case ExportResourceAnalysts:
		analysts, err := s.analysts.ListAll(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list analysts")
		}
		dataset := export.Dataset{Headers: []string{"id", "user_id", "full_name", "region", "active"}}
		for _, a := range analysts {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id": a.ID, "user_id": a.UserID, "full_name": a.FullName, "region": a.Region,
				"active": strconv.FormatBool(a.Active),
			})
		}
		return dataset, nil

	case ExportResourceAssignments:
		assignments, err := s.assignments.ListAll(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
		}
		dataset := export.Dataset{Headers: []string{
			"id", "campaign", "station", "analyst_user_id", "analyst", "status", "due_date",
			"planned_spots", "transmitted_spots", "missed_spots", "gain_spots",
		}}
		for _, a := range assignments {
			station := ""
			if a.StationID != nil {
				station = *a.StationID
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id": a.ID, "campaign": a.CampaignID, "station": station,
				"analyst_user_id": a.AnalystUserID, "analyst": a.AnalystUserFullName,
				"status": string(a.Status), "due_date": formatDate(a.DueDate),
				"planned_spots":     strconv.Itoa(a.PlannedSpots),
				"transmitted_spots": strconv.Itoa(a.TransmittedSpots),
				"missed_spots":      strconv.Itoa(a.MissedSpots),
				"gain_spots":        strconv.Itoa(a.GainSpots),
			})
		}
		return dataset, nil
	}
	return export.Dataset{}, appErrors.ErrValidation.WithMessage(fmt.Sprintf("unknown resource %q", resource))
}

func (s *ExportService) importClients(ctx context.Context, dataset export.Dataset) (int, error) {
	created := 0
	for i, row := range dataset.Rows {
		name := strings.TrimSpace(row["name"])
		if name == "" {
			return created, appErrors.ErrValidation.WithMessage(fmt.Sprintf("row %d: name is required", i+2))
		}
		client := &models.Client{
			Name:         name,
			ContactEmail: row["contact_email"],
			Phone:        row["phone"],
			Active:       parseBoolDefault(row["active"], true),
		}
		if err := s.clients.Create(ctx, client); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("row %d: failed to create client", i+2))
		}
		created++
	}
	return created, nil
}

func (s *ExportService) importStations(ctx context.Context, dataset export.Dataset) (int, error) {
	created := 0
	for i, row := range dataset.Rows {
		name := strings.TrimSpace(row["name"])
		if name == "" {
			return created, appErrors.ErrValidation.WithMessage(fmt.Sprintf("row %d: name is required", i+2))
		}
		kind := row["kind"]
		if kind == "" {
			kind = "radio"
		}
		station := &models.Station{
			Name:   name,
			Region: row["region"],
			Kind:   kind,
			Active: parseBoolDefault(row["active"], true),
		}
		if err := s.stations.Create(ctx, station); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("row %d: failed to create station", i+2))
		}
		created++
	}
	return created, nil
}

func (s *ExportService) importCampaigns(ctx context.Context, dataset export.Dataset) (int, error) {
	created := 0
	for i, row := range dataset.Rows {
		name := strings.TrimSpace(row["name"])
		clientID := strings.TrimSpace(row["client_id"])
		if name == "" || clientID == "" {
			return created, appErrors.ErrValidation.WithMessage(fmt.Sprintf("row %d: name and client_id are required", i+2))
		}
		if _, err := s.clients.FindByID(ctx, clientID); err != nil {
			return created, appErrors.ErrValidation.WithMessage(fmt.Sprintf("row %d: client %s does not exist", i+2, clientID))
		}
		status := models.CampaignStatus(strings.ToUpper(row["status"]))
		if row["status"] == "" {
			status = models.CampaignStatusDraft
		} else if !validCampaignStatus(status) {
			return created, appErrors.ErrValidation.WithMessage(fmt.Sprintf("row %d: unknown status %q", i+2, row["status"]))
		}
		campaign := &models.Campaign{
			Name:      name,
			ClientID:  clientID,
			Status:    status,
			StartDate: parseDatePtr(row["start_date"]),
			EndDate:   parseDatePtr(row["end_date"]),
		}
		if err := s.campaigns.Create(ctx, campaign); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("row %d: failed to create campaign", i+2))
		}
		created++
	}
	return created, nil
}

// executionDataset lays out per-campaign spot counters followed by a total row.
func executionDataset(client models.Client, campaigns []models.Campaign, assignments []models.Assignment) export.Dataset {
	byCampaign := make(map[string][]models.Assignment)
	for _, a := range assignments {
		byCampaign[a.CampaignID] = append(byCampaign[a.CampaignID], a)
	}

	names := make(map[string]string, len(campaigns))
	for _, c := range campaigns {
		names[c.ID] = c.Name
	}

	ids := make([]string, 0, len(byCampaign))
	for id := range byCampaign {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	dataset := export.Dataset{Headers: []string{
		"client", "campaign", "planned_spots", "transmitted_spots", "missed_spots", "gain_spots", "execution_rate",
	}}

	var totalPlanned, totalTransmitted, totalMissed, totalGain int
	for _, id := range ids {
		var planned, transmitted, missed, gain int
		for _, a := range byCampaign[id] {
			planned += a.PlannedSpots
			transmitted += a.TransmittedSpots
			missed += a.MissedSpots
			gain += a.GainSpots
		}
		totalPlanned += planned
		totalTransmitted += transmitted
		totalMissed += missed
		totalGain += gain

		name := names[id]
		if name == "" {
			name = id
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"client": client.Name, "campaign": name,
			"planned_spots":     strconv.Itoa(planned),
			"transmitted_spots": strconv.Itoa(transmitted),
			"missed_spots":      strconv.Itoa(missed),
			"gain_spots":        strconv.Itoa(gain),
			"execution_rate":    formatRate(transmitted, planned),
		})
	}

	dataset.Rows = append(dataset.Rows, map[string]string{
		"client": client.Name, "campaign": "TOTAL",
		"planned_spots":     strconv.Itoa(totalPlanned),
		"transmitted_spots": strconv.Itoa(totalTransmitted),
		"missed_spots":      strconv.Itoa(totalMissed),
		"gain_spots":        strconv.Itoa(totalGain),
		"execution_rate":    formatRate(totalTransmitted, totalPlanned),
	})
	return dataset
}

func (s *ExportService) audit(ctx context.Context, actorID, action, resource string) {
	if s.auditor == nil || actorID == "" {
		return
	}
	log := &models.AuditLog{UserID: &actorID, Action: action, Resource: resource}
	if err := s.auditor.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}

func formatDate(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format("2006-01-02")
}

func parseDatePtr(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &ts
}

func parseBoolDefault(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func formatRate(transmitted, planned int) string {
	if planned == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(transmitted)/float64(planned)*100)
}
