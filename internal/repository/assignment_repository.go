package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mediatrack/campaign-api/internal/models"
)

// Assignment rows always join the analyst profile and its user so views can
// group by the canonical analyst user id without extra lookups.
const assignmentColumns = `s.id, s.campaign_id, s.station_id, s.analyst_id, s.status, s.due_date, s.assigned_at,
	s.planned_spots, s.missed_spots, s.transmitted_spots, s.gain_spots, s.created_at, s.updated_at,
	a.user_id AS analyst_user_id, u.full_name AS analyst_user_full_name`

const assignmentJoins = `FROM assignments s
	JOIN analysts a ON a.id = s.analyst_id
	JOIN users u ON u.id = a.user_id`

// AssignmentRepository provides database access for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.id = $1 LIMIT 1", assignmentColumns, assignmentJoins)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &assignment, nil
}

// List returns assignments matching the filter with a total count.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	baseQuery := assignmentJoins + ` WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CampaignID != "" {
		conditions = append(conditions, fmt.Sprintf("s.campaign_id = $%d", len(args)+1))
		args = append(args, filter.CampaignID)
	}
	if filter.StationID != "" {
		conditions = append(conditions, fmt.Sprintf("s.station_id = $%d", len(args)+1))
		args = append(args, filter.StationID)
	}
	if filter.AnalystUserID != "" {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", len(args)+1))
		args = append(args, filter.AnalystUserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DueDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.due_date::date = $%d::date", len(args)+1))
		args = append(args, *filter.DueDate)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("s.due_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("s.due_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY s.due_date DESC NULLS LAST LIMIT %d OFFSET %d", assignmentColumns, baseQuery, pageSize, offset)

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// ListAll returns every assignment without pagination, for aggregation views.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY s.due_date DESC NULLS LAST", assignmentColumns, assignmentJoins)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list all assignments: %w", err)
	}
	return assignments, nil
}

// ListByClient returns assignments belonging to the client's campaigns within
// an optional due-date window.
func (r *AssignmentRepository) ListByClient(ctx context.Context, clientID string, from, to *time.Time) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s %s JOIN campaigns c ON c.id = s.campaign_id WHERE c.client_id = $1", assignmentColumns, assignmentJoins)
	args := []interface{}{clientID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND s.due_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND s.due_date <= $%d", len(args))
	}
	query += " ORDER BY s.due_date DESC NULLS LAST"

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments by client: %w", err)
	}
	return assignments, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusWIP
	}
	now := time.Now().UTC()
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = now
	}
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const query = `INSERT INTO assignments (id, campaign_id, station_id, analyst_id, status, due_date, assigned_at,
		planned_spots, missed_spots, transmitted_spots, gain_spots, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := r.db.ExecContext(ctx, query, assignment.ID, assignment.CampaignID, assignment.StationID, assignment.AnalystID,
		assignment.Status, assignment.DueDate, assignment.AssignedAt, assignment.PlannedSpots, assignment.MissedSpots,
		assignment.TransmittedSpots, assignment.GainSpots, assignment.CreatedAt, assignment.UpdatedAt); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update persists mutable assignment fields.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET campaign_id = $2, station_id = $3, analyst_id = $4, status = $5, due_date = $6,
		planned_spots = $7, missed_spots = $8, transmitted_spots = $9, gain_spots = $10, updated_at = $11 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, assignment.ID, assignment.CampaignID, assignment.StationID, assignment.AnalystID,
		assignment.Status, assignment.DueDate, assignment.PlannedSpots, assignment.MissedSpots, assignment.TransmittedSpots,
		assignment.GainSpots, assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
