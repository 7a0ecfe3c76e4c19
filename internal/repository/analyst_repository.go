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

const analystColumns = "a.id, a.user_id, a.region, a.active, a.created_at, a.updated_at, u.full_name"

// AnalystRepository provides database access for analyst profiles.
type AnalystRepository struct {
	db *sqlx.DB
}

// NewAnalystRepository creates a new instance of AnalystRepository.
func NewAnalystRepository(db *sqlx.DB) *AnalystRepository {
	return &AnalystRepository{db: db}
}

// FindByID returns an analyst profile by identifier.
func (r *AnalystRepository) FindByID(ctx context.Context, id string) (*models.Analyst, error) {
	query := fmt.Sprintf("SELECT %s FROM analysts a JOIN users u ON u.id = a.user_id WHERE a.id = $1 LIMIT 1", analystColumns)
	var analyst models.Analyst
	if err := r.db.GetContext(ctx, &analyst, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find analyst by id: %w", err)
	}
	return &analyst, nil
}

// FindByUserID returns the analyst profile attached to the given user.
func (r *AnalystRepository) FindByUserID(ctx context.Context, userID string) (*models.Analyst, error) {
	query := fmt.Sprintf("SELECT %s FROM analysts a JOIN users u ON u.id = a.user_id WHERE a.user_id = $1 LIMIT 1", analystColumns)
	var analyst models.Analyst
	if err := r.db.GetContext(ctx, &analyst, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find analyst by user id: %w", err)
	}
	return &analyst, nil
}

// List returns analyst profiles matching the filter with a total count.
func (r *AnalystRepository) List(ctx context.Context, filter models.AnalystFilter) ([]models.Analyst, int, error) {
	baseQuery := `FROM analysts a JOIN users u ON u.id = a.user_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Region != "" {
		conditions = append(conditions, fmt.Sprintf("a.region = $%d", len(args)+1))
		args = append(args, filter.Region)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("a.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY u.full_name ASC LIMIT %d OFFSET %d", analystColumns, baseQuery, pageSize, offset)

	var analysts []models.Analyst
	if err := r.db.SelectContext(ctx, &analysts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list analysts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count analysts: %w", err)
	}

	return analysts, total, nil
}

// ListAll returns every analyst profile without pagination, for exports.
func (r *AnalystRepository) ListAll(ctx context.Context) ([]models.Analyst, error) {
	query := fmt.Sprintf("SELECT %s FROM analysts a JOIN users u ON u.id = a.user_id ORDER BY u.full_name ASC", analystColumns)
	var analysts []models.Analyst
	if err := r.db.SelectContext(ctx, &analysts, query); err != nil {
		return nil, fmt.Errorf("list all analysts: %w", err)
	}
	return analysts, nil
}

// Create inserts a new analyst profile.
func (r *AnalystRepository) Create(ctx context.Context, analyst *models.Analyst) error {
	if analyst.ID == "" {
		analyst.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	analyst.CreatedAt = now
	analyst.UpdatedAt = now

	const query = `INSERT INTO analysts (id, user_id, region, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, analyst.ID, analyst.UserID, analyst.Region, analyst.Active, analyst.CreatedAt, analyst.UpdatedAt); err != nil {
		return fmt.Errorf("create analyst: %w", err)
	}
	return nil
}

// Update persists mutable analyst fields.
func (r *AnalystRepository) Update(ctx context.Context, analyst *models.Analyst) error {
	analyst.UpdatedAt = time.Now().UTC()
	const query = `UPDATE analysts SET region = $2, active = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, analyst.ID, analyst.Region, analyst.Active, analyst.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update analyst: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an analyst profile.
func (r *AnalystRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analysts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analyst: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
