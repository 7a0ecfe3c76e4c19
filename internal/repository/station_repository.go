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

const stationColumns = "id, name, region, kind, active, created_at, updated_at"

// StationRepository provides database access for stations.
type StationRepository struct {
	db *sqlx.DB
}

// NewStationRepository creates a new instance of StationRepository.
func NewStationRepository(db *sqlx.DB) *StationRepository {
	return &StationRepository{db: db}
}

// FindByID returns a station by identifier.
func (r *StationRepository) FindByID(ctx context.Context, id string) (*models.Station, error) {
	query := fmt.Sprintf("SELECT %s FROM stations WHERE id = $1 LIMIT 1", stationColumns)
	var station models.Station
	if err := r.db.GetContext(ctx, &station, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find station by id: %w", err)
	}
	return &station, nil
}

// List returns stations matching the filter with a total count.
func (r *StationRepository) List(ctx context.Context, filter models.StationFilter) ([]models.Station, int, error) {
	baseQuery := `FROM stations WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Region != "" {
		conditions = append(conditions, fmt.Sprintf("region = $%d", len(args)+1))
		args = append(args, filter.Region)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", stationColumns, baseQuery, pageSize, offset)

	var stations []models.Station
	if err := r.db.SelectContext(ctx, &stations, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list stations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count stations: %w", err)
	}

	return stations, total, nil
}

// ListAll returns every station without pagination, for exports.
func (r *StationRepository) ListAll(ctx context.Context) ([]models.Station, error) {
	query := fmt.Sprintf("SELECT %s FROM stations ORDER BY name ASC", stationColumns)
	var stations []models.Station
	if err := r.db.SelectContext(ctx, &stations, query); err != nil {
		return nil, fmt.Errorf("list all stations: %w", err)
	}
	return stations, nil
}

// Create inserts a new station.
func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	if station.ID == "" {
		station.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	station.CreatedAt = now
	station.UpdatedAt = now

	const query = `INSERT INTO stations (id, name, region, kind, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, station.ID, station.Name, station.Region, station.Kind, station.Active, station.CreatedAt, station.UpdatedAt); err != nil {
		return fmt.Errorf("create station: %w", err)
	}
	return nil
}

// Update persists mutable station fields.
func (r *StationRepository) Update(ctx context.Context, station *models.Station) error {
	station.UpdatedAt = time.Now().UTC()
	const query = `UPDATE stations SET name = $2, region = $3, kind = $4, active = $5, updated_at = $6 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, station.ID, station.Name, station.Region, station.Kind, station.Active, station.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update station: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a station.
func (r *StationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete station: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
