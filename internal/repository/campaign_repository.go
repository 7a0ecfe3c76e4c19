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

const campaignColumns = "id, name, client_id, status, start_date, end_date, created_at, updated_at"

// CampaignRepository provides database access for campaigns.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository creates a new instance of CampaignRepository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// FindByID returns a campaign by identifier.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := fmt.Sprintf("SELECT %s FROM campaigns WHERE id = $1 LIMIT 1", campaignColumns)
	var campaign models.Campaign
	if err := r.db.GetContext(ctx, &campaign, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find campaign by id: %w", err)
	}
	return &campaign, nil
}

// List returns campaigns matching the filter with a total count.
func (r *CampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	baseQuery := `FROM campaigns WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", campaignColumns, baseQuery, pageSize, offset)

	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	return campaigns, total, nil
}

// ListAll returns every campaign without pagination, for exports and
// name lookups in the aggregated views.
func (r *CampaignRepository) ListAll(ctx context.Context) ([]models.Campaign, error) {
	query := fmt.Sprintf("SELECT %s FROM campaigns ORDER BY created_at DESC", campaignColumns)
	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query); err != nil {
		return nil, fmt.Errorf("list all campaigns: %w", err)
	}
	return campaigns, nil
}

// ListByClient returns every campaign for the given client.
func (r *CampaignRepository) ListByClient(ctx context.Context, clientID string) ([]models.Campaign, error) {
	query := fmt.Sprintf("SELECT %s FROM campaigns WHERE client_id = $1 ORDER BY created_at DESC", campaignColumns)
	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, clientID); err != nil {
		return nil, fmt.Errorf("list campaigns by client: %w", err)
	}
	return campaigns, nil
}

// Create inserts a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusDraft
	}
	now := time.Now().UTC()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	const query = `INSERT INTO campaigns (id, name, client_id, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, campaign.ID, campaign.Name, campaign.ClientID, campaign.Status, campaign.StartDate, campaign.EndDate, campaign.CreatedAt, campaign.UpdatedAt); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// Update persists mutable campaign fields.
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaigns SET name = $2, client_id = $3, status = $4, start_date = $5, end_date = $6, updated_at = $7 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, campaign.ID, campaign.Name, campaign.ClientID, campaign.Status, campaign.StartDate, campaign.EndDate, campaign.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
