package models

import "time"

// CampaignStatus tracks the campaign lifecycle.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusActive    CampaignStatus = "ACTIVE"
	CampaignStatusPaused    CampaignStatus = "PAUSED"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
)

// Campaign is a monitored advertising campaign belonging to a client.
type Campaign struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	ClientID  string         `db:"client_id" json:"client_id"`
	Status    CampaignStatus `db:"status" json:"status"`
	StartDate *time.Time     `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time     `db:"end_date" json:"end_date,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// CampaignFilter captures list filters for campaigns.
type CampaignFilter struct {
	ClientID string
	Status   *CampaignStatus
	Search   string
	Page     int
	PageSize int
}
