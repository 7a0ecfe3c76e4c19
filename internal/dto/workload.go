package dto

import "github.com/mediatrack/campaign-api/internal/models"

// CampaignGroup is the per-campaign slice of an analyst's workload.
type CampaignGroup struct {
	CampaignID   string              `json:"campaign_id"`
	CampaignName string              `json:"campaign_name"`
	Assignments  []models.Assignment `json:"assignments"`
}

// AnalystWorkload summarises one analyst's open work, ranked by urgency.
type AnalystWorkload struct {
	AnalystUserID  string          `json:"analyst_user_id"`
	AnalystName    string          `json:"analyst_name"`
	WIPCount       int             `json:"wip_count"`
	OverdueCount   int             `json:"overdue_count"`
	CampaignGroups []CampaignGroup `json:"campaign_groups"`
}

// WorkloadResponse wraps the ranked analyst groups.
type WorkloadResponse struct {
	Groups  []AnalystWorkload `json:"groups"`
	Dropped int               `json:"dropped"`
}
