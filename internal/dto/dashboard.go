package dto

// AdminDashboardResponse aggregates platform-wide counters for the admin view.
type AdminDashboardResponse struct {
	TotalClients      int               `json:"total_clients"`
	TotalCampaigns    int               `json:"total_campaigns"`
	ActiveCampaigns   int               `json:"active_campaigns"`
	TotalStations     int               `json:"total_stations"`
	TotalAnalysts     int               `json:"total_analysts"`
	OpenAssignments   int               `json:"open_assignments"`
	OverdueCount      int               `json:"overdue_count"`
	TopAnalysts       []AnalystWorkload `json:"top_analysts"`
	UnreadCount       int               `json:"unread_count"`
	PendingApprovals  int               `json:"pending_approvals"`
	RejectedThisMonth int               `json:"rejected_this_month"`
}

// ManagerDashboardResponse ranks analyst workload for assignment planning.
type ManagerDashboardResponse struct {
	Workload     WorkloadResponse       `json:"workload"`
	Calendar     map[string]CalendarDay `json:"calendar"`
	UnreadCount  int                    `json:"unread_count"`
	OverdueCount int                    `json:"overdue_count"`
}

// AccountantDashboardResponse summarises campaign execution per client.
type AccountantDashboardResponse struct {
	ClientSummaries []ClientExecutionSummary `json:"client_summaries"`
	UnreadCount     int                      `json:"unread_count"`
}

// ClientExecutionSummary is the per-client spot execution rollup.
type ClientExecutionSummary struct {
	ClientID         string  `json:"client_id"`
	ClientName       string  `json:"client_name"`
	PlannedSpots     int     `json:"planned_spots"`
	TransmittedSpots int     `json:"transmitted_spots"`
	MissedSpots      int     `json:"missed_spots"`
	GainSpots        int     `json:"gain_spots"`
	ExecutionRate    float64 `json:"execution_rate"`
}

// AnalystDashboardResponse shows one analyst's own queue and calendar.
type AnalystDashboardResponse struct {
	WIPCount     int                    `json:"wip_count"`
	OverdueCount int                    `json:"overdue_count"`
	Calendar     map[string]CalendarDay `json:"calendar"`
	UnreadCount  int                    `json:"unread_count"`
}
