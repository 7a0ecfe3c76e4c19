package models

import "time"

// AssignmentStatus tracks the submission/approval lifecycle of monitoring work.
type AssignmentStatus string

const (
	AssignmentStatusWIP       AssignmentStatus = "WIP"
	AssignmentStatusSubmitted AssignmentStatus = "SUBMITTED"
	AssignmentStatusApproved  AssignmentStatus = "APPROVED"
	AssignmentStatusRejected  AssignmentStatus = "REJECTED"
)

// ValidAssignmentStatus reports whether the status is a known lifecycle state.
func ValidAssignmentStatus(status AssignmentStatus) bool {
	switch status {
	case AssignmentStatusWIP, AssignmentStatusSubmitted, AssignmentStatusApproved, AssignmentStatusRejected:
		return true
	}
	return false
}

// Assignment ties a campaign (and optionally a station) to an analyst and
// tracks spot counts through the monitoring lifecycle.
type Assignment struct {
	ID         string           `db:"id" json:"id"`
	CampaignID string           `db:"campaign_id" json:"campaign"`
	StationID  *string          `db:"station_id" json:"station,omitempty"`
	AnalystID  string           `db:"analyst_id" json:"analyst"`
	Status     AssignmentStatus `db:"status" json:"status"`
	DueDate    *time.Time       `db:"due_date" json:"due_date,omitempty"`
	AssignedAt time.Time        `db:"assigned_at" json:"assigned_at"`

	PlannedSpots     int `db:"planned_spots" json:"planned_spots"`
	MissedSpots      int `db:"missed_spots" json:"missed_spots"`
	TransmittedSpots int `db:"transmitted_spots" json:"transmitted_spots"`
	GainSpots        int `db:"gain_spots" json:"gain_spots"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined from analysts/users; the user id is the canonical analyst key.
	AnalystUserID       string `db:"analyst_user_id" json:"analyst_user_id"`
	AnalystUserFullName string `db:"analyst_user_full_name" json:"analyst_user_full_name"`
}

// IsOverdue reports whether the assignment is WIP with a due date in the past.
// A missing due date is never overdue.
func (a Assignment) IsOverdue(now time.Time) bool {
	return a.Status == AssignmentStatusWIP && a.DueDate != nil && a.DueDate.Before(now)
}

// AssignmentFilter captures list filters for assignments.
type AssignmentFilter struct {
	CampaignID    string
	StationID     string
	AnalystUserID string
	Status        *AssignmentStatus
	DueDate       *time.Time
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}
