package models

import "time"

// Analyst is the monitoring profile attached to an ANALYST user.
//
// An assignment carries both the profile id and the user id; the user id is
// the canonical key for grouping work (see AnalystUserID on Assignment).
type Analyst struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Region    string    `db:"region" json:"region"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined from users for list views.
	FullName string `db:"full_name" json:"full_name"`
}

// AnalystFilter captures list filters for analysts.
type AnalystFilter struct {
	Region   string
	Active   *bool
	Page     int
	PageSize int
}
