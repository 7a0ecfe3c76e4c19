package models

import "time"

// Station is a broadcast outlet (radio or TV) monitored for campaign spots.
type Station struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Region    string    `db:"region" json:"region"`
	Kind      string    `db:"kind" json:"kind"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StationFilter captures list filters for stations.
type StationFilter struct {
	Region   string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
