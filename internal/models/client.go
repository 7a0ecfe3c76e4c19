package models

import "time"

// Client is an advertiser whose campaigns are monitored.
type Client struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	Phone        string    `db:"phone" json:"phone"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClientFilter captures list filters for clients.
type ClientFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
