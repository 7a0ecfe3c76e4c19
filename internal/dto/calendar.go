package dto

import "github.com/mediatrack/campaign-api/internal/models"

// DayStatus classifies a calendar day by the most urgent assignment on it.
type DayStatus string

const (
	DayStatusOverdue  DayStatus = "overdue"
	DayStatusUpcoming DayStatus = "upcoming"
	DayStatusApproved DayStatus = "approved"
	DayStatusNone     DayStatus = "none"
)

// CalendarDay groups the assignments due (or assigned) on one day.
type CalendarDay struct {
	Date        string              `json:"date"`
	Status      DayStatus           `json:"status"`
	Assignments []models.Assignment `json:"assignments"`
}

// CalendarResponse maps ISO day strings to their buckets.
type CalendarResponse struct {
	Days map[string]CalendarDay `json:"days"`
}
