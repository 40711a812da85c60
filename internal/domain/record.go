// Package domain defines the persistence model for cleaning visits.
// The single entity is mapped with GORM and forms the core data layer
// of the application.
package domain

import (
	"time"
)

// CleaningRecord represents one logged cleaning visit: the calendar date,
// the time window, how many cleaners came, and whether the visit has been
// paid for.
//
// Fields:
//   - ID: auto-incremented primary key, immutable once assigned.
//   - Date: calendar date of the visit (stored as ISO text).
//   - TimeFrom: start time of the visit.
//   - TimeTo: end time; nil while the visit is still ongoing.
//   - CleanerCount: number of cleaners, parsed into [1,10] at the form
//     boundary.
//   - IsPaid: payment status; always false at creation.
//   - CreatedAt: insertion timestamp (UTC), set once.
type CleaningRecord struct {
	ID           uint       `json:"id"            gorm:"primaryKey;autoIncrement"`
	Date         Date       `json:"date"          gorm:"type:text;not null;index:idx_records_order,priority:1"`
	TimeFrom     TimeOfDay  `json:"time_from"     gorm:"type:text;not null;index:idx_records_order,priority:2"`
	TimeTo       *TimeOfDay `json:"time_to,omitempty" gorm:"type:text"`
	CleanerCount int        `json:"cleaner_count" gorm:"not null;default:1"`
	IsPaid       bool       `json:"is_paid"       gorm:"not null;default:false"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName returns the database table name for CleaningRecord.
func (CleaningRecord) TableName() string { return "cleaning_records" }

// IsComplete reports whether the visit has ended, i.e. an end time was set.
func (r CleaningRecord) IsComplete() bool { return r.TimeTo != nil }

// TotalHours returns the billable hours of the visit: the duration between
// TimeFrom and TimeTo multiplied by the cleaner count. It returns nil while
// the visit is incomplete.
//
// A TimeTo earlier than TimeFrom yields a negative value. Visits spanning
// midnight are not wrapped around; this mirrors the recorded behavior and
// is an accepted limitation rather than a computation to correct here.
func (r CleaningRecord) TotalHours() *float64 {
	if r.TimeTo == nil {
		return nil
	}
	h := float64(r.TimeTo.Minutes()-r.TimeFrom.Minutes()) / 60.0 * float64(r.CleanerCount)
	return &h
}
