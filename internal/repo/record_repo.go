// Package repo implements the data persistence layer for cleaning records,
// backed by GORM. This file provides repository functions for the
// CleaningRecord model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found on read or full-row update, functions
//     return gorm.ErrRecordNotFound (also exported here as ErrNotFound).
//   - DeleteRecord is deliberately fail-soft: deleting a missing id is a
//     no-op and returns nil, matching the application's redirect-and-forget
//     policy for stale links.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pvesely/go-cleaning-log/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRecord inserts a new cleaning record. The primary key is assigned
// by the database and CreatedAt is stamped in UTC before the insert.
func CreateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// GetRecord fetches a single record by its id. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is
// returned.
func GetRecord(ctx context.Context, db *gorm.DB, id uint) (*domain.CleaningRecord, error) {
	var r domain.CleaningRecord
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRecord persists all mutable fields of an existing record in one
// UPDATE. CreatedAt is never touched. If no row matches the record's id,
// ErrNotFound is returned.
func UpdateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error {
	res := db.WithContext(ctx).
		Model(&domain.CleaningRecord{}).
		Where("id = ?", r.ID).
		Updates(map[string]any{
			"date":          r.Date,
			"time_from":     r.TimeFrom,
			"time_to":       r.TimeTo,
			"cleaner_count": r.CleanerCount,
			"is_paid":       r.IsPaid,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRecord removes a record by id. Deleting a missing id is a no-op
// and returns nil; other rows are never affected.
func DeleteRecord(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Delete(&domain.CleaningRecord{}, id).Error
}

// ListRecords returns every record ordered by visit date descending, then
// start time descending (most recent visit first). It returns an empty
// slice when the table is empty.
func ListRecords(ctx context.Context, db *gorm.DB) ([]domain.CleaningRecord, error) {
	var out []domain.CleaningRecord
	err := db.WithContext(ctx).
		Order("date desc").
		Order("time_from desc").
		Find(&out).Error
	return out, err
}

// MarkAllPaid flips is_paid to true on every currently-unpaid record in a
// single UPDATE and returns the number of rows changed. Calling it again
// once nothing is unpaid affects zero rows.
func MarkAllPaid(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.CleaningRecord{}).
		Where("is_paid = ?", false).
		Update("is_paid", true)
	return res.RowsAffected, res.Error
}

// RecordStats returns aggregate metadata for the table: the total number
// of rows and the latest CreatedAt among them. When the table is empty,
// the returned count is 0 and latest is nil. Used for startup logging and
// the health endpoint.
func RecordStats(ctx context.Context, db *gorm.DB) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.CleaningRecord{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
