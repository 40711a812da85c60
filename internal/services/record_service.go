// Package services – RecordService
//
// This file implements the RecordService, which owns the lifecycle of
// cleaning records and the application's form-parsing policy. Submitted
// form values are parsed leniently: a field that fails to parse falls back
// to a default on create, or to the record's current value on edit, and is
// never reported back to the user as an error. This fail-soft behavior is
// deliberate — the tool is single-user and low-stakes — and callers relying
// on strict validation should treat any change to it as a behavior change.
//
// Service-level errors (e.g., ErrRecordNotFound) are returned for
// predictable cases so handlers can map them to redirects consistently.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pvesely/go-cleaning-log/internal/domain"
	"github.com/pvesely/go-cleaning-log/internal/timefmt"
	"github.com/pvesely/go-cleaning-log/internal/utils"
)

// Create-form fallback defaults.
const (
	defaultStartHour    = 9
	defaultCleanerCount = 1
	minCleanerCount     = 1
	maxCleanerCount     = 10
)

// RecordRepo defines the repository contract required by RecordService.
// Implementations are responsible for persistence of cleaning records.
type RecordRepo interface {
	// CreateRecord inserts a new record and assigns its id.
	CreateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error

	// GetRecord fetches a record by id, or gorm.ErrRecordNotFound.
	GetRecord(ctx context.Context, db *gorm.DB, id uint) (*domain.CleaningRecord, error)

	// UpdateRecord persists all mutable fields of an existing record.
	UpdateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error

	// DeleteRecord removes a record; missing ids are a no-op.
	DeleteRecord(ctx context.Context, db *gorm.DB, id uint) error

	// ListRecords returns all records ordered by date desc, start time desc.
	ListRecords(ctx context.Context, db *gorm.DB) ([]domain.CleaningRecord, error)

	// MarkAllPaid marks every unpaid record paid, returning rows changed.
	MarkAllPaid(ctx context.Context, db *gorm.DB) (int64, error)
}

// RecordForm carries the raw string values submitted by the create/edit
// form. Parsing and the fallback policy live in the service, not in the
// HTTP layer.
type RecordForm struct {
	Date         string // day.month.year, e.g. "1.3.2024"
	TimeFrom     string // hour:minute, e.g. "8:00"
	TimeTo       string // hour:minute; empty while the visit is ongoing
	CleanerCount string // integer 1..10
	IsPaid       string // "true" when the edit-form checkbox is ticked
}

// MonthGroup is one month-year bucket of the list view, in display order.
type MonthGroup struct {
	Year    int
	Month   time.Month
	Records []domain.CleaningRecord
}

// ListSummary is the full view data for the list page: records grouped by
// month plus the unpaid aggregates shown in the summary banner.
type ListSummary struct {
	Groups []MonthGroup

	Total                 int
	UnpaidCount           int
	UnpaidIncompleteCount int
	// UnpaidHours sums TotalHours over unpaid records that have a value;
	// incomplete visits contribute nothing.
	UnpaidHours float64
}

// HasUnpaid reports whether the summary banner should be shown at all.
func (s ListSummary) HasUnpaid() bool { return s.UnpaidCount > 0 }

// RecordService provides record-level operations: creating and editing
// records under the lenient parsing policy, deleting, bulk payment, and
// building the list summary.
type RecordService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the record repository used by this service.
	Repo RecordRepo
	// Locale drives date/time parsing and is threaded through explicitly;
	// there is no ambient culture state.
	Locale timefmt.Locale
	// Now returns the current time; tests override it for stable defaults.
	Now func() time.Time
}

// NewRecordService constructs a RecordService bound to db and repo, using
// the given locale and the wall clock.
func NewRecordService(db *gorm.DB, repo RecordRepo, loc timefmt.Locale) *RecordService {
	return &RecordService{DB: db, Repo: repo, Locale: loc, Now: time.Now}
}

func (s *RecordService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Defaults returns the pre-filled values for an empty create form:
// today's date, a 09:00 start, one cleaner, unpaid, no end time.
func (s *RecordService) Defaults() domain.CleaningRecord {
	return domain.CleaningRecord{
		Date:         domain.DateOf(s.now()),
		TimeFrom:     domain.NewTimeOfDay(defaultStartHour, 0),
		CleanerCount: defaultCleanerCount,
	}
}

// Create parses the submitted form under the fallback policy and inserts a
// new record. Every malformed field is silently replaced: the date by
// today, the start time by 09:00, the cleaner count by 1, and the end time
// by "still ongoing". Records always start unpaid regardless of input.
func (s *RecordService) Create(ctx context.Context, form RecordForm) (*domain.CleaningRecord, error) {
	defaults := s.Defaults()

	rec := domain.CleaningRecord{
		Date:         defaults.Date,
		TimeFrom:     defaults.TimeFrom,
		CleanerCount: defaults.CleanerCount,
	}
	if d, err := s.Locale.ParseDate(form.Date); err == nil {
		rec.Date = d
	}
	if t, err := s.Locale.ParseTime(form.TimeFrom); err == nil {
		rec.TimeFrom = t
	}
	if t, err := s.Locale.ParseTime(form.TimeTo); err == nil {
		rec.TimeTo = &t
	}
	if n, ok := parseCleanerCount(form.CleanerCount); ok {
		rec.CleanerCount = n
	}

	if err := s.Repo.CreateRecord(ctx, s.DB, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get fetches a record by id, mapping the repository's not-found error to
// ErrRecordNotFound.
func (s *RecordService) Get(ctx context.Context, id uint) (*domain.CleaningRecord, error) {
	rec, err := s.Repo.GetRecord(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Update re-parses the form against an existing record. Here the fallback
// target is the record's current value, so a malformed field leaves the
// stored value untouched instead of substituting a fixed default. The end
// time is cleared only when the submitted value is empty; a malformed
// non-empty value keeps the current one. IsPaid follows the checkbox.
//
// Returns ErrRecordNotFound when the id no longer exists.
func (s *RecordService) Update(ctx context.Context, id uint, form RecordForm) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if d, err := s.Locale.ParseDate(form.Date); err == nil {
		rec.Date = d
	}
	if t, err := s.Locale.ParseTime(form.TimeFrom); err == nil {
		rec.TimeFrom = t
	}
	if strings.TrimSpace(form.TimeTo) == "" {
		rec.TimeTo = nil
	} else if t, err := s.Locale.ParseTime(form.TimeTo); err == nil {
		rec.TimeTo = &t
	}
	if n, ok := parseCleanerCount(form.CleanerCount); ok {
		rec.CleanerCount = n
	}
	rec.IsPaid = form.IsPaid == "true"

	if err := s.Repo.UpdateRecord(ctx, s.DB, rec); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	return nil
}

// Delete removes a record. A missing id is a no-op, per the fail-soft
// policy for stale edit links.
func (s *RecordService) Delete(ctx context.Context, id uint) error {
	return s.Repo.DeleteRecord(ctx, s.DB, id)
}

// MarkAllPaid marks every unpaid record as paid in one statement and
// returns the number of records changed. Idempotent.
func (s *RecordService) MarkAllPaid(ctx context.Context) (int64, error) {
	return s.Repo.MarkAllPaid(ctx, s.DB)
}

// List fetches all records and builds the list-page summary: records
// grouped by month-year in their stored order, plus the unpaid aggregates.
func (s *RecordService) List(ctx context.Context) (*ListSummary, error) {
	records, err := s.Repo.ListRecords(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	sum := &ListSummary{Total: len(records)}
	for _, r := range records {
		if !r.IsPaid {
			sum.UnpaidCount++
			if h := r.TotalHours(); h != nil {
				sum.UnpaidHours += *h
			} else {
				sum.UnpaidIncompleteCount++
			}
		}
	}
	sum.Groups = groupByMonth(records)
	return sum, nil
}

// groupByMonth buckets records by (year, month), preserving the incoming
// record order inside each bucket and ordering buckets newest first.
func groupByMonth(records []domain.CleaningRecord) []MonthGroup {
	type key struct {
		year  int
		month time.Month
	}
	index := map[key]int{}
	var groups []MonthGroup
	for _, r := range records {
		k := key{r.Date.Year, r.Date.Month}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, MonthGroup{Year: k.year, Month: k.month})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year > groups[j].Year
		}
		return groups[i].Month > groups[j].Month
	})
	return groups
}

// parseCleanerCount parses the cleaner-count field, accepting only values
// inside [1,10]. Anything else counts as a parse failure so the caller's
// fallback applies.
func parseCleanerCount(s string) (int, bool) {
	n := utils.AtoiDefault(strings.TrimSpace(s), 0)
	if n < minCleanerCount || n > maxCleanerCount {
		return 0, false
	}
	return n, true
}
