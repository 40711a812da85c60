package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pvesely/go-cleaning-log/internal/domain"
	"github.com/pvesely/go-cleaning-log/internal/repo"
	"github.com/pvesely/go-cleaning-log/internal/timefmt"
)

// repoShim adapts the repo package free functions to the RecordRepo
// interface, mirroring the wiring the router performs in production.
type repoShim struct{}

func (repoShim) CreateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error {
	return repo.CreateRecord(ctx, db, r)
}
func (repoShim) GetRecord(ctx context.Context, db *gorm.DB, id uint) (*domain.CleaningRecord, error) {
	return repo.GetRecord(ctx, db, id)
}
func (repoShim) UpdateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error {
	return repo.UpdateRecord(ctx, db, r)
}
func (repoShim) DeleteRecord(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteRecord(ctx, db, id)
}
func (repoShim) ListRecords(ctx context.Context, db *gorm.DB) ([]domain.CleaningRecord, error) {
	return repo.ListRecords(ctx, db)
}
func (repoShim) MarkAllPaid(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.MarkAllPaid(ctx, db)
}

var svcSeq int

func newService(t *testing.T) *RecordService {
	t.Helper()
	svcSeq++
	dsn := fmt.Sprintf("file:recordsvc%d?mode=memory&cache=shared", svcSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	s := NewRecordService(db, repoShim{}, timefmt.ForName("cs"))
	// Frozen clock keeps "today" fallbacks deterministic.
	s.Now = func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestDefaults(t *testing.T) {
	s := newService(t)
	d := s.Defaults()
	if d.Date != domain.NewDate(2024, time.March, 15) {
		t.Fatalf("default date = %v", d.Date)
	}
	if d.TimeFrom != domain.NewTimeOfDay(9, 0) {
		t.Fatalf("default start = %v", d.TimeFrom)
	}
	if d.CleanerCount != 1 || d.IsPaid || d.TimeTo != nil {
		t.Fatalf("defaults = %+v", d)
	}
}

func TestCreate_ValidForm(t *testing.T) {
	s := newService(t)
	rec, err := s.Create(context.Background(), RecordForm{
		Date:         "1.3.2024",
		TimeFrom:     "8:00",
		TimeTo:       "10:30",
		CleanerCount: "2",
		IsPaid:       "true", // ignored on create
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if rec.Date != domain.NewDate(2024, time.March, 1) {
		t.Fatalf("date = %v", rec.Date)
	}
	if rec.IsPaid {
		t.Fatalf("created record must start unpaid")
	}
	if h := rec.TotalHours(); h == nil || *h != 5.0 {
		t.Fatalf("TotalHours = %v, want 5.0", h)
	}
	if !rec.IsComplete() {
		t.Fatalf("record with end time must be complete")
	}

	got, err := s.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get after Create: %v", err)
	}
	if got.Date != rec.Date || got.TimeFrom != rec.TimeFrom || got.CleanerCount != rec.CleanerCount {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, rec)
	}
}

func TestCreate_MalformedFieldsFallBackToDefaults(t *testing.T) {
	s := newService(t)
	rec, err := s.Create(context.Background(), RecordForm{
		Date:         "not-a-date",
		TimeFrom:     "nonsense",
		TimeTo:       "also nonsense",
		CleanerCount: "eleventy",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Date != domain.NewDate(2024, time.March, 15) {
		t.Fatalf("date fallback = %v, want today", rec.Date)
	}
	if rec.TimeFrom != domain.NewTimeOfDay(9, 0) {
		t.Fatalf("start fallback = %v, want 09:00", rec.TimeFrom)
	}
	if rec.TimeTo != nil {
		t.Fatalf("end time fallback must be absent, got %v", rec.TimeTo)
	}
	if rec.CleanerCount != 1 {
		t.Fatalf("cleaner fallback = %d, want 1", rec.CleanerCount)
	}
}

func TestCreate_OutOfRangeCleanerCountFallsBack(t *testing.T) {
	s := newService(t)
	for _, v := range []string{"0", "11", "-3"} {
		rec, err := s.Create(context.Background(), RecordForm{
			Date: "1.3.2024", TimeFrom: "8:00", CleanerCount: v,
		})
		if err != nil {
			t.Fatalf("Create(%q): %v", v, err)
		}
		if rec.CleanerCount != 1 {
			t.Fatalf("CleanerCount(%q) = %d, want fallback 1", v, rec.CleanerCount)
		}
	}
}

func TestUpdate_InvalidDateKeepsCurrentValue(t *testing.T) {
	s := newService(t)
	rec, err := s.Create(context.Background(), RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", TimeTo: "10:00", CleanerCount: "2",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = s.Update(context.Background(), rec.ID, RecordForm{
		Date:         "31.31.31",
		TimeFrom:     "8:30",
		TimeTo:       "10:00",
		CleanerCount: "2",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Date != domain.NewDate(2024, time.March, 1) {
		t.Fatalf("date = %v, want unchanged 1.3.2024", got.Date)
	}
	if got.TimeFrom != domain.NewTimeOfDay(8, 30) {
		t.Fatalf("valid field not applied: %v", got.TimeFrom)
	}
}

func TestUpdate_EmptyTimeToClears_MalformedKeeps(t *testing.T) {
	s := newService(t)
	rec, err := s.Create(context.Background(), RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", TimeTo: "10:00", CleanerCount: "2",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Malformed, non-empty value keeps the stored end time.
	if err := s.Update(context.Background(), rec.ID, RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", TimeTo: "later", CleanerCount: "2",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(context.Background(), rec.ID)
	if got.TimeTo == nil || *got.TimeTo != domain.NewTimeOfDay(10, 0) {
		t.Fatalf("malformed TimeTo should keep current value, got %v", got.TimeTo)
	}

	// Empty value clears it (visit reopened).
	if err := s.Update(context.Background(), rec.ID, RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", TimeTo: "", CleanerCount: "2",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = s.Get(context.Background(), rec.ID)
	if got.TimeTo != nil {
		t.Fatalf("empty TimeTo should clear the end time, got %v", got.TimeTo)
	}
}

func TestUpdate_IsPaidFollowsCheckbox(t *testing.T) {
	s := newService(t)
	rec, err := s.Create(context.Background(), RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", CleanerCount: "1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Update(context.Background(), rec.ID, RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", CleanerCount: "1", IsPaid: "true",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(context.Background(), rec.ID)
	if !got.IsPaid {
		t.Fatalf("IsPaid not set from checkbox")
	}

	// Checkbox absent -> unpaid again.
	if err := s.Update(context.Background(), rec.ID, RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", CleanerCount: "1",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = s.Get(context.Background(), rec.ID)
	if got.IsPaid {
		t.Fatalf("IsPaid not cleared when checkbox absent")
	}
}

func TestUpdate_MissingRecord(t *testing.T) {
	s := newService(t)
	err := s.Update(context.Background(), 999, RecordForm{Date: "1.3.2024"})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestDelete_MissingIsNoop(t *testing.T) {
	s := newService(t)
	if err := s.Delete(context.Background(), 999); err != nil {
		t.Fatalf("Delete of missing id: %v", err)
	}
}

func TestMarkAllPaid_Idempotent(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, RecordForm{
			Date: fmt.Sprintf("%d.3.2024", i+1), TimeFrom: "8:00", CleanerCount: "1",
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	n, err := s.MarkAllPaid(ctx)
	if err != nil || n != 3 {
		t.Fatalf("first MarkAllPaid = (%d, %v), want 3 rows", n, err)
	}
	n, err = s.MarkAllPaid(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second MarkAllPaid = (%d, %v), want 0 rows", n, err)
	}
}

func TestList_SummaryAggregates(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	// One paid, complete record.
	paid, err := s.Create(ctx, RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", TimeTo: "10:00", CleanerCount: "1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Update(ctx, paid.ID, RecordForm{
		Date: "1.3.2024", TimeFrom: "8:00", TimeTo: "10:00", CleanerCount: "1", IsPaid: "true",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// One unpaid, incomplete record.
	if _, err := s.Create(ctx, RecordForm{
		Date: "2.3.2024", TimeFrom: "9:00", CleanerCount: "2",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sum, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if sum.Total != 2 {
		t.Fatalf("Total = %d", sum.Total)
	}
	if sum.UnpaidCount != 1 || sum.UnpaidIncompleteCount != 1 {
		t.Fatalf("unpaid=%d incomplete=%d, want 1 and 1", sum.UnpaidCount, sum.UnpaidIncompleteCount)
	}
	if sum.UnpaidHours != 0 {
		t.Fatalf("UnpaidHours = %v, want 0 (incomplete contributes nothing)", sum.UnpaidHours)
	}
	if !sum.HasUnpaid() {
		t.Fatalf("HasUnpaid should be true")
	}
}

func TestList_GroupsByMonthNewestFirst(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	for _, f := range []RecordForm{
		{Date: "10.2.2024", TimeFrom: "8:00", CleanerCount: "1"},
		{Date: "1.3.2024", TimeFrom: "8:00", CleanerCount: "1"},
		{Date: "15.3.2024", TimeFrom: "8:00", CleanerCount: "1"},
	} {
		if _, err := s.Create(ctx, f); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	sum, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sum.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(sum.Groups))
	}
	if sum.Groups[0].Month != time.March || sum.Groups[1].Month != time.February {
		t.Fatalf("group order: %v then %v", sum.Groups[0].Month, sum.Groups[1].Month)
	}
	if len(sum.Groups[0].Records) != 2 {
		t.Fatalf("march records = %d, want 2", len(sum.Groups[0].Records))
	}
	// Inside a month, records keep the stored order: newest date first.
	if sum.Groups[0].Records[0].Date.Day != 15 {
		t.Fatalf("march order: first day = %d, want 15", sum.Groups[0].Records[0].Date.Day)
	}
}
