// Cleaning-record HTTP handlers.
//
// This file exposes the server-rendered endpoints of the application:
//   - GET  /              (month-grouped list with the unpaid summary)
//   - GET  /add           (empty create form pre-filled with defaults)
//   - POST /add           (create, then redirect home)
//   - GET  /edit/:id      (edit form; stale ids redirect home)
//   - POST /edit/:id      (update or, with the delete field set, delete)
//   - POST /mark-all-paid (bulk payment, then redirect home)
//
// Handlers are transport-thin: they lift form values into a RecordForm,
// call the record service, and translate results into redirects or rendered
// pages. All parsing policy lives in the service; a handler never rejects
// malformed input.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pvesely/go-cleaning-log/internal/domain"
	"github.com/pvesely/go-cleaning-log/internal/http/middleware"
	"github.com/pvesely/go-cleaning-log/internal/services"
	"github.com/pvesely/go-cleaning-log/internal/timefmt"
)

// RecordService defines the record operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RecordService interface {
	// List builds the list-page summary: grouped records plus unpaid totals.
	List(ctx context.Context) (*services.ListSummary, error)
	// Defaults returns the pre-filled values for the empty create form.
	Defaults() domain.CleaningRecord
	// Create inserts a new record parsed under the fallback policy.
	Create(ctx context.Context, form services.RecordForm) (*domain.CleaningRecord, error)
	// Get fetches a record, or services.ErrRecordNotFound.
	Get(ctx context.Context, id uint) (*domain.CleaningRecord, error)
	// Update re-parses the form against an existing record.
	Update(ctx context.Context, id uint, form services.RecordForm) error
	// Delete removes a record; missing ids are a no-op.
	Delete(ctx context.Context, id uint) error
	// MarkAllPaid marks every unpaid record paid, returning rows changed.
	MarkAllPaid(ctx context.Context) (int64, error)
}

// Handlers groups the HTTP endpoints of the cleaning log. It depends on the
// abstract service interface to keep transport concerns separate from the
// parsing policy, and on a locale for rendering dates and times.
type Handlers struct {
	svc    RecordService
	locale timefmt.Locale
}

// New constructs a Handlers instance bound to the given service and locale.
func New(svc RecordService, locale timefmt.Locale) *Handlers {
	return &Handlers{svc: svc, locale: locale}
}

// recordForm lifts the submitted POST fields into the service's form type.
// Values pass through untouched; parsing happens in the service.
func recordForm(c *gin.Context) services.RecordForm {
	return services.RecordForm{
		Date:         c.PostForm("date"),
		TimeFrom:     c.PostForm("timeFrom"),
		TimeTo:       c.PostForm("timeTo"),
		CleanerCount: c.PostForm("cleanerCount"),
		IsPaid:       c.PostForm("isPaid"),
	}
}

// recordID parses the :id route parameter. The boolean is false for
// anything that is not a positive integer; callers redirect home in that
// case, same as for a record that no longer exists.
func recordID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ShowList renders the home page: all records grouped by month, newest
// first, with the unpaid summary banner when anything is outstanding.
func (h *Handlers) ShowList(c *gin.Context) {
	sum, err := h.svc.List(c.Request.Context())
	if err != nil {
		renderFailure(c, err, "loading records failed")
		return
	}
	c.HTML(http.StatusOK, "list", newListView(sum, h.locale, middleware.TokenFrom(c)))
}

// ShowCreateForm renders the empty create form pre-filled with the
// defaults: today's date, a 09:00 start, one cleaner.
func (h *Handlers) ShowCreateForm(c *gin.Context) {
	rec := h.svc.Defaults()
	c.HTML(http.StatusOK, "form", newFormView(&rec, false, h.locale, middleware.TokenFrom(c)))
}

// CreateRecord inserts a new record from the submitted form and redirects
// home. Malformed fields fall back to defaults inside the service, so the
// only failure mode here is the database.
func (h *Handlers) CreateRecord(c *gin.Context) {
	if _, err := h.svc.Create(c.Request.Context(), recordForm(c)); err != nil {
		renderFailure(c, err, "creating record failed")
		return
	}
	redirectHome(c)
}

// ShowEditForm renders the edit form for an existing record. A stale or
// malformed id silently redirects home instead of erroring.
func (h *Handlers) ShowEditForm(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		redirectHome(c)
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			redirectHome(c)
			return
		}
		renderFailure(c, err, "loading record failed")
		return
	}
	c.HTML(http.StatusOK, "form", newFormView(rec, true, h.locale, middleware.TokenFrom(c)))
}

// UpdateRecord applies the submitted edit form and redirects home. When the
// form carries the delete field the record is removed instead. A record
// that disappeared meanwhile also redirects home.
func (h *Handlers) UpdateRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		redirectHome(c)
		return
	}

	if _, deleting := c.GetPostForm("delete"); deleting {
		if err := h.svc.Delete(c.Request.Context(), id); err != nil {
			renderFailure(c, err, "deleting record failed")
			return
		}
		redirectHome(c)
		return
	}

	if err := h.svc.Update(c.Request.Context(), id, recordForm(c)); err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			redirectHome(c)
			return
		}
		renderFailure(c, err, "updating record failed")
		return
	}
	redirectHome(c)
}

// MarkAllPaid marks every unpaid record as paid and redirects home.
// Idempotent; pressing the button twice changes nothing the second time.
func (h *Handlers) MarkAllPaid(c *gin.Context) {
	n, err := h.svc.MarkAllPaid(c.Request.Context())
	if err != nil {
		renderFailure(c, err, "marking records paid failed")
		return
	}
	middleware.LoggerFrom(c).Info().Int64("records", n).Msg("marked all records paid")
	redirectHome(c)
}
