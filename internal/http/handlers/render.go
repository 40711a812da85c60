// View models and rendering helpers.
//
// Templates receive only pre-formatted strings; every locale-sensitive
// value (dates, times, hour totals) is rendered here so the templates stay
// free of parsing and formatting logic.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pvesely/go-cleaning-log/internal/domain"
	"github.com/pvesely/go-cleaning-log/internal/http/middleware"
	"github.com/pvesely/go-cleaning-log/internal/services"
	"github.com/pvesely/go-cleaning-log/internal/timefmt"
)

// recordView is one table row of the list page.
type recordView struct {
	ID           uint
	Date         string
	TimeFrom     string
	TimeTo       string // empty while the visit is ongoing
	CleanerCount int
	Hours        string // empty while the visit is ongoing
	IsPaid       bool
}

// monthView is one month section of the list page.
type monthView struct {
	Heading string
	Records []recordView
}

// listView is the full data of the list template.
type listView struct {
	Title     string
	CSRFToken string

	Groups []monthView

	Total                 int
	HasUnpaid             bool
	UnpaidCount           int
	UnpaidIncompleteCount int
	UnpaidHours           string
}

// formView is the data of the shared create/edit form template.
type formView struct {
	Title     string
	CSRFToken string
	Action    string
	IsEdit    bool

	ID           uint
	Date         string
	TimeFrom     string
	TimeTo       string
	CleanerCount int
	IsPaid       bool
}

// newListView formats a list summary for the template.
func newListView(sum *services.ListSummary, loc timefmt.Locale, csrf string) listView {
	v := listView{
		Title:                 "Přehled",
		CSRFToken:             csrf,
		Total:                 sum.Total,
		HasUnpaid:             sum.HasUnpaid(),
		UnpaidCount:           sum.UnpaidCount,
		UnpaidIncompleteCount: sum.UnpaidIncompleteCount,
		UnpaidHours:           formatHours(sum.UnpaidHours),
	}
	for _, g := range sum.Groups {
		mv := monthView{
			Heading: loc.MonthYear(domain.NewDate(g.Year, g.Month, 1)),
			Records: make([]recordView, 0, len(g.Records)),
		}
		for _, r := range g.Records {
			mv.Records = append(mv.Records, newRecordView(r, loc))
		}
		v.Groups = append(v.Groups, mv)
	}
	return v
}

func newRecordView(r domain.CleaningRecord, loc timefmt.Locale) recordView {
	v := recordView{
		ID:           r.ID,
		Date:         loc.FormatDate(r.Date),
		TimeFrom:     loc.FormatTime(r.TimeFrom),
		CleanerCount: r.CleanerCount,
		IsPaid:       r.IsPaid,
	}
	if r.TimeTo != nil {
		v.TimeTo = loc.FormatTime(*r.TimeTo)
	}
	if h := r.TotalHours(); h != nil {
		v.Hours = formatHours(*h)
	}
	return v
}

// newFormView formats a record for the create/edit form. In create mode the
// record carries the service defaults and the paid checkbox is hidden.
func newFormView(r *domain.CleaningRecord, edit bool, loc timefmt.Locale, csrf string) formView {
	v := formView{
		Title:        "Nový záznam",
		CSRFToken:    csrf,
		Action:       "/add",
		IsEdit:       edit,
		ID:           r.ID,
		Date:         loc.FormatDate(r.Date),
		TimeFrom:     loc.FormatTime(r.TimeFrom),
		CleanerCount: r.CleanerCount,
		IsPaid:       r.IsPaid,
	}
	if edit {
		v.Title = "Upravit záznam"
		v.Action = fmt.Sprintf("/edit/%d", r.ID)
	}
	if r.TimeTo != nil {
		v.TimeTo = loc.FormatTime(*r.TimeTo)
	}
	return v
}

// formatHours renders an hour total with one decimal place, e.g. "5.0".
func formatHours(h float64) string {
	return fmt.Sprintf("%.1f", h)
}

// redirectHome issues the 302 every successful (or fail-soft) POST ends in.
func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

// renderFailure logs an unexpected error and renders the generic error
// page. Reserved for database-level failures; policy-level outcomes
// (missing records, malformed input) never reach it.
func renderFailure(c *gin.Context, err error, msg string) {
	middleware.LoggerFrom(c).Error().Err(err).Msg(msg)
	c.HTML(http.StatusInternalServerError, middleware.ErrorTemplateName, gin.H{
		"Title":   "Něco se pokazilo",
		"Message": "Požadavek se nepodařilo zpracovat. Zkuste to prosím znovu.",
	})
	c.Abort()
}
