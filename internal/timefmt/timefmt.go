// Package timefmt provides locale-aware parsing and formatting of the
// calendar dates and wall-clock times used throughout the application.
//
// The locale is an explicit parameter carried by a Locale value; there is no
// package-level mutable state. Callers resolve a Locale once (typically from
// configuration) and thread it through parsing, form rendering, and the
// month headings on the list page.
package timefmt

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/pvesely/go-cleaning-log/internal/domain"
)

// Locale bundles the date/time layouts and month names for one language.
type Locale struct {
	// Tag identifies the language this locale renders.
	Tag language.Tag
	// DateLayout is the Go reference layout for dates, e.g. "2.1.2006".
	DateLayout string
	// TimeLayout is the Go reference layout for times, e.g. "15:04".
	TimeLayout string

	months [12]string
}

var czech = Locale{
	Tag:        language.Czech,
	DateLayout: "2.1.2006",
	TimeLayout: "15:04",
	months: [12]string{
		"leden", "únor", "březen", "duben", "květen", "červen",
		"červenec", "srpen", "září", "říjen", "listopad", "prosinec",
	},
}

var english = Locale{
	Tag:        language.English,
	DateLayout: "2.1.2006",
	TimeLayout: "15:04",
	months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

var supported = []Locale{czech, english}

var matcher = language.NewMatcher([]language.Tag{czech.Tag, english.Tag})

// ForTag resolves the best-matching Locale for the given language tag.
// Unknown languages fall back to Czech (the first supported locale).
func ForTag(tag language.Tag) Locale {
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// ForName parses a BCP 47 language name (e.g. "cs", "en-GB") and resolves
// the matching Locale. Unparseable names resolve to the default locale.
func ForName(name string) Locale {
	tag, err := language.Parse(strings.TrimSpace(name))
	if err != nil {
		return supported[0]
	}
	return ForTag(tag)
}

// ParseDate parses a day.month.year date string, e.g. "1.3.2024".
func (l Locale) ParseDate(s string) (domain.Date, error) {
	t, err := parseInLayout(l.DateLayout, s)
	if err != nil {
		return domain.Date{}, fmt.Errorf("timefmt: invalid date %q: %w", s, err)
	}
	return domain.DateOf(t), nil
}

// FormatDate renders a date in the locale's layout, e.g. "1.3.2024".
func (l Locale) FormatDate(d domain.Date) string {
	return d.Time().Format(l.DateLayout)
}

// ParseTime parses an hour:minute time string, e.g. "9:00" or "09:00".
func (l Locale) ParseTime(s string) (domain.TimeOfDay, error) {
	t, err := parseInLayout(l.TimeLayout, s)
	if err != nil {
		return domain.TimeOfDay{}, fmt.Errorf("timefmt: invalid time %q: %w", s, err)
	}
	return domain.NewTimeOfDay(t.Hour(), t.Minute()), nil
}

// FormatTime renders a time in the locale's layout, e.g. "09:00".
func (l Locale) FormatTime(t domain.TimeOfDay) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MonthYear renders the month heading for a date, e.g. "březen 2024".
func (l Locale) MonthYear(d domain.Date) string {
	return fmt.Sprintf("%s %d", l.months[int(d.Month)-1], d.Year)
}

// parseInLayout wraps time.Parse and rejects empty input up front so that
// the zero time never slips through as a "parsed" value.
func parseInLayout(layout, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	return time.Parse(layout, s)
}
