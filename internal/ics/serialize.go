package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"icsdiff/internal/model"
)

// DefaultProductID is used for PRODID when SerializeOptions leaves it empty.
const DefaultProductID = "-//icsdiff//icsdiff//EN"

// SerializeOptions controls calendar-level output.
type SerializeOptions struct {
	ProductID string
	// Stamp is written as DTSTAMP on every VEVENT. Callers pass their
	// clock's "now" so output is reproducible in tests.
	Stamp time.Time
}

// Serialize renders events as a VCALENDAR with CRLF line endings, in the
// order given.
func Serialize(events []model.Event, opts SerializeOptions) string {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(opts.ProductID)
	cal.SetMethod(ical.MethodPublish)

	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(opts.Stamp)

		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Begin)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Begin)
			ve.SetEndAt(ev.End)
		}

		ve.SetSummary(ev.Name)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Recurrence != "" {
			ve.SetProperty(ical.ComponentPropertyRrule, ev.Recurrence)
		}
	}

	return NormalizeLineEndings(cal.Serialize())
}

// NormalizeLineEndings rewrites any mix of LF, CR and CRLF into CRLF and
// guarantees a trailing CRLF on non-empty output.
func NormalizeLineEndings(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimRight(s, "\n")
	return strings.ReplaceAll(s, "\n", "\r\n") + "\r\n"
}
