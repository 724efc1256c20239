package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TZID resolution must not depend on host zoneinfo

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	appLog "icsdiff/internal/log"
	"icsdiff/internal/model"
)

// ParseError reports that an input could not be read as a calendar.
// Source names which input failed (e.g. "base" or a file path).
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// uidNamespace seeds the name-based UIDs generated for VEVENTs that lack one.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:icsdiff:uid"))

// Parse parses a single ICS payload into events.
//
//   - Timezones come from the library's TZID handling, so the same instant
//     written as UTC or as local time with a TZID yields equal keys.
//   - A malformed DTSTART/DTEND/DURATION fails the whole payload.
//   - RRULE is canonicalised but never expanded.
func Parse(source string, body []byte) ([]model.Event, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ParseError{Source: source, Err: errors.New("empty ICS body")}
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	vevents := cal.Events()
	events := make([]model.Event, 0, len(vevents))
	for i, ve := range vevents {
		ev, err := parseVEvent(ve)
		if err != nil {
			return nil, &ParseError{Source: source, Err: fmt.Errorf("vevent %d: %w", i, err)}
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "source", source, "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Name = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("DTSTART %q: %w", dtStart.Value, err)
	}
	out.Begin = start
	out.AllDay = isDateValue(dtStart)

	end, err := parseEnd(ve, start, out.AllDay)
	if err != nil {
		return out, err
	}
	out.End = end

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		out.Recurrence = canonicalRRule(p.Value)
	}

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		out.UID = p.Value
	} else {
		out.UID = syntheticUID(out)
		appLog.Warn("vevent without UID; using content-derived UID", "uid", out.UID, "summary", out.Name)
	}

	return out, nil
}

// parseEnd resolves the end of an event: DTEND, else DURATION, else the
// RFC 5545 default (one day for DATE starts, zero length otherwise).
func parseEnd(ve *ical.VEvent, start time.Time, allDay bool) (time.Time, error) {
	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			return time.Time{}, fmt.Errorf("DTEND %q: %w", dtEnd.Value, err)
		}
		return end, nil
	}

	if p := ve.GetProperty("DURATION"); p != nil {
		d, err := parseDuration(p.Value)
		if err != nil {
			return time.Time{}, fmt.Errorf("DURATION %q: %w", p.Value, err)
		}
		return start.Add(d), nil
	}

	if allDay {
		return start.AddDate(0, 0, 1), nil
	}
	return start, nil
}

// isDateValue reports whether a DTSTART carries a DATE (all-day) value:
// VALUE=DATE or no 'T' in the value.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// canonicalRRule normalises an RRULE value through rrule-go so that two
// spellings of the same rule export identically. Unparseable rules are kept
// verbatim.
func canonicalRRule(v string) string {
	raw := strings.TrimPrefix(strings.TrimSpace(v), "RRULE:")
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		appLog.Warn("keeping unparseable RRULE verbatim", "rrule", raw, "err", err)
		return raw
	}
	return opt.RRuleString()
}

// syntheticUID derives a stable UID from the comparable content, so an
// event without UID gets the same identity in both snapshots as long as its
// content is unchanged.
func syntheticUID(ev model.Event) string {
	k := ev.Key()
	name := strings.Join([]string{
		k.Name,
		k.Begin.Format(time.RFC3339Nano),
		k.End.Format(time.RFC3339Nano),
		k.Location,
	}, "\x1f")
	return uuid.NewSHA1(uidNamespace, []byte(name)).String()
}
