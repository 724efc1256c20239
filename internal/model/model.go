package model

import "time"

// Event represents one VEVENT of a calendar snapshot, reduced to the fields
// the diff cares about.
//
// UID is the only field expected to stay stable across two snapshots of the
// same logical event. A parsed Event is treated as immutable; annotation
// works on copies.
type Event struct {
	UID string // iCalendar UID

	Name     string // SUMMARY
	Location string

	// Begin / End keep the timezone the source declared. Comparisons must
	// go through ComparableKey or time.Time.Equal, never ==.
	Begin time.Time
	End   time.Time

	AllDay bool

	// Recurrence is the canonical RRULE value, if the event had one. It is
	// carried through to the export but never expanded.
	Recurrence string
}

// ComparableKey is the content fingerprint of an Event: (Name, Begin, End,
// Location). Begin and End are normalized to UTC without monotonic reading,
// so two keys are == exactly when names and locations match byte for byte
// and both timestamps name the same instant. The UID is deliberately not
// part of the key.
type ComparableKey struct {
	Name     string
	Begin    time.Time
	End      time.Time
	Location string
}

// Key derives the ComparableKey of e.
func (e Event) Key() ComparableKey {
	return ComparableKey{
		Name:     e.Name,
		Begin:    instant(e.Begin),
		End:      instant(e.End),
		Location: e.Location,
	}
}

// WithName returns a copy of e with Name replaced.
func (e Event) WithName(name string) Event {
	e.Name = name
	return e
}

func instant(t time.Time) time.Time {
	return t.UTC().Round(0)
}
