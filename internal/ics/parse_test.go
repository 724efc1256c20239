package ics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendar(vevents ...string) []byte {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\nPRODID:-//Test Corp//Test Calendar//EN\nVERSION:2.0\n")
	for _, v := range vevents {
		b.WriteString("BEGIN:VEVENT\n")
		b.WriteString(v)
		b.WriteString("END:VEVENT\n")
	}
	b.WriteString("END:VCALENDAR\n")
	return []byte(b.String())
}

const baseVEvent = `UID:1
DTSTAMP:20240101T000000Z
DTSTART:20240101T100000Z
DTEND:20240101T110000Z
SUMMARY:Base Event
LOCATION:Base Location
`

func TestParseBasicEvent(t *testing.T) {
	events, err := Parse("base", calendar(baseVEvent))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "1", ev.UID)
	assert.Equal(t, "Base Event", ev.Name)
	assert.Equal(t, "Base Location", ev.Location)
	assert.True(t, ev.Begin.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, ev.End.Equal(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)))
	assert.False(t, ev.AllDay)
	assert.Empty(t, ev.Recurrence)
}

func TestParseEmptyCalendar(t *testing.T) {
	events, err := Parse("changed", calendar())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseUTCAndTZIDNameSameInstant(t *testing.T) {
	utc, err := Parse("base", calendar(baseVEvent))
	require.NoError(t, err)

	berlin, err := Parse("changed", calendar(`UID:1
DTSTART;TZID=Europe/Berlin:20240101T110000
DTEND;TZID=Europe/Berlin:20240101T120000
SUMMARY:Base Event
LOCATION:Base Location
`))
	require.NoError(t, err)

	require.Len(t, utc, 1)
	require.Len(t, berlin, 1)
	assert.Equal(t, utc[0].Key(), berlin[0].Key())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "empty body", body: nil},
		{name: "whitespace body", body: []byte("  \n\r\n")},
		{name: "missing DTSTART", body: calendar("UID:1\nSUMMARY:x\n")},
		{name: "malformed DTSTART", body: calendar("UID:1\nDTSTART:tomorrow\nSUMMARY:x\n")},
		{name: "malformed DTEND", body: calendar("UID:1\nDTSTART:20240101T100000Z\nDTEND:later\n")},
		{name: "malformed DURATION", body: calendar("UID:1\nDTSTART:20240101T100000Z\nDURATION:1H\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("changed.ics", tt.body)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "changed.ics", perr.Source)
			assert.Contains(t, err.Error(), "changed.ics")
		})
	}
}

func TestParseEndFallbacks(t *testing.T) {
	events, err := Parse("base", calendar(
		"UID:dur\nDTSTART:20240101T100000Z\nDURATION:PT1H30M\nSUMMARY:With duration\n",
		"UID:point\nDTSTART:20240101T100000Z\nSUMMARY:Instant\n",
		"UID:day\nDTSTART;VALUE=DATE:20240105\nSUMMARY:Holiday\n",
	))
	require.NoError(t, err)
	require.Len(t, events, 3)

	byUID := map[string]int{}
	for i, ev := range events {
		byUID[ev.UID] = i
	}

	dur := events[byUID["dur"]]
	assert.Equal(t, 90*time.Minute, dur.End.Sub(dur.Begin))

	point := events[byUID["point"]]
	assert.True(t, point.End.Equal(point.Begin))

	day := events[byUID["day"]]
	assert.True(t, day.AllDay)
	assert.True(t, day.End.Equal(day.Begin.AddDate(0, 0, 1)))
}

func TestParseUnescapesText(t *testing.T) {
	events, err := Parse("base", calendar(`UID:1
DTSTART:20240101T100000Z
DTEND:20240101T110000Z
SUMMARY:Lunch\, then review\; bring notes
LOCATION:Room A\\B
`))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Lunch, then review; bring notes", events[0].Name)
	assert.Equal(t, `Room A\B`, events[0].Location)
}

func TestParseKeepsLiteralBackslash(t *testing.T) {
	events, err := Parse("base", calendar(`UID:1
DTSTART:20240101T100000Z
DTEND:20240101T110000Z
SUMMARY:Backup
LOCATION:C:\\new
`))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, `C:\new`, events[0].Location)
	assert.NotContains(t, events[0].Location, "\n")
}

func TestParseMissingUIDIsContentDerived(t *testing.T) {
	noUID := "DTSTART:20240101T100000Z\nDTEND:20240101T110000Z\nSUMMARY:Anonymous\n"

	first, err := Parse("base", calendar(noUID))
	require.NoError(t, err)
	second, err := Parse("changed", calendar(noUID))
	require.NoError(t, err)
	other, err := Parse("changed", calendar(strings.Replace(noUID, "Anonymous", "Renamed", 1)))
	require.NoError(t, err)

	require.NotEmpty(t, first[0].UID)
	assert.Equal(t, first[0].UID, second[0].UID)
	assert.NotEqual(t, first[0].UID, other[0].UID)
}

func TestParseCanonicalisesRRule(t *testing.T) {
	events, err := Parse("base", calendar(`UID:1
DTSTART:20240101T100000Z
DTEND:20240101T110000Z
SUMMARY:Weekly
RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=4
`))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Recurrence, "FREQ=WEEKLY")
	assert.Contains(t, events[0].Recurrence, "COUNT=4")
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "PT1H", expected: time.Hour},
		{input: "PT1H30M", expected: 90 * time.Minute},
		{input: "P1D", expected: 24 * time.Hour},
		{input: "P1DT2H", expected: 26 * time.Hour},
		{input: "P2W", expected: 14 * 24 * time.Hour},
		{input: "-PT15M", expected: -15 * time.Minute},
		{input: "+PT10S", expected: 10 * time.Second},
		{input: "", wantErr: true},
		{input: "P", wantErr: true},
		{input: "1H", wantErr: true},
		{input: "PT", wantErr: true},
		{input: "P1H", wantErr: true},
		{input: "PT5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
