package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icsdiff/internal/model"
)

var stamp = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleEvents() []model.Event {
	return []model.Event{
		{
			UID:      "1",
			Name:     "DELETED (Base Event)",
			Begin:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
			Location: "Base Location",
		},
		{
			UID:        "2",
			Name:       "Weekly sync",
			Begin:      time.Date(2024, 1, 2, 9, 0, 0, 0, time.FixedZone("CET", 3600)),
			End:        time.Date(2024, 1, 2, 10, 0, 0, 0, time.FixedZone("CET", 3600)),
			Recurrence: "FREQ=WEEKLY;COUNT=4",
		},
	}
}

func TestSerializeUsesCRLF(t *testing.T) {
	out := Serialize(sampleEvents(), SerializeOptions{Stamp: stamp})

	require.True(t, strings.HasSuffix(out, "\r\n"))
	withoutCRLF := strings.ReplaceAll(out, "\r\n", "")
	assert.NotContains(t, withoutCRLF, "\n")
	assert.NotContains(t, withoutCRLF, "\r")

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, out, "PRODID:"+DefaultProductID)
	assert.Contains(t, out, "SUMMARY:DELETED (Base Event)")
	assert.Contains(t, out, "DTSTAMP:20240601T120000Z")
}

func TestSerializeCustomProductID(t *testing.T) {
	out := Serialize(nil, SerializeOptions{ProductID: "-//Acme//Diff//EN", Stamp: stamp})
	assert.Contains(t, out, "PRODID:-//Acme//Diff//EN")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

func TestSerializeRoundTrip(t *testing.T) {
	in := sampleEvents()
	in = append(in, model.Event{
		UID:    "3",
		Name:   "Offsite",
		Begin:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local),
		End:    time.Date(2024, 3, 6, 0, 0, 0, 0, time.Local),
		AllDay: true,
	})

	out, err := Parse("export", []byte(Serialize(in, SerializeOptions{Stamp: stamp})))
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].UID, out[i].UID)
		assert.Equal(t, in[i].Key(), out[i].Key(), "event %s", in[i].UID)
		assert.Equal(t, in[i].AllDay, out[i].AllDay)
	}
	assert.Contains(t, out[1].Recurrence, "FREQ=WEEKLY")
}

func TestSerializeTextReadsBackWithPlainParser(t *testing.T) {
	in := []model.Event{{
		UID:      "lunch",
		Name:     "Lunch, Team",
		Begin:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
		Location: `C:\new; floor 2`,
	}}
	out := Serialize(in, SerializeOptions{Stamp: stamp})

	assert.Contains(t, out, `SUMMARY:Lunch\, Team`)
	assert.NotContains(t, out, `Lunch\\`)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	ve := cal.Events()[0]
	assert.Equal(t, "Lunch, Team", ve.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, `C:\new; floor 2`, ve.GetProperty(ical.ComponentPropertyLocation).Value)

	back, err := Parse("export", []byte(out))
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, in[0].Key(), back[0].Key())
}

func TestNormalizeLineEndings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "lf", input: "A\nB\n", expected: "A\r\nB\r\n"},
		{name: "crlf kept", input: "A\r\nB\r\n", expected: "A\r\nB\r\n"},
		{name: "bare cr", input: "A\rB", expected: "A\r\nB\r\n"},
		{name: "mixed", input: "A\r\nB\nC\r", expected: "A\r\nB\r\nC\r\n"},
		{name: "folded continuation", input: "SUMMARY:long\n  tail\n", expected: "SUMMARY:long\r\n  tail\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeLineEndings(tt.input))
		})
	}
}
