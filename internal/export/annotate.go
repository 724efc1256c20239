package export

import (
	"icsdiff/internal/diff"
	"icsdiff/internal/model"
)

// Markers are the words prefixed to annotated event names.
type Markers struct {
	Deleted string
	Updated string
}

// DefaultMarkers yields "DELETED (<name>)" and "UPDATED (<name>)".
var DefaultMarkers = Markers{Deleted: "DELETED", Updated: "UPDATED"}

// Annotate flattens a diff into the events of the output calendar:
// removed events renamed with the deleted marker, added events unchanged,
// then the changed side of each modified pair renamed with the updated
// marker. Group order follows the Result, which is sorted by UID.
func Annotate(res diff.Result, m Markers) []model.Event {
	if m.Deleted == "" {
		m.Deleted = DefaultMarkers.Deleted
	}
	if m.Updated == "" {
		m.Updated = DefaultMarkers.Updated
	}

	out := make([]model.Event, 0, len(res.Removed)+len(res.Added)+len(res.Modified))
	for _, ev := range res.Removed {
		out = append(out, ev.WithName(mark(m.Deleted, ev.Name)))
	}
	out = append(out, res.Added...)
	for _, p := range res.Modified {
		out = append(out, p.Changed.WithName(mark(m.Updated, p.Changed.Name)))
	}
	return out
}

func mark(marker, name string) string {
	return marker + " (" + name + ")"
}
