package diff

import "icsdiff/internal/model"

// Normalized is an event paired with its two identities: the content key
// used for add/remove detection and the UID used for modification
// detection.
type Normalized struct {
	Key   model.ComparableKey
	UID   string
	Event model.Event
}

// Normalize maps a parsed event to its comparable form. It is pure.
func Normalize(ev model.Event) Normalized {
	return Normalized{
		Key:   ev.Key(),
		UID:   ev.UID,
		Event: ev,
	}
}

// EventSet is one snapshot indexed two ways. Within a snapshot the last
// occurrence wins for both duplicate keys and duplicate UIDs.
type EventSet struct {
	ByKey map[model.ComparableKey]model.Event
	ByUID map[string]model.Event
}

// NewEventSet indexes events in input order.
func NewEventSet(events []model.Event) EventSet {
	set := EventSet{
		ByKey: make(map[model.ComparableKey]model.Event, len(events)),
		ByUID: make(map[string]model.Event, len(events)),
	}
	for _, ev := range events {
		n := Normalize(ev)
		set.ByKey[n.Key] = n.Event
		set.ByUID[n.UID] = n.Event
	}
	return set
}

// Len is the number of distinct content keys.
func (s EventSet) Len() int {
	return len(s.ByKey)
}
