package diff

import (
	"sort"

	appLog "icsdiff/internal/log"
	"icsdiff/internal/model"
)

// Pair is a UID-matched event whose content changed between snapshots.
type Pair struct {
	Base    model.Event
	Changed model.Event
}

// Result holds three disjoint classifications. Each slice is sorted by UID
// (then begin, then name) so output built from it is reproducible.
type Result struct {
	Added    []model.Event
	Removed  []model.Event
	Modified []Pair
}

// Empty reports whether the snapshots are equivalent.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// Diff classifies the events of change relative to base.
//
// Added and removed are content-key set differences. An event is held back
// from them only when it is the one its UID resolves to in its own set and
// that UID also resolves on the other side; such pairs are judged by
// Modified instead. Modified covers UIDs present on both sides that policy
// considers unequal. A UID match whose content differs only in fields the
// policy ignores is reported nowhere. Other events sharing a repeated UID,
// such as RECURRENCE-ID overrides of a series, stay in added or removed, so
// an event lands in exactly one group or none.
func Diff(base, change EventSet, policy Policy) Result {
	var res Result

	for key, ev := range change.ByKey {
		if _, ok := base.ByKey[key]; ok {
			continue
		}
		if uidMatched(change, base, ev.UID, key) {
			continue
		}
		res.Added = append(res.Added, ev)
	}

	for key, ev := range base.ByKey {
		if _, ok := change.ByKey[key]; ok {
			continue
		}
		if uidMatched(base, change, ev.UID, key) {
			continue
		}
		res.Removed = append(res.Removed, ev)
	}

	for uid, b := range base.ByUID {
		c, ok := change.ByUID[uid]
		if !ok {
			continue
		}
		if !policy.Equal(b, c) {
			res.Modified = append(res.Modified, Pair{Base: b, Changed: c})
		} else if b.Key() != c.Key() {
			appLog.Debug("uid match differs only in fields ignored by policy",
				"uid", uid,
				"policy", policy,
			)
		}
	}

	sortEvents(res.Added)
	sortEvents(res.Removed)
	sort.SliceStable(res.Modified, func(i, j int) bool {
		return less(res.Modified[i].Changed, res.Modified[j].Changed)
	})

	appLog.Info("diff completed",
		"policy", policy,
		"added", len(res.Added),
		"removed", len(res.Removed),
		"modified", len(res.Modified),
	)
	return res
}

// uidMatched reports whether the event at key is the representative of uid
// in own and uid also resolves in other.
func uidMatched(own, other EventSet, uid string, key model.ComparableKey) bool {
	rep, ok := own.ByUID[uid]
	if !ok || rep.Key() != key {
		return false
	}
	_, ok = other.ByUID[uid]
	return ok
}

func sortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return less(events[i], events[j])
	})
}

func less(a, b model.Event) bool {
	if a.UID != b.UID {
		return a.UID < b.UID
	}
	if !a.Begin.Equal(b.Begin) {
		return a.Begin.Before(b.Begin)
	}
	if !a.End.Equal(b.End) {
		return a.End.Before(b.End)
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Location < b.Location
}
