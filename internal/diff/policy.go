package diff

import (
	"fmt"
	"strings"

	"icsdiff/internal/model"
)

// Policy selects the modification-equality used for UID-matched pairs.
type Policy string

const (
	// PolicyFull reports a pair as modified when name, begin, end or
	// location differ.
	PolicyFull Policy = "full"
	// PolicySchedule only looks at begin and end; renames and relocations
	// are not modifications.
	PolicySchedule Policy = "schedule"
)

// DefaultPolicy is PolicyFull.
const DefaultPolicy = PolicyFull

// ParsePolicy accepts "full" or "schedule" (case-insensitive). Empty means
// DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultPolicy, nil
	case PolicyFull:
		return PolicyFull, nil
	case PolicySchedule:
		return PolicySchedule, nil
	default:
		return DefaultPolicy, fmt.Errorf("unknown policy %q (want %q or %q)", s, PolicyFull, PolicySchedule)
	}
}

// Equal reports whether a and b are the same under the policy. Timestamps
// compare as instants.
func (p Policy) Equal(a, b model.Event) bool {
	if !a.Begin.Equal(b.Begin) || !a.End.Equal(b.End) {
		return false
	}
	if p == PolicySchedule {
		return true
	}
	return a.Name == b.Name && a.Location == b.Location
}

func (p Policy) String() string {
	return string(p)
}
