package ics

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// parseDuration parses an RFC 5545 DURATION value such as "PT1H30M",
// "P1D", "-PT15M" or "P2W". Days are treated as exactly 24h.
func parseDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, errors.New("empty duration")
	}

	sign := time.Duration(1)
	switch v[0] {
	case '-':
		sign = -1
		v = v[1:]
	case '+':
		v = v[1:]
	}
	if len(v) < 2 || v[0] != 'P' {
		return 0, fmt.Errorf("duration must start with P")
	}
	v = v[1:]

	var (
		total  time.Duration
		inTime bool
		digits string
		seen   bool
	)
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits += string(r)
			continue
		case r == 'T':
			if inTime || digits != "" {
				return 0, fmt.Errorf("unexpected T")
			}
			inTime = true
			continue
		}

		if digits == "" {
			return 0, fmt.Errorf("missing number before %q", r)
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, err
		}
		digits = ""

		var unit time.Duration
		switch {
		case r == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			unit = 24 * time.Hour
		case r == 'H' && inTime:
			unit = time.Hour
		case r == 'M' && inTime:
			unit = time.Minute
		case r == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("unexpected designator %q", r)
		}
		total += time.Duration(n) * unit
		seen = true
	}

	if digits != "" || !seen {
		return 0, fmt.Errorf("incomplete duration")
	}
	return sign * total, nil
}
