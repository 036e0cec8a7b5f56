// Package timeutil parses and renders the compact ages used to filter and
// display link history.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var (
	agePattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitMap    = map[string]time.Duration{
		"s":       time.Second,
		"sec":     time.Second,
		"second":  time.Second,
		"seconds": time.Second,
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
		"d":       day,
		"day":     day,
		"days":    day,
		"w":       week,
		"week":    week,
		"weeks":   week,
	}
)

// ParseAge parses an age such as "90m", "3d" or "1w2d". An empty input is
// zero, meaning no limit.
func ParseAge(input string) (time.Duration, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		return 0, nil
	}

	var total time.Duration
	for len(remaining) > 0 {
		m := agePattern.FindStringSubmatch(remaining)
		if len(m) != 3 {
			return 0, fmt.Errorf("invalid age segment %q", strings.TrimSpace(remaining))
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid age value %q: %w", m[1], err)
		}
		unit, ok := unitMap[m[2]]
		if !ok {
			return 0, fmt.Errorf("unsupported age unit %q", m[2])
		}
		total += time.Duration(n) * unit
		remaining = remaining[len(m[0]):]
	}
	if total <= 0 {
		return 0, fmt.Errorf("age must be greater than zero")
	}
	return total, nil
}

// FormatAge renders d using its two largest units, e.g. "2d3h" or "45s".
func FormatAge(d time.Duration) string {
	if d < time.Second {
		return "now"
	}

	units := []struct {
		label string
		value time.Duration
	}{
		{"w", week},
		{"d", day},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}

	var b strings.Builder
	parts := 0
	for _, u := range units {
		if parts == 2 {
			break
		}
		if d < u.value {
			if parts > 0 {
				break
			}
			continue
		}
		count := d / u.value
		d -= count * u.value
		fmt.Fprintf(&b, "%d%s", count, u.label)
		parts++
	}
	return b.String()
}
