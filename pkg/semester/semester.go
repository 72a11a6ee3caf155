package semester

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Semester codes follow the registrar convention: the January intake runs
// January through May ("JAN2025"), the June intake runs June through
// December ("JUN2025").

const (
	prefixJan = "JAN"
	prefixJun = "JUN"
)

// Current returns the semester code covering the given instant.
func Current(now time.Time) string {
	if now.Month() <= time.May {
		return fmt.Sprintf("%s%d", prefixJan, now.Year())
	}
	return fmt.Sprintf("%s%d", prefixJun, now.Year())
}

// Next returns the semester code that follows the one covering now.
func Next(now time.Time) string {
	if now.Month() <= time.May {
		return fmt.Sprintf("%s%d", prefixJun, now.Year())
	}
	return fmt.Sprintf("%s%d", prefixJan, now.Year()+1)
}

// Valid reports whether code is a well-formed semester code.
func Valid(code string) bool {
	_, _, err := parse(code)
	return err == nil
}

// Dates returns the inclusive start and end dates of the semester.
func Dates(code string) (time.Time, time.Time, error) {
	prefix, year, err := parse(code)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if prefix == prefixJan {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), nil
}

func parse(code string) (string, int, error) {
	if len(code) != 7 {
		return "", 0, fmt.Errorf("invalid semester code %q", code)
	}
	prefix := strings.ToUpper(code[:3])
	if prefix != prefixJan && prefix != prefixJun {
		return "", 0, fmt.Errorf("invalid semester code %q", code)
	}
	year, err := strconv.Atoi(code[3:])
	if err != nil || year < 2000 {
		return "", 0, fmt.Errorf("invalid semester code %q", code)
	}
	return prefix, year, nil
}
