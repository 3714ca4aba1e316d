package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativePattern = regexp.MustCompile(`^@today(?:([+-])(\d+)([dwm]))?$`)

// ParseDateInput parses a date bound given on the command line.
// Supported formats:
//
//	2024-01-15              ISO date
//	2024-01-15T10:30:00Z    RFC 3339 timestamp
//	@today, @today-30d      relative to the current day
//
// Results are normalized to UTC.
func ParseDateInput(input string) (time.Time, error) {
	return ParseDateInputWithBase(input, time.Now().UTC())
}

// ParseDateInputWithBase parses with a specific base time (for testing)
func ParseDateInputWithBase(input string, base time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	if strings.HasPrefix(input, "@") {
		return parseRelativeDate(input, base)
	}

	if t, err := time.Parse("2006-01-02", input); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unsupported date format %q: use YYYY-MM-DD or RFC 3339", input)
}

// parseRelativeDate handles @today and @today±N[dwm] expressions
func parseRelativeDate(input string, base time.Time) (time.Time, error) {
	matches := relativePattern.FindStringSubmatch(input)
	if matches == nil {
		return time.Time{}, fmt.Errorf("unsupported date expression %q: use @today or @today-30d", input)
	}

	day := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC)
	if matches[1] == "" {
		return day, nil
	}

	num, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid offset in %q", input)
	}
	if matches[1] == "-" {
		num = -num
	}

	switch matches[3] {
	case "d":
		return day.AddDate(0, 0, num), nil
	case "w":
		return day.AddDate(0, 0, num*7), nil
	case "m":
		return day.AddDate(0, num, 0), nil
	}
	return time.Time{}, fmt.Errorf("unsupported unit in %q", input)
}
