package inspection

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for sowing and due dates.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses a calendar date, accepting a plain date or a timestamp.
// The result is midnight UTC of the calendar day written in the input.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date pointer in DateLayout, or an empty string.
func FormatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(DateLayout)
}

// DueDate adds offsetDays whole days to the planting date. It returns nil when
// either input is missing or the offset is negative.
func DueDate(planting *time.Time, offsetDays *int) *time.Time {
	if planting == nil || offsetDays == nil || *offsetDays < 0 {
		return nil
	}
	due := truncateDay(*planting).AddDate(0, 0, *offsetDays)
	return &due
}

// DueDateFromString is DueDate for a raw planting date; an unparseable date
// yields nil.
func DueDateFromString(planting string, offsetDays *int) *time.Time {
	parsed, ok := ParseDate(planting)
	if !ok {
		return nil
	}
	return DueDate(&parsed, offsetDays)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
