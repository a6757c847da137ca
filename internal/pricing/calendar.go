package pricing

import (
	"time"
)

const dateLayout = "2006-01-02"

// Calendar is a fixed lookup table of public holidays.
type Calendar struct {
	holidays map[string]string
}

// NewCalendar creates a calendar from date (YYYY-MM-DD) to holiday name.
func NewCalendar(holidays map[string]string) *Calendar {
	c := &Calendar{holidays: make(map[string]string, len(holidays))}
	for date, name := range holidays {
		c.holidays[date] = name
	}
	return c
}

// DefaultCalendar returns the 2025 public holiday table.
func DefaultCalendar() *Calendar {
	return NewCalendar(map[string]string{
		"2025-01-01": "New Year's Day",
		"2025-02-01": "Spring Festival",
		"2025-02-02": "Spring Festival",
		"2025-02-03": "Spring Festival",
		"2025-04-05": "Qingming Festival",
		"2025-05-01": "Labour Day",
		"2025-10-01": "National Day",
		"2025-10-02": "National Day",
		"2025-10-03": "National Day",
	})
}

// Holiday returns the holiday name for the calendar date of t, in t's location.
func (c *Calendar) Holiday(t time.Time) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c.holidays[t.Format(dateLayout)]
	return name, ok
}

// Len returns the number of holidays in the calendar.
func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.holidays)
}
