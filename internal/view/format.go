// Package view renders the board and admin screens as plain text.
package view

import (
	"fmt"
	"time"
)

var months = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sept", "Oct", "Nov", "Dec"}

// Timestamp formats t in its own location as "02:36 PM, 26th Sept 2025".
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%s, %d%s %s %d",
		t.Format("03:04 PM"), t.Day(), DaySuffix(t.Day()), months[t.Month()-1], t.Year())
}

// DaySuffix returns the English ordinal suffix for a day of the month.
func DaySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// ShortID trims an id for display. Resolve accepts the prefix back.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
