package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

var (
	dayPattern   = regexp.MustCompile(`\b(?:(next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	clockPattern = regexp.MustCompile(`\bat\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ResolveTime finds the appointment slot requested in message relative to now.
//
// "next <weekday>" is the first such weekday strictly after today. "this
// <weekday>" and a bare weekday are the occurrence in the current week
// (Monday start), moved one week ahead when that date is already past. A
// clock time ("at 3pm", "at 10:30") is combined with the date. Without a
// weekday the result is unspecified, even if a clock time is present.
func ResolveTime(message string, now time.Time) model.RequestedTime {
	lowered := strings.ToLower(message)

	m := dayPattern.FindStringSubmatch(lowered)
	if m == nil {
		return model.UnspecifiedTime()
	}
	date := resolveDate(m[1], weekdays[m[2]], now)

	hour, minute, ok := parseClock(lowered)
	if !ok {
		return model.RequestedDate(date)
	}
	return model.RequestedDateTime(time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location()))
}

func resolveDate(modifier string, day time.Weekday, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if modifier == "next" {
		diff := (int(day) - int(today.Weekday()) + 7) % 7
		if diff == 0 {
			diff = 7
		}
		return today.AddDate(0, 0, diff)
	}

	target := weekStart(today).AddDate(0, 0, mondayOffset(day))
	if target.Before(today) {
		target = target.AddDate(0, 0, 7)
	}
	return target
}

// weekStart returns the Monday of the week containing d
func weekStart(d time.Time) time.Time {
	return d.AddDate(0, 0, -mondayOffset(d.Weekday()))
}

// mondayOffset is the number of days from Monday to day
func mondayOffset(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// parseClock extracts "at H[:MM] [am|pm]". Out of range values are treated
// as if no clock time was given.
func parseClock(lowered string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(lowered)
	if m == nil {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil || minute > 59 {
			return 0, 0, false
		}
	}

	switch m[3] {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		hour %= 12
		if m[3] == "pm" {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
