package calendar

import (
	"fmt"
	"strconv"
	"strings"

	calendar "google.golang.org/api/calendar/v3"
)

const (
	// PrimaryCalendarID addresses the signed-in user's main calendar.
	PrimaryCalendarID = "primary"

	// EventTimeZone is the zone new events are created in.
	EventTimeZone = "America/Lima"
)

// Event is a calendar entry placed on the month grid.
type Event struct {
	ID      string
	Summary string
	// Start and End hold the provider's dateTime, or date for all-day events.
	Start  string
	End    string
	AllDay bool
	// Day is the day of the month taken from the date portion of Start.
	Day int
}

// Clock returns the HH:MM part of a timed event's start, or "" for all-day
// events.
func (e Event) Clock() string {
	if e.AllDay {
		return ""
	}
	_, rest, ok := strings.Cut(e.Start, "T")
	if !ok || len(rest) < 5 {
		return ""
	}
	return rest[:5]
}

// DayOfMonth extracts the day number from an RFC 3339 date or date-time
// string by reading the date portion only, so the offset never shifts it.
func DayOfMonth(value string) (int, error) {
	date, _, _ := strings.Cut(value, "T")
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed date %q", value)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("malformed day in %q", value)
	}
	return day, nil
}

// toEvent converts a Google Calendar event. It fails when the start carries
// no usable date.
func toEvent(event *calendar.Event) (Event, error) {
	e := Event{
		ID:      event.Id,
		Summary: event.Summary,
	}

	if event.Start != nil {
		if event.Start.DateTime != "" {
			e.Start = event.Start.DateTime
		} else {
			e.Start = event.Start.Date
			e.AllDay = true
		}
	}
	if event.End != nil {
		if event.End.DateTime != "" {
			e.End = event.End.DateTime
		} else {
			e.End = event.End.Date
		}
	}

	day, err := DayOfMonth(e.Start)
	if err != nil {
		return Event{}, err
	}
	e.Day = day
	return e, nil
}
