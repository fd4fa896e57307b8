package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/calendar/v3"
)

// ErrCalendarNotFound is returned when no calendar has the configured name.
var ErrCalendarNotFound = errors.New("calendar not found")

// NewClient resolves calendarName among the user's calendars and returns a
// client bound to it.
func NewClient(ctx context.Context, srv *calendar.Service, calendarName string) (*CalendarClient, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	calendarID := findCalendar(calendarList.Items, calendarName)
	if calendarID == "" {
		return nil, fmt.Errorf("%w: %q", ErrCalendarNotFound, calendarName)
	}
	return NewCalendarClient(srv, calendarID), nil
}

func findCalendar(items []*calendar.CalendarListEntry, name string) string {
	for _, item := range items {
		if item.Summary == name {
			return item.Id
		}
	}
	return ""
}
