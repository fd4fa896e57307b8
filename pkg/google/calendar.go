package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/taskboard/pkg/logging"
)

// EventStore is the slice of the Calendar API the syncer needs.
type EventStore interface {
	InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error)
	PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	GetEvent(ctx context.Context, eventID string) (*calendar.Event, error)
	GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error)
}

// CalendarClient is a Google Calendar API client. Every request goes through
// a circuit breaker so that a failing API stops being hammered mid-sync.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	cb         *gobreaker.CircuitBreaker
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string) *CalendarClient {
	return &CalendarClient{
		srv:        srv,
		calendarID: calendarID,
		cb:         gobreaker.NewCircuitBreaker(breakerSettings("google-calendar-cb", logging.Component("google"))),
	}
}

func breakerSettings(name string, log *logrus.Entry) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	}
}

// execute runs fn through the breaker and restores its result type.
func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	res, err := cb.Execute(func() (interface{}, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		return zero, err
	}
	out, ok := res.(T)
	if !ok {
		return zero, nil
	}
	return out, nil
}

// IsNotFound reports whether err is a 404 or 410 from the API.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}

// InsertEvent creates a new event.
func (c *CalendarClient) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	return execute(c.cb, func() (*calendar.Event, error) {
		return c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	})
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return execute(c.cb, func() (*calendar.Event, error) {
		return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
	})
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := execute(c.cb, func() (struct{}, error) {
		return struct{}{}, c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	})
	return err
}

// GetEvent fetches one event by id.
func (c *CalendarClient) GetEvent(ctx context.Context, eventID string) (*calendar.Event, error) {
	return execute(c.cb, func() (*calendar.Event, error) {
		return c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	})
}

// ListEvents fetches events starting after timeMin.
func (c *CalendarClient) ListEvents(ctx context.Context, timeMin time.Time) ([]*calendar.Event, error) {
	events, err := execute(c.cb, func() (*calendar.Events, error) {
		return c.srv.Events.List(c.calendarID).TimeMin(timeMin.Format(time.RFC3339)).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return events.Items, nil
}

// GetEventByTaskID searches for the event carrying the task id in its
// private extended properties.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := execute(c.cb, func() (*calendar.Events, error) {
		return c.srv.Events.List(c.calendarID).
			PrivateExtendedProperty(fmt.Sprintf("%s=%s", TaskIDProperty, taskID)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
