package google

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

const (
	// TaskIDProperty is the private extended property linking an event to
	// its task.
	TaskIDProperty = "taskboard_id"

	defaultDuration = 30 * time.Minute

	completedPrefix = "✓"
	overduePrefix   = "!"
)

// ConvertTaskToEvent renders a task as a 30 minute event starting at its
// date. Completed tasks are prefixed with ✓ and open tasks past their
// deadline with !.
func ConvertTaskToEvent(task model.Task, colorID string, now time.Time) *calendar.Event {
	summary := task.Title
	switch {
	case task.Completed:
		summary = fmt.Sprintf("%s %s", completedPrefix, task.Title)
	case task.HasDeadline() && task.Deadline.Before(now):
		summary = fmt.Sprintf("%s %s", overduePrefix, task.Title)
	}

	start := task.Date
	end := start.Add(defaultDuration)

	return &calendar.Event{
		Summary:     summary,
		Description: describe(task),
		ColorId:     colorID,
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskIDProperty: task.ID,
			},
		},
	}
}

func describe(task model.Task) string {
	var b strings.Builder

	if task.Description != "" {
		b.WriteString(task.Description)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Department: %s\n", task.Department))
	if task.Team != "" {
		b.WriteString(fmt.Sprintf("Team: %s\n", task.Team))
	}
	b.WriteString(fmt.Sprintf("Priority: %s\n", task.Priority))
	b.WriteString(fmt.Sprintf("Credits: %d\n", task.Credits))
	if task.HasDeadline() {
		b.WriteString(fmt.Sprintf("Deadline: %s\n", task.Deadline.Format("2006-01-02 15:04")))
	}
	b.WriteString(fmt.Sprintf("ID: %s\n", task.ID))

	if len(task.Dependencies) > 0 {
		b.WriteString("\nDepends on:\n")
		for _, dep := range task.Dependencies {
			b.WriteString(fmt.Sprintf("• %s\n", dep))
		}
	}

	if len(task.Instructions) > 0 {
		b.WriteString("\nInstructions:\n")
		for _, step := range task.Instructions {
			b.WriteString(fmt.Sprintf("‣ %s\n", step))
		}
	}
	return b.String()
}

// EventNeedsUpdate returns a patch holding the fields of target that differ
// from existing, or nil when they match.
func EventNeedsUpdate(existing, target *calendar.Event) (*calendar.Event, error) {
	if existing == nil || target == nil {
		return nil, fmt.Errorf("cannot compare nil events")
	}
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	sameTimes, err := sameSpan(existing, target)
	if err != nil {
		return nil, err
	}
	if !sameTimes {
		patch.Start = timedSpan(target.Start)
		patch.End = timedSpan(target.End)
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

// sameSpan reports whether existing covers the same timed span as target.
// An existing event without a start or end time, such as an all-day event,
// never matches.
func sameSpan(existing, target *calendar.Event) (bool, error) {
	if existing.Start == nil || existing.End == nil {
		return false, nil
	}
	if existing.Start.DateTime == "" || existing.End.DateTime == "" {
		return false, nil
	}
	existingStart, err := time.Parse(time.RFC3339, existing.Start.DateTime)
	if err != nil {
		return false, nil
	}
	existingEnd, err := time.Parse(time.RFC3339, existing.End.DateTime)
	if err != nil {
		return false, nil
	}
	targetStart, err := time.Parse(time.RFC3339, target.Start.DateTime)
	if err != nil {
		return false, err
	}
	targetEnd, err := time.Parse(time.RFC3339, target.End.DateTime)
	if err != nil {
		return false, err
	}
	return existingStart.Equal(targetStart) && existingEnd.Equal(targetEnd), nil
}

// timedSpan copies a target time and nulls Date so a patch turns an all-day
// event back into a timed one.
func timedSpan(t *calendar.EventDateTime) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime:   t.DateTime,
		TimeZone:   t.TimeZone,
		NullFields: []string{"Date"},
	}
}
