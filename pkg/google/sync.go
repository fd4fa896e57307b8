package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/deadline"
	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// SyncResult counts what a sync did to the calendar.
type SyncResult struct {
	Created   int
	Updated   int
	Unchanged int
	Deleted   int
	Flagged   int
	Failed    int
}

func (r SyncResult) String() string {
	return fmt.Sprintf("created %d, updated %d, unchanged %d, deleted %d, flagged %d, failed %d",
		r.Created, r.Updated, r.Unchanged, r.Deleted, r.Flagged, r.Failed)
}

// Syncer pushes board tasks onto a calendar. The index, colour cache and
// deadline table are loaded by the caller and saved by SyncAll.
type Syncer struct {
	Events    EventStore
	Index     *index.EventIndex
	Colors    *colors.ColorCache
	Deadlines *deadline.Table
	Now       func() time.Time

	log *logrus.Entry
}

func NewSyncer(events EventStore, idx *index.EventIndex, cache *colors.ColorCache, deadlines *deadline.Table) *Syncer {
	return &Syncer{
		Events:    events,
		Index:     idx,
		Colors:    cache,
		Deadlines: deadlines,
		Now:       time.Now,
		log:       logging.Component("sync"),
	}
}

// SyncAll upserts an event for every task, deletes the events of tasks that
// no longer exist and flags events whose deadline has passed. Per-task
// failures are logged and counted; an open circuit aborts the run.
func (s *Syncer) SyncAll(ctx context.Context, tasks []model.Task) (SyncResult, error) {
	var result SyncResult
	now := s.Now()

	live := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		live[task.ID] = true
		res, err := s.syncTask(ctx, task, now)
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return result, s.finish(fmt.Errorf("calendar unavailable: %w", err))
			}
			s.log.WithField("task", task.ID).Warnf("Event ID: SYNC_TASK_FAILED, Description: %v", err)
			result.Failed++
			continue
		}
		switch res {
		case outcomeCreated:
			result.Created++
		case outcomeUpdated:
			result.Updated++
		default:
			result.Unchanged++
		}
	}

	for _, taskID := range s.Index.TaskIDs() {
		if live[taskID] {
			continue
		}
		eventID := s.Index.Get(taskID)
		if err := s.Events.DeleteEvent(ctx, eventID); err != nil && !IsNotFound(err) {
			s.log.WithField("task", taskID).Warnf("Event ID: SYNC_DELETE_FAILED, Description: %v", err)
			result.Failed++
			continue
		}
		s.Index.Remove(taskID)
		s.Deadlines.Remove(taskID)
		result.Deleted++
	}

	flagged, err := s.sweep(ctx, now)
	result.Flagged = flagged
	if err != nil {
		return result, s.finish(err)
	}

	s.log.Infof("Event ID: SYNC_COMPLETED, Description: %s", result)
	return result, s.finish(nil)
}

// Sweep flags the events of watched tasks whose deadline has passed without
// re-syncing every task.
func (s *Syncer) Sweep(ctx context.Context) (int, error) {
	flagged, err := s.sweep(ctx, s.Now())
	return flagged, s.finish(err)
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeCreated
	outcomeUpdated
)

func (s *Syncer) syncTask(ctx context.Context, task model.Task, now time.Time) (outcome, error) {
	target := ConvertTaskToEvent(task, s.Colors.GetColorID(task.Department), now)

	existing, err := s.findEvent(ctx, task.ID)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("error searching for event: %w", err)
	}

	var (
		eventID string
		result  = outcomeUnchanged
	)
	if existing != nil {
		patch, err := EventNeedsUpdate(existing, target)
		if err != nil {
			return outcomeUnchanged, fmt.Errorf("could not compare task with its calendar event: %w", err)
		}
		eventID = existing.Id
		if patch != nil {
			updated, err := s.Events.PatchEvent(ctx, existing.Id, patch)
			if err != nil {
				return outcomeUnchanged, err
			}
			eventID = updated.Id
			result = outcomeUpdated
		}
	} else {
		created, err := s.Events.InsertEvent(ctx, target)
		if err != nil {
			return outcomeUnchanged, err
		}
		eventID = created.Id
		result = outcomeCreated
	}

	s.Index.Set(task.ID, eventID)
	if !task.Completed && task.HasDeadline() && task.Deadline.After(now) {
		s.Deadlines.Update(task.ID, eventID, target.Summary, *task.Deadline)
	} else {
		s.Deadlines.Remove(task.ID)
	}
	return result, nil
}

// findEvent tries the local index first and falls back to searching the
// calendar by extended property.
func (s *Syncer) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	if eventID := s.Index.Get(taskID); eventID != "" {
		event, err := s.Events.GetEvent(ctx, eventID)
		if err == nil && event != nil && event.Status != "cancelled" {
			return event, nil
		}
		if err != nil && !IsNotFound(err) {
			return nil, err
		}
		s.Index.Remove(taskID)
	}
	event, err := s.Events.GetEventByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if event != nil && event.Status == "cancelled" {
		return nil, nil
	}
	return event, nil
}

func (s *Syncer) sweep(ctx context.Context, now time.Time) (int, error) {
	flagged := 0
	for _, entry := range s.Deadlines.Sweep(now) {
		summary := overduePrefix + " " + strings.TrimPrefix(entry.Summary, overduePrefix+" ")
		if _, err := s.Events.PatchEvent(ctx, entry.EventID, &calendar.Event{Summary: summary}); err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return flagged, fmt.Errorf("calendar unavailable: %w", err)
			}
			s.log.WithField("event", entry.EventID).Warnf("Event ID: SYNC_FLAG_FAILED, Description: %v", err)
			continue
		}
		flagged++
	}
	return flagged, nil
}

// finish persists the local sync state and joins any save failure to err.
func (s *Syncer) finish(err error) error {
	var saveErrs []error
	if saveErr := s.Index.Save(); saveErr != nil {
		saveErrs = append(saveErrs, fmt.Errorf("failed to save event index: %w", saveErr))
	}
	if saveErr := s.Colors.Save(); saveErr != nil {
		saveErrs = append(saveErrs, fmt.Errorf("failed to save color cache: %w", saveErr))
	}
	if saveErr := s.Deadlines.Save(); saveErr != nil {
		saveErrs = append(saveErrs, fmt.Errorf("failed to save deadline table: %w", saveErr))
	}
	return errors.Join(append([]error{err}, saveErrs...)...)
}
