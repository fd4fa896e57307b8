// Package deadline tracks open tasks with future deadlines so that a later
// sync can flag the ones whose deadline has passed.
package deadline

import (
	"time"

	"github.com/harrisonrobin/taskboard/pkg/storage"
)

const slotKey = "deadline-watch"

type Entry struct {
	EventID  string    `json:"event_id"`
	Summary  string    `json:"summary"`
	Deadline time.Time `json:"deadline"`
}

type Table struct {
	Entries map[string]Entry `json:"entries"`
	slot    storage.Slot
	dirty   bool
}

func NewTable(slot storage.Slot) (*Table, error) {
	t := &Table{
		Entries: make(map[string]Entry),
		slot:    slot,
	}
	if _, err := storage.GetJSON(slot, slotKey, t); err != nil {
		return nil, err
	}
	if t.Entries == nil {
		t.Entries = make(map[string]Entry)
	}
	return t, nil
}

func (t *Table) Save() error {
	if !t.dirty {
		return nil
	}
	if err := storage.SetJSON(t.slot, slotKey, t); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

// Update watches a task whose deadline is set. A zero deadline removes it.
func (t *Table) Update(taskID, eventID, summary string, deadline time.Time) {
	if deadline.IsZero() {
		t.Remove(taskID)
		return
	}
	old, exists := t.Entries[taskID]
	if !exists || !old.Deadline.Equal(deadline) || old.EventID != eventID || old.Summary != summary {
		t.Entries[taskID] = Entry{
			EventID:  eventID,
			Summary:  summary,
			Deadline: deadline,
		}
		t.dirty = true
	}
}

func (t *Table) Remove(taskID string) {
	if _, exists := t.Entries[taskID]; exists {
		delete(t.Entries, taskID)
		t.dirty = true
	}
}

// Sweep returns the entries whose deadline is before now and stops watching
// them.
func (t *Table) Sweep(now time.Time) []Entry {
	var swept []Entry
	for id, entry := range t.Entries {
		if entry.Deadline.Before(now) {
			swept = append(swept, entry)
			delete(t.Entries, id)
			t.dirty = true
		}
	}
	return swept
}
