package index

import (
	"sync"

	"github.com/harrisonrobin/taskboard/pkg/storage"
)

const slotKey = "calendar-index"

// EventIndex maps board task ids to Google Calendar event ids.
type EventIndex struct {
	Mappings map[string]string
	slot     storage.Slot
	mu       sync.RWMutex
	dirty    bool
}

func NewEventIndex(slot storage.Slot) (*EventIndex, error) {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		slot:     slot,
	}
	if err := idx.Load(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *EventIndex) Load() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	mappings := make(map[string]string)
	if _, err := storage.GetJSON(idx.slot, slotKey, &mappings); err != nil {
		return err
	}
	idx.Mappings = mappings
	idx.dirty = false
	return nil
}

// Save writes the mappings only when they changed since the last save.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !idx.dirty {
		return nil
	}
	if err := storage.SetJSON(idx.slot, slotKey, idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[taskID]
}

func (idx *EventIndex) Set(taskID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[taskID] != eventID {
		idx.Mappings[taskID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[taskID]; exists {
		delete(idx.Mappings, taskID)
		idx.dirty = true
	}
}

// TaskIDs returns every indexed task id.
func (idx *EventIndex) TaskIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.Mappings))
	for id := range idx.Mappings {
		ids = append(ids, id)
	}
	return ids
}
