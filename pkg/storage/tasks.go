package storage

import (
	"encoding/json"
	"fmt"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// TaskSlot persists the whole task collection as one JSON array under Key.
type TaskSlot struct {
	Slot Slot
	Key  string
}

func NewTaskSlot(slot Slot, key string) *TaskSlot {
	if key == "" {
		key = "tasks"
	}
	return &TaskSlot{Slot: slot, Key: key}
}

// Load returns the stored tasks. Malformed data is reported, never repaired.
func (t *TaskSlot) Load() ([]model.Task, bool, error) {
	raw, found, err := t.Slot.Get(t.Key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", t.Key, err)
	}
	if !found {
		return nil, false, nil
	}

	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, true, fmt.Errorf("failed to decode %q: %w", t.Key, err)
	}
	return tasks, true, nil
}

func (t *TaskSlot) Save(tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	return t.Slot.Set(t.Key, raw)
}
