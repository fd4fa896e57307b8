package index

import (
	"sort"
	"testing"

	"github.com/harrisonrobin/taskboard/pkg/storage"
)

func TestEventIndexPersistence(t *testing.T) {
	slot := storage.NewMemorySlot()
	idx, err := NewEventIndex(slot)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}

	idx.Set("task-a", "evt-1")
	idx.Set("task-b", "evt-2")
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewEventIndex(slot)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.Get("task-a") != "evt-1" || reloaded.Get("task-b") != "evt-2" {
		t.Errorf("Mappings lost: %v", reloaded.Mappings)
	}

	reloaded.Remove("task-a")
	reloaded.Save()
	ids := reloaded.TaskIDs()
	sort.Strings(ids)
	if len(ids) != 1 || ids[0] != "task-b" {
		t.Errorf("Expected only task-b, got %v", ids)
	}
}

func TestEventIndexSkipsCleanSave(t *testing.T) {
	slot := storage.NewMemorySlot()
	idx, _ := NewEventIndex(slot)
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, found, _ := slot.Get("calendar-index"); found {
		t.Errorf("A clean index should not be written")
	}

	idx.Set("task", "evt")
	idx.Save()
	idx.Set("task", "evt")
	if idx.dirty {
		t.Errorf("Setting the same mapping should not mark the index dirty")
	}
}
