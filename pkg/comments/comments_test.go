package comments

import (
	"testing"

	"github.com/harrisonrobin/taskboard/pkg/storage"
)

func TestBoardAddAndList(t *testing.T) {
	slot := storage.NewMemorySlot()
	b, err := NewBoard(slot)
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}

	first, err := b.Add("task-1", "", "Looks good")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if first.User != "Current User" {
		t.Errorf("Expected the default user, got %q", first.User)
	}
	if first.ID == "" || first.Timestamp.IsZero() {
		t.Errorf("Expected id and timestamp to be set: %+v", first)
	}
	b.Add("task-2", "zoro", "Blocked on QA")
	b.Add("task-1", "allison", "Shipping Friday")

	got := b.ForTask("task-1")
	if len(got) != 2 || got[0].Content != "Looks good" || got[1].User != "allison" {
		t.Fatalf("Unexpected comments for task-1: %+v", got)
	}
	if len(b.ForTask("task-3")) != 0 {
		t.Errorf("Expected no comments for an unknown task")
	}

	reloaded, err := NewBoard(slot)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if len(reloaded.ForTask("task-1")) != 2 || len(reloaded.ForTask("task-2")) != 1 {
		t.Errorf("Expected comments to survive a reload")
	}
}

func TestBoardMalformed(t *testing.T) {
	slot := storage.NewMemorySlot()
	slot.Set("comments", []byte("nope"))
	if _, err := NewBoard(slot); err == nil {
		t.Errorf("Expected malformed comments to fail")
	}
}
