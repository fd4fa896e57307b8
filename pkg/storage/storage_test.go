package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// exerciseSlot runs the behaviour every backend must share.
func exerciseSlot(t *testing.T, s Slot) {
	t.Helper()

	if _, found, err := s.Get("tasks"); err != nil || found {
		t.Fatalf("Expected empty slot, got found=%v err=%v", found, err)
	}
	if err := s.Set("tasks", []byte(`[1]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("tasks", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	got, found, err := s.Get("tasks")
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("Expected [1,2], got %s", got)
	}
	if _, found, _ := s.Get("comments"); found {
		t.Errorf("Keys must be independent")
	}
}

func TestMemorySlot(t *testing.T) {
	s := NewMemorySlot()
	exerciseSlot(t, s)

	s.Delete("tasks")
	if _, found, _ := s.Get("tasks"); found {
		t.Errorf("Expected key to be gone after Delete")
	}
}

func TestFileSlot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "taskboard")
	s, err := NewFileSlot(dir)
	if err != nil {
		t.Fatalf("NewFileSlot failed: %v", err)
	}
	exerciseSlot(t, s)

	info, err := os.Stat(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatalf("Expected tasks.json on disk: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestSQLiteSlot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "board.db")
	s, err := NewSQLiteSlot(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteSlot failed: %v", err)
	}
	defer s.Close()
	exerciseSlot(t, s)

	// A second handle on the same file sees the data.
	again, err := NewSQLiteSlot(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer again.Close()
	if got, found, _ := again.Get("tasks"); !found || string(got) != `[1,2]` {
		t.Errorf("Expected persisted value, got %s (found=%v)", got, found)
	}
}

func TestSQLitePath(t *testing.T) {
	if got := sqlitePath("/data"); got != filepath.Join("/data", sqliteFile) {
		t.Errorf("Unexpected path for a directory: %s", got)
	}
	if got := sqlitePath("/data/custom.db"); got != "/data/custom.db" {
		t.Errorf("Unexpected path for a file: %s", got)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StorageConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open memory failed: %v", err)
	}
	if _, ok := s.(*MemorySlot); !ok {
		t.Errorf("Expected *MemorySlot, got %T", s)
	}

	s, err = Open(config.StorageConfig{Backend: "file", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open file failed: %v", err)
	}
	if _, ok := s.(*FileSlot); !ok {
		t.Errorf("Expected *FileSlot, got %T", s)
	}

	if _, err := Open(config.StorageConfig{Backend: "redis"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
	if _, err := Open(config.StorageConfig{Backend: "mongo"}); err == nil {
		t.Errorf("Expected mongo without a URI to fail")
	}
}

func TestTaskSlot(t *testing.T) {
	slot := NewMemorySlot()
	ts := NewTaskSlot(slot, "")

	if _, found, err := ts.Load(); found || err != nil {
		t.Fatalf("Expected nothing stored, got found=%v err=%v", found, err)
	}

	deadline := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		model.NewTask(model.TaskInput{Title: "One", Priority: model.PriorityHigh, Deadline: &deadline}),
		model.NewTask(model.TaskInput{Title: "Two", Priority: model.PriorityLow, Dependencies: []string{"One"}}),
	}
	if err := ts.Save(tasks); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, found, err := ts.Load()
	if err != nil || !found {
		t.Fatalf("Load failed: found=%v err=%v", found, err)
	}
	if len(loaded) != 2 || loaded[0].ID != tasks[0].ID || loaded[1].Title != "Two" {
		t.Fatalf("Unexpected tasks: %+v", loaded)
	}
	if !loaded[0].Deadline.Equal(deadline) || loaded[0].Credits != 3 {
		t.Errorf("Lost fields in round trip: %+v", loaded[0])
	}
}

func TestTaskSlotEmptyAndMalformed(t *testing.T) {
	slot := NewMemorySlot()
	ts := NewTaskSlot(slot, "tasks")

	if err := ts.Save(nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if raw, _, _ := slot.Get("tasks"); string(raw) != "[]" {
		t.Errorf("Expected an empty array, got %s", raw)
	}

	slot.Set("tasks", []byte(`{not json`))
	if _, _, err := ts.Load(); err == nil {
		t.Errorf("Expected a decode error for malformed data")
	}
}

func TestJSONHelpers(t *testing.T) {
	slot := NewMemorySlot()
	if err := SetJSON(slot, "index", map[string]string{"a": "b"}); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	var m map[string]string
	found, err := GetJSON(slot, "index", &m)
	if err != nil || !found || m["a"] != "b" {
		t.Errorf("GetJSON returned %v, %v, %v", m, found, err)
	}
	found, err = GetJSON(slot, "missing", &m)
	if found || err != nil {
		t.Errorf("Expected missing key, got found=%v err=%v", found, err)
	}
}
