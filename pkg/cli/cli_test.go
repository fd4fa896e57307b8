package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrisonrobin/taskboard/pkg/analytics"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/storage"
)

// writeConfig points the file backend at a temp dir with seeding off.
func writeConfig(t *testing.T, extra string) (cfgPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	cfgPath = filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("storage:\n  backend: file\n  path: %s\nseed:\n  enabled: false\nlog:\n  file: \"\"\n%s", dataDir, extra)
	if err := os.WriteFile(cfgPath, []byte(body), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return cfgPath, dataDir
}

func run(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func addTask(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	base := []string{"add", "--title", "Quarterly report", "--description", "Numbers for Q3",
		"--date", "2024-07-01 09:00", "--priority", "high", "--department", "operations", "--team", "finance"}
	out, err := run(t, cfgPath, "", append(base, args...)...)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[0] != "Added" {
		t.Fatalf("Unexpected add output: %q", out)
	}
	return fields[2]
}

func exportTasks(t *testing.T, cfgPath string) []model.Task {
	t.Helper()
	out, err := run(t, cfgPath, "", "export")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("export is not a JSON array: %v\n%s", err, out)
	}
	return tasks
}

func TestAddListCompleteStats(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	id := addTask(t, cfgPath)

	tasks := exportTasks(t, cfgPath)
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.ID != id || task.Department != "Operations" || task.Team != "Finance" || task.Credits != 3 {
		t.Errorf("Unexpected stored task: %+v", task)
	}

	out, err := run(t, cfgPath, "", "list", "--department", "Operations", "--search", "quarterly")
	if err != nil || !strings.Contains(out, "Quarterly report") {
		t.Errorf("Expected the task in the filtered list, got %q, %v", out, err)
	}
	out, _ = run(t, cfgPath, "", "list", "--from", "2024-07-02")
	if !strings.Contains(out, "No tasks.") {
		t.Errorf("Expected the date range to exclude the task, got %q", out)
	}
	out, _ = run(t, cfgPath, "", "list", "--from", "2024-07-01", "--to", "2024-07-01")
	if !strings.Contains(out, id) {
		t.Errorf("Expected an inclusive single-day range, got %q", out)
	}
	out, _ = run(t, cfgPath, "", "list", "--day", "2024-07-01")
	if !strings.Contains(out, id) {
		t.Errorf("Expected --day to match, got %q", out)
	}

	if out, err := run(t, cfgPath, "", "complete", id); err != nil || !strings.Contains(out, "3 credits") {
		t.Fatalf("complete failed: %q, %v", out, err)
	}

	out, err = run(t, cfgPath, "", "stats", "--json")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	var summary analytics.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("stats --json is not valid JSON: %v", err)
	}
	if summary.CompletedTasks != 1 || summary.EarnedCredits != 3 || summary.CompletionRate != 100 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestCompleteToggles(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	id := addTask(t, cfgPath)

	out, err := run(t, cfgPath, "", "complete", id)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if out != "Completed \"Quarterly report\", 3 credits earned\n" {
		t.Errorf("Unexpected output on first complete: %q", out)
	}
	if tasks := exportTasks(t, cfgPath); !tasks[0].Completed {
		t.Errorf("Expected the task to be completed")
	}

	out, err = run(t, cfgPath, "", "complete", id)
	if err != nil {
		t.Fatalf("second complete failed: %v", err)
	}
	if out != "Reopened \"Quarterly report\", 3 credits no longer earned\n" {
		t.Errorf("Unexpected output on second complete: %q", out)
	}
	if tasks := exportTasks(t, cfgPath); tasks[0].Completed {
		t.Errorf("Expected the second complete to reopen the task")
	}
}

func TestAddValidation(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	cases := [][]string{
		{"add", "--description", "no title", "--department", "Sales"},
		{"add", "--title", "x", "--description", "y", "--department", "Legal"},
		{"add", "--title", "x", "--description", "y", "--department", "Sales", "--team", "Frontend"},
		{"add", "--title", "x", "--description", "y", "--department", "Sales", "--priority", "urgent"},
		{"add", "--title", "x", "--description", "y", "--department", "Sales", "--date", "tomorrow"},
	}
	for _, args := range cases {
		if _, err := run(t, cfgPath, "", args...); err == nil {
			t.Errorf("Expected %v to fail", args)
		}
	}
	if tasks := exportTasks(t, cfgPath); len(tasks) != 0 {
		t.Errorf("Rejected input should not be stored, have %d tasks", len(tasks))
	}
}

func TestEditAndDeleteRequireAdmin(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	id := addTask(t, cfgPath, "--deadline", "2024-07-05")

	if _, err := run(t, cfgPath, "", "edit", id, "--title", "Renamed"); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("Expected ErrAdminRequired from edit, got %v", err)
	}
	if _, err := run(t, cfgPath, "", "delete", id); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("Expected ErrAdminRequired from delete, got %v", err)
	}

	if _, err := run(t, cfgPath, "", "--admin", "edit", id, "--title", "Renamed", "--priority", "low", "--clear-deadline"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	task := exportTasks(t, cfgPath)[0]
	if task.Title != "Renamed" || task.Priority != model.PriorityLow || task.Deadline != nil {
		t.Errorf("Unexpected edited task: %+v", task)
	}
	if task.Credits != 3 {
		t.Errorf("Credits are fixed at creation, got %d", task.Credits)
	}
	if task.Description != "Numbers for Q3" {
		t.Errorf("Unset flags should leave fields alone, got %q", task.Description)
	}

	out, err := run(t, cfgPath, "", "--admin", "delete", "missing-id")
	if err != nil || !strings.Contains(out, "No task with id missing-id") {
		t.Errorf("Deleting an unknown id should only print a hint, got %q, %v", out, err)
	}
	if _, err := run(t, cfgPath, "", "--admin", "delete", id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if tasks := exportTasks(t, cfgPath); len(tasks) != 0 {
		t.Errorf("Expected an empty board after delete, have %d", len(tasks))
	}
}

func TestDryRunDiscardsWrites(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	out, err := run(t, cfgPath, "", "--dry-run", "add", "--title", "t", "--description", "d", "--department", "Sales")
	if err != nil || !strings.HasPrefix(out, "Added task") {
		t.Fatalf("dry-run add failed: %q, %v", out, err)
	}
	if tasks := exportTasks(t, cfgPath); len(tasks) != 0 {
		t.Errorf("Dry run should not persist, have %d tasks", len(tasks))
	}
}

func TestSeededBoard(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	body, _ := os.ReadFile(cfgPath)
	body = bytes.Replace(body, []byte("enabled: false"), []byte("enabled: true\n  random_seed: 42"), 1)
	if err := os.WriteFile(cfgPath, body, 0600); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	first := exportTasks(t, cfgPath)
	if len(first) < 6 {
		t.Fatalf("Expected at least the marketing plan, got %d tasks", len(first))
	}
	second := exportTasks(t, cfgPath)
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Errorf("A seeded board should be persisted, not regenerated")
	}
}

func TestImportTaskwarriorFromStdin(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	export := `[
		{"uuid":"1","description":"Hire designer","status":"pending","entry":"20240301T090000Z","project":"Operations.HR","priority":"M"},
		{"uuid":"2","description":"Close Q1","status":"completed","entry":"20240301T090000Z","due":"20240331T170000Z","project":"Operations.Finance"},
		{"uuid":"3","description":"Gone","status":"deleted","entry":"20240301T090000Z"}
	]`

	out, err := run(t, cfgPath, export, "import", "taskwarrior", "-")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Imported 2 task(s), skipped 1") {
		t.Errorf("Unexpected import output: %q", out)
	}

	tasks := exportTasks(t, cfgPath)
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 imported tasks, got %d", len(tasks))
	}
	completed := 0
	for _, task := range tasks {
		if task.Completed {
			completed++
			if task.Deadline == nil {
				t.Errorf("Expected the due date as deadline: %+v", task)
			}
		}
	}
	if completed != 1 {
		t.Errorf("Expected the completed task to stay completed, got %d", completed)
	}
}

func TestImportOrg(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	orgFile := filepath.Join(t.TempDir(), "plan.org")
	org := "* TODO [#B] Refresh landing page :Marketing:Content:\n  SCHEDULED: <2024-05-02 Thu 10:00>\n* DONE Old thing :Sales:\n  SCHEDULED: <2024-04-01 Mon>\n"
	if err := os.WriteFile(orgFile, []byte(org), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := run(t, cfgPath, "", "import", "org", "--tag", "Marketing", orgFile); err != nil {
		t.Fatalf("import org failed: %v", err)
	}
	tasks := exportTasks(t, cfgPath)
	if len(tasks) != 1 || tasks[0].Priority != model.PriorityMedium || tasks[0].Team != "Content" {
		t.Errorf("Unexpected org import: %+v", tasks)
	}
}

func TestComments(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	id := addTask(t, cfgPath)

	if out, err := run(t, cfgPath, "", "comment", "add", id, "Looks", "good", "--user", "Dana"); err != nil || !strings.Contains(out, "added by Dana") {
		t.Fatalf("comment add failed: %q, %v", out, err)
	}
	out, err := run(t, cfgPath, "", "comment", "list", id)
	if err != nil || !strings.Contains(out, "Dana: Looks good") {
		t.Errorf("Unexpected comment list: %q, %v", out, err)
	}
	out, _ = run(t, cfgPath, "", "comment", "add", "nope", "hello")
	if !strings.Contains(out, "No task with id nope") {
		t.Errorf("Expected a hint for an unknown task, got %q", out)
	}
}

func TestConfigSetCalendar(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	if _, err := run(t, cfgPath, "", "config", "set-calendar", "Team Board"); err != nil {
		t.Fatalf("set-calendar failed: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Calendar.Name != "Team Board" {
		t.Errorf("Expected the calendar to be saved, got %q", cfg.Calendar.Name)
	}
}

func TestSyncDryRun(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	addTask(t, cfgPath)
	out, err := run(t, cfgPath, "", "--dry-run", "sync", "--calendar", "Work")
	if err != nil || !strings.Contains(out, `would sync 1 task(s) to calendar "Work"`) {
		t.Errorf("Unexpected dry-run sync output: %q, %v", out, err)
	}
}

func TestStorageErrors(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	body, _ := os.ReadFile(cfgPath)
	bad := bytes.Replace(body, []byte("backend: file"), []byte("backend: redis"), 1)
	if err := os.WriteFile(cfgPath, bad, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := run(t, cfgPath, "", "list"); !errors.Is(err, storage.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}

	cfgPath, dataDir := writeConfig(t, "")
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "tasks.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := run(t, cfgPath, "", "list"); err == nil {
		t.Errorf("Expected malformed storage to fail")
	}
}
