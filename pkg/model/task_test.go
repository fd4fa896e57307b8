package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCreditsFor(t *testing.T) {
	cases := []struct {
		priority Priority
		want     int
	}{
		{PriorityLow, 1},
		{PriorityMedium, 2},
		{PriorityHigh, 3},
		{"urgent", 1},
		{"", 1},
	}
	for _, c := range cases {
		if got := CreditsFor(c.priority); got != c.want {
			t.Errorf("CreditsFor(%q) = %d, want %d", c.priority, got, c.want)
		}
	}
}

func TestNewTask(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, p := range append(Priorities, "bogus") {
		task := NewTask(TaskInput{Title: "Write copy", Description: "Blog", Date: date, Priority: p})
		if task.ID == "" {
			t.Fatal("Expected a generated id")
		}
		if task.Completed {
			t.Errorf("Expected new task to be incomplete")
		}
		if task.Credits != CreditsFor(p) {
			t.Errorf("Priority %q: expected %d credits, got %d", p, CreditsFor(p), task.Credits)
		}
		if task.Priority != p {
			t.Errorf("Expected priority %q to be kept, got %q", p, task.Priority)
		}
	}

	a := NewTask(TaskInput{Title: "a"})
	b := NewTask(TaskInput{Title: "b"})
	if a.ID == b.ID {
		t.Errorf("Expected unique ids, both were %s", a.ID)
	}
}

func TestNewTaskCopiesSlices(t *testing.T) {
	deps := []string{"design"}
	task := NewTask(TaskInput{Title: "x", Dependencies: deps})
	deps[0] = "changed"
	if task.Dependencies[0] != "design" {
		t.Errorf("Expected task dependencies to be independent of the input slice")
	}
}

func TestApplyPatchKeepsCredits(t *testing.T) {
	task := NewTask(TaskInput{Title: "Plan", Priority: PriorityLow})
	high := PriorityHigh
	edited := ApplyPatch(task, TaskPatch{Priority: &high})

	if edited.Priority != PriorityHigh {
		t.Errorf("Expected priority high, got %s", edited.Priority)
	}
	if edited.Credits != 1 {
		t.Errorf("Expected credits to stay at 1, got %d", edited.Credits)
	}
	if edited.ID != task.ID {
		t.Errorf("Expected id to be preserved")
	}
}

func TestApplyPatchDeadline(t *testing.T) {
	deadline := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	task := NewTask(TaskInput{Title: "Ship", Deadline: &deadline})

	title := "Ship it"
	edited := ApplyPatch(task, TaskPatch{Title: &title})
	if !edited.HasDeadline() || !edited.Deadline.Equal(deadline) {
		t.Errorf("Expected deadline to survive an unrelated edit")
	}

	cleared := ApplyPatch(edited, TaskPatch{ClearDeadline: true})
	if cleared.HasDeadline() {
		t.Errorf("Expected deadline to be cleared")
	}
	if !edited.HasDeadline() {
		t.Errorf("Expected the original value to be untouched")
	}
}

func TestTaskJSONShape(t *testing.T) {
	task := NewTask(TaskInput{
		Title:        "Launch",
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Priority:     PriorityHigh,
		Department:   "Marketing",
		Team:         "Social Media",
		Instructions: []string{"Schedule posts"},
	})
	b, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"date":"2024-01-15T00:00:00Z"`, `"priority":"high"`, `"credits":3`, `"instructions":["Schedule posts"]`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in %s", want, out)
		}
	}
	if strings.Contains(out, "deadline") || strings.Contains(out, "dependencies") {
		t.Errorf("Expected optional fields to be omitted, got %s", out)
	}
}

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{"High": PriorityHigh, "M": PriorityMedium, "c": PriorityLow, "A": PriorityHigh}
	for in, want := range cases {
		got, ok := ParsePriority(in)
		if !ok || got != want {
			t.Errorf("ParsePriority(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Errorf("Expected urgent to be rejected")
	}
}

func TestFindDepartment(t *testing.T) {
	d, ok := FindDepartment("development")
	if !ok {
		t.Fatal("Expected to find Development")
	}
	if !d.HasTeam("qa") {
		t.Errorf("Expected Development to contain QA")
	}
	if d.HasTeam("Finance") {
		t.Errorf("Finance belongs to Operations")
	}
}
