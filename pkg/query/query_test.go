package query

import (
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

func board() []model.Task {
	mk := func(title, desc, dept, team string, date time.Time) model.Task {
		return model.NewTask(model.TaskInput{Title: title, Description: desc, Department: dept, Team: team, Date: date})
	}
	return []model.Task{
		mk("Launch Social Media Campaign", "brand awareness", "Marketing", "Social Media", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)),
		mk("Quarterly close", "books", "Operations", "Finance", time.Date(2024, 7, 15, 23, 30, 0, 0, time.UTC)),
		mk("Regression pass", "release candidate", "Development", "QA", time.Date(2024, 7, 16, 9, 0, 0, 0, time.UTC)),
	}
}

func titles(tasks []model.Task) []string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestSearch(t *testing.T) {
	cases := []struct {
		term string
		want int
	}{
		{"", 3},
		{"CAMPAIGN", 1},
		{"finance", 1},     // team
		{"development", 1}, // department
		{"candidate", 1},   // description
		{"nothing here", 0},
	}
	for _, c := range cases {
		if got := Search(board(), c.term); len(got) != c.want {
			t.Errorf("Search(%q) = %v, want %d results", c.term, titles(got), c.want)
		}
	}
}

func TestForDepartmentAndTeam(t *testing.T) {
	if got := ForDepartment(board(), "marketing"); len(got) != 1 || got[0].Team != "Social Media" {
		t.Errorf("Unexpected department filter result: %v", titles(got))
	}
	if got := ForDepartment(board(), "all"); len(got) != 3 {
		t.Errorf("Expected all tasks for 'all', got %d", len(got))
	}
	if got := ForTeam(board(), "qa"); len(got) != 1 || got[0].Title != "Regression pass" {
		t.Errorf("Unexpected team filter result: %v", titles(got))
	}
	if got := ForTeam(board(), ""); len(got) != 3 {
		t.Errorf("Expected an empty team to match everything, got %d", len(got))
	}
}

func TestOnDay(t *testing.T) {
	day := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	if got := OnDay(board(), day, time.UTC); len(got) != 2 {
		t.Errorf("Expected 2 tasks on July 15 UTC, got %v", titles(got))
	}

	// In UTC+2 the 23:30 task moves to July 16.
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	if got := OnDay(board(), time.Date(2024, 7, 16, 8, 0, 0, 0, plus2), plus2); len(got) != 2 {
		t.Errorf("Expected 2 tasks on July 16 UTC+2, got %v", titles(got))
	}
}
