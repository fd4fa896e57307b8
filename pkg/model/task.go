package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency tier of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid tiers from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority accepts the board names as well as Taskwarrior (H/M/L) and
// org-mode (A/B/C) priority letters. Matching is case-insensitive.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l", "c":
		return PriorityLow, true
	case "medium", "m", "b":
		return PriorityMedium, true
	case "high", "h", "a":
		return PriorityHigh, true
	}
	return "", false
}

// CreditsFor maps a priority to its credit value. Unknown priorities earn the
// lowest tier.
func CreditsFor(p Priority) int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 1
	}
}

// Task is one unit of work on the board.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Date         time.Time  `json:"date"`
	Priority     Priority   `json:"priority"`
	Department   string     `json:"department"`
	Team         string     `json:"team"`
	Completed    bool       `json:"completed"`
	Credits      int        `json:"credits"`
	Dependencies []string   `json:"dependencies,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Instructions []string   `json:"instructions,omitempty"`
}

// TaskInput carries everything a caller supplies when creating a task.
// Identity, completion and credits are assigned by NewTask.
type TaskInput struct {
	Title        string
	Description  string
	Date         time.Time
	Priority     Priority
	Department   string
	Team         string
	Dependencies []string
	Deadline     *time.Time
	Instructions []string
}

// newID is swapped in tests that need stable identifiers.
var newID = uuid.NewString

// NewTask builds a task from its input with a fresh id, completed=false and
// credits derived from the priority.
func NewTask(in TaskInput) Task {
	return Task{
		ID:           newID(),
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		Priority:     in.Priority,
		Department:   in.Department,
		Team:         in.Team,
		Completed:    false,
		Credits:      CreditsFor(in.Priority),
		Dependencies: cloneStrings(in.Dependencies),
		Deadline:     cloneTime(in.Deadline),
		Instructions: cloneStrings(in.Instructions),
	}
}

// HasDeadline reports whether a deadline is set.
func (t Task) HasDeadline() bool {
	return t.Deadline != nil && !t.Deadline.IsZero()
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (t Task) Clone() Task {
	t.Dependencies = cloneStrings(t.Dependencies)
	t.Instructions = cloneStrings(t.Instructions)
	t.Deadline = cloneTime(t.Deadline)
	return t
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneTime(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	t := *in
	return &t
}
