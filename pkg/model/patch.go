package model

import "time"

// creditsFollowPriority decides whether an edit that changes the priority also
// re-derives credits. Credits are fixed at creation, so this stays false.
const creditsFollowPriority = false

// TaskPatch is a shallow partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title        *string
	Description  *string
	Date         *time.Time
	Priority     *Priority
	Department   *string
	Team         *string
	Completed    *bool
	Dependencies *[]string
	Deadline     *time.Time
	// ClearDeadline removes the deadline; it wins over Deadline.
	ClearDeadline bool
	Instructions  *[]string
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil &&
		p.Priority == nil && p.Department == nil && p.Team == nil &&
		p.Completed == nil && p.Dependencies == nil && p.Deadline == nil &&
		!p.ClearDeadline && p.Instructions == nil
}

// ApplyPatch merges p onto t and returns the result. The id is never changed.
func ApplyPatch(t Task, p TaskPatch) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
		if creditsFollowPriority {
			t.Credits = CreditsFor(t.Priority)
		}
	}
	if p.Department != nil {
		t.Department = *p.Department
	}
	if p.Team != nil {
		t.Team = *p.Team
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Dependencies != nil {
		t.Dependencies = cloneStrings(*p.Dependencies)
	}
	if p.Deadline != nil {
		t.Deadline = cloneTime(p.Deadline)
	}
	if p.ClearDeadline {
		t.Deadline = nil
	}
	if p.Instructions != nil {
		t.Instructions = cloneStrings(*p.Instructions)
	}
	return t
}
