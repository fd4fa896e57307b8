// Package query filters task collections the way the board's views do.
package query

import (
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// AllFilter matches every department or team.
const AllFilter = "all"

// Search keeps tasks whose title, description, department or team contains
// term, ignoring case. An empty term keeps everything.
func Search(tasks []model.Task, term string) []model.Task {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tasks
	}
	return filter(tasks, func(t model.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Description), term) ||
			strings.Contains(strings.ToLower(t.Department), term) ||
			strings.Contains(strings.ToLower(t.Team), term)
	})
}

// ForDepartment keeps tasks of the named department, ignoring case.
func ForDepartment(tasks []model.Task, name string) []model.Task {
	if isAll(name) {
		return tasks
	}
	return filter(tasks, func(t model.Task) bool {
		return strings.EqualFold(t.Department, name)
	})
}

// ForTeam keeps tasks of the named team, ignoring case.
func ForTeam(tasks []model.Task, team string) []model.Task {
	if isAll(team) {
		return tasks
	}
	return filter(tasks, func(t model.Task) bool {
		return strings.EqualFold(t.Team, team)
	})
}

// OnDay keeps tasks dated on the same calendar day as day, as seen in loc.
func OnDay(tasks []model.Task, day time.Time, loc *time.Location) []model.Task {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := day.In(loc).Date()
	return filter(tasks, func(t model.Task) bool {
		ty, tm, td := t.Date.In(loc).Date()
		return ty == y && tm == m && td == d
	})
}

func isAll(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, AllFilter)
}

func filter(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
