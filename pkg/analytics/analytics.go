// Package analytics derives board statistics from a task collection. Nothing
// is cached; every call recomputes from the tasks it is given.
package analytics

import (
	"sort"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// KeyFunc selects the grouping key of a task.
type KeyFunc func(model.Task) string

func ByDepartment(t model.Task) string { return t.Department }
func ByTeam(t model.Task) string       { return t.Team }
func ByPriority(t model.Task) string   { return string(t.Priority) }

// Group is one bucket of a grouping.
type Group struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalTasks        int            `json:"totalTasks"`
	CompletedTasks    int            `json:"completedTasks"`
	CompletionRate    float64        `json:"completionRate"`
	TotalCredits      int            `json:"totalCredits"`
	EarnedCredits     int            `json:"earnedCredits"`
	UpcomingDeadlines int            `json:"upcomingDeadlines"`
	ByPriority        map[string]int `json:"byPriority"`
	ByDepartment      map[string]int `json:"byDepartment"`
	ByTeam            map[string]int `json:"byTeam"`
}

// CompletedCount counts completed tasks.
func CompletedCount(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// CompletionRate is the completed percentage, or 0 for no tasks.
func CompletionRate(tasks []model.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	return float64(CompletedCount(tasks)) / float64(len(tasks)) * 100
}

// GroupBy counts tasks per key.
func GroupBy(tasks []model.Task, key KeyFunc) map[string]int {
	groups := make(map[string]int)
	for _, t := range tasks {
		groups[key(t)]++
	}
	return groups
}

// Sorted orders groups by count, largest first, then by name.
func Sorted(groups map[string]int) []Group {
	out := make([]Group, 0, len(groups))
	for name, count := range groups {
		out = append(out, Group{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func TotalCredits(tasks []model.Task) int {
	sum := 0
	for _, t := range tasks {
		sum += t.Credits
	}
	return sum
}

// EarnedCredits sums the credits of completed tasks.
func EarnedCredits(tasks []model.Task) int {
	sum := 0
	for _, t := range tasks {
		if t.Completed {
			sum += t.Credits
		}
	}
	return sum
}

// UpcomingDeadlines counts open tasks whose deadline is after now.
func UpcomingDeadlines(tasks []model.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if t.HasDeadline() && t.Deadline.After(now) && !t.Completed {
			n++
		}
	}
	return n
}

func Summarize(tasks []model.Task, now time.Time) Summary {
	return Summary{
		TotalTasks:        len(tasks),
		CompletedTasks:    CompletedCount(tasks),
		CompletionRate:    CompletionRate(tasks),
		TotalCredits:      TotalCredits(tasks),
		EarnedCredits:     EarnedCredits(tasks),
		UpcomingDeadlines: UpcomingDeadlines(tasks, now),
		ByPriority:        GroupBy(tasks, ByPriority),
		ByDepartment:      GroupBy(tasks, ByDepartment),
		ByTeam:            GroupBy(tasks, ByTeam),
	}
}
