package model

import "strings"

// Department groups a fixed list of teams.
type Department struct {
	Name  string   `json:"name"`
	Teams []string `json:"teams"`
}

// Departments is the static organisational reference list.
var Departments = []Department{
	{Name: "Marketing", Teams: []string{"Content", "Social Media", "Analytics"}},
	{Name: "Sales", Teams: []string{"Inside Sales", "Field Sales", "Customer Success"}},
	{Name: "Development", Teams: []string{"Frontend", "Backend", "QA"}},
	{Name: "Operations", Teams: []string{"HR", "Finance", "Facilities"}},
}

// FindDepartment looks a department up by name, ignoring case.
func FindDepartment(name string) (Department, bool) {
	for _, d := range Departments {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Department{}, false
}

// HasTeam reports whether team belongs to the department, ignoring case.
func (d Department) HasTeam(team string) bool {
	for _, t := range d.Teams {
		if strings.EqualFold(t, team) {
			return true
		}
	}
	return false
}
