// Package seed generates the demo board used when no tasks are stored.
package seed

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

const (
	DefaultProbability = 0.3
	DefaultMonths      = 3
)

var dailyInstructions = []string{"Complete daily responsibilities", "Report progress to team lead"}

// Generator builds the demo board: a fixed marketing plan plus random daily
// tasks for every team.
type Generator struct {
	Now  func() time.Time
	Rand *rand.Rand
	// Probability that a given (day, team) pair gets a task.
	Probability float64
	// Months is the number of following months the daily window covers. It
	// ends on the last day of the Months-th month after the current one.
	Months      int
	Departments []model.Department
}

// New returns a generator with the default settings. A randomSeed of 0 seeds
// from the clock.
func New(randomSeed uint64) *Generator {
	if randomSeed == 0 {
		randomSeed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		Now:         time.Now,
		Rand:        rand.New(rand.NewSource(randomSeed)),
		Probability: DefaultProbability,
		Months:      DefaultMonths,
		Departments: model.Departments,
	}
}

// Generate returns the marketing plan followed by the random daily tasks.
func (g *Generator) Generate() []model.Task {
	now := g.Now()
	var tasks []model.Task
	for _, in := range MarketingPlan(now) {
		tasks = append(tasks, model.NewTask(in))
	}
	for _, in := range g.daily(now) {
		tasks = append(tasks, model.NewTask(in))
	}
	return tasks
}

func (g *Generator) daily(now time.Time) []model.TaskInput {
	months := g.Months
	if months <= 0 {
		months = DefaultMonths
	}
	loc := now.Location()
	y, m, _ := now.Date()
	last := time.Date(y, m+time.Month(months)+1, 0, 0, 0, 0, 0, loc)

	var out []model.TaskInput
	for d := now; !startOfDay(d).After(last); d = d.AddDate(0, 0, 1) {
		for _, dept := range g.Departments {
			for _, team := range dept.Teams {
				if g.Rand.Float64() >= g.Probability {
					continue
				}
				out = append(out, model.TaskInput{
					Title:        fmt.Sprintf("%s - %s Task", dept.Name, team),
					Description:  fmt.Sprintf("Daily task for %s team in %s department", team, dept.Name),
					Date:         d,
					Priority:     model.Priorities[g.Rand.Intn(len(model.Priorities))],
					Department:   dept.Name,
					Team:         team,
					Instructions: append([]string(nil), dailyInstructions...),
				})
			}
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MarketingPlan returns the fixed three-month marketing campaign anchored on
// the month of now.
func MarketingPlan(now time.Time) []model.TaskInput {
	y, m, _ := now.Date()
	loc := now.Location()
	on := func(monthOffset, day int) time.Time {
		return time.Date(y, m+time.Month(monthOffset), day, 0, 0, 0, 0, loc)
	}

	return []model.TaskInput{
		{
			Title:       "Launch Social Media Campaign",
			Description: "Kickoff a multi-platform social media campaign to increase brand awareness",
			Date:        on(0, 15),
			Priority:    model.PriorityHigh,
			Department:  "Marketing",
			Team:        "Social Media",
			Instructions: []string{
				"Develop campaign concept and messaging",
				"Create visual assets for each platform",
				"Schedule posts for the next 30 days",
				"Set up tracking for engagement metrics",
			},
		},
		{
			Title:       "Implement SEO Optimization",
			Description: "Optimize website content for search engines to improve organic traffic",
			Date:        on(0, 25),
			Priority:    model.PriorityMedium,
			Department:  "Marketing",
			Team:        "Content",
			Instructions: []string{
				"Conduct keyword research",
				"Update meta tags and descriptions",
				"Optimize existing content for target keywords",
				"Implement internal linking strategy",
			},
		},
		{
			Title:       "Launch Email Marketing Series",
			Description: "Create and launch a series of targeted email campaigns",
			Date:        on(1, 5),
			Priority:    model.PriorityHigh,
			Department:  "Marketing",
			Team:        "Content",
			Instructions: []string{
				"Segment email list based on user behavior",
				"Design email templates",
				"Write copy for each email in the series",
				"Set up automated email flows",
			},
		},
		{
			Title:       "Conduct Market Research",
			Description: "Gather insights on customer preferences and market trends",
			Date:        on(1, 20),
			Priority:    model.PriorityMedium,
			Department:  "Marketing",
			Team:        "Analytics",
			Instructions: []string{
				"Design survey questions",
				"Distribute survey to target audience",
				"Analyze survey results",
				"Prepare report with actionable insights",
			},
		},
		{
			Title:       "Launch Referral Program",
			Description: "Implement a customer referral program to drive organic growth",
			Date:        on(2, 1),
			Priority:    model.PriorityHigh,
			Department:  "Marketing",
			Team:        "Marketing",
			Instructions: []string{
				"Design referral program structure and rewards",
				"Develop tracking system for referrals",
				"Create promotional materials",
				"Train customer support on program details",
			},
		},
		{
			Title:       "Content Marketing Push",
			Description: "Create and distribute high-value content to establish thought leadership",
			Date:        on(2, 15),
			Priority:    model.PriorityMedium,
			Department:  "Marketing",
			Team:        "Content",
			Instructions: []string{
				"Identify key topics and themes",
				"Create editorial calendar",
				"Produce blog posts, whitepapers, and infographics",
				"Distribute content through various channels",
			},
		},
	}
}
