package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/query"
)

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02",
}

// parseDate reads a date in local time. A bare date means midnight.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

func listCmd(a *app) *cobra.Command {
	var from, to, department, team, search, day string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.openStore()
			if err != nil {
				return err
			}

			tasks := board.Tasks()
			if from != "" || to != "" {
				start := time.Time{}
				end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
				if from != "" {
					if start, err = parseDate(from); err != nil {
						return err
					}
				}
				if to != "" {
					if end, err = parseDate(to); err != nil {
						return err
					}
					end = endOfDay(end)
				}
				tasks = board.TasksByDateRange(start, end)
			}
			if day != "" {
				d, err := parseDate(day)
				if err != nil {
					return err
				}
				tasks = query.OnDay(tasks, d, time.Local)
			}
			tasks = query.ForDepartment(tasks, department)
			tasks = query.ForTeam(tasks, team)
			tasks = query.Search(tasks, search)

			a.printTasks(tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Earliest date (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (inclusive)")
	cmd.Flags().StringVarP(&department, "department", "d", query.AllFilter, "Department filter")
	cmd.Flags().StringVarP(&team, "team", "t", query.AllFilter, "Team filter")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search title, description, department and team")
	cmd.Flags().StringVar(&day, "day", "", "Only tasks on this day")

	return cmd
}

func (a *app) printTasks(tasks []model.Task) {
	if len(tasks) == 0 {
		a.printf("No tasks.\n")
		return
	}
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPRIORITY\tDEPARTMENT\tTEAM\tDONE\tTITLE")
	for _, t := range sorted {
		done := ""
		if t.Completed {
			done = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Local().Format("2006-01-02 15:04"), t.Priority, t.Department, t.Team, done, t.Title)
	}
	w.Flush()
	a.printf("%d task(s)\n", len(sorted))
}

// taskFlags are the fields shared by add and edit.
type taskFlags struct {
	title, description, date, priority, department, team, deadline string
	depends, instructions                                          []string
	completed, clearDeadline                                       bool
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Task title")
	cmd.Flags().StringVar(&f.description, "description", "", "Task description")
	cmd.Flags().StringVar(&f.date, "date", "", "Date, YYYY-MM-DD or YYYY-MM-DD HH:MM")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", string(model.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVarP(&f.department, "department", "d", "", "Department")
	cmd.Flags().StringVarP(&f.team, "team", "t", "", "Team within the department")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "Deadline, same formats as --date")
	cmd.Flags().StringSliceVar(&f.depends, "depends", nil, "Ids of tasks this one depends on")
	cmd.Flags().StringArrayVar(&f.instructions, "instruction", nil, "Instruction step (repeatable)")
}

// resolveDepartment canonicalises department and team against the
// organisation list.
func resolveDepartment(department, team string) (string, string, error) {
	dept, ok := model.FindDepartment(department)
	if !ok {
		return "", "", fmt.Errorf("unknown department %q", department)
	}
	if team == "" {
		return dept.Name, "", nil
	}
	for _, t := range dept.Teams {
		if strings.EqualFold(t, team) {
			return dept.Name, t, nil
		}
	}
	return "", "", fmt.Errorf("team %q is not part of %s", team, dept.Name)
}

func addCmd(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(f.title) == "" || strings.TrimSpace(f.description) == "" {
				return fmt.Errorf("--title and --description are required")
			}
			in := model.TaskInput{
				Title:        f.title,
				Description:  f.description,
				Dependencies: f.depends,
				Instructions: f.instructions,
			}

			var err error
			in.Date = time.Now()
			if f.date != "" {
				if in.Date, err = parseDate(f.date); err != nil {
					return err
				}
			}
			p, ok := model.ParsePriority(f.priority)
			if !ok {
				return fmt.Errorf("invalid priority %q", f.priority)
			}
			in.Priority = p
			if in.Department, in.Team, err = resolveDepartment(f.department, f.team); err != nil {
				return err
			}
			if f.deadline != "" {
				d, err := parseDate(f.deadline)
				if err != nil {
					return err
				}
				in.Deadline = &d
			}

			board, err := a.openStore()
			if err != nil {
				return err
			}
			task, err := board.AddTask(in)
			if err != nil {
				return err
			}
			a.printf("Added task %s (%d credits)\n", task.ID, task.Credits)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change")
			}

			board, err := a.openStore()
			if err != nil {
				return err
			}
			if _, ok := board.Task(args[0]); !ok {
				a.printf("No task with id %s, nothing changed.\n", args[0])
				return nil
			}
			if err := board.EditTask(args[0], patch); err != nil {
				return err
			}
			a.printf("Updated task %s\n", args[0])
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.completed, "completed", false, "Completion state")
	cmd.Flags().BoolVar(&f.clearDeadline, "clear-deadline", false, "Remove the deadline")
	return cmd
}

// patch builds a TaskPatch from the flags the user actually set.
func (f *taskFlags) patch(cmd *cobra.Command) (model.TaskPatch, error) {
	var p model.TaskPatch
	changed := cmd.Flags().Changed

	if changed("title") {
		p.Title = &f.title
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("date") {
		d, err := parseDate(f.date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if changed("priority") {
		pr, ok := model.ParsePriority(f.priority)
		if !ok {
			return p, fmt.Errorf("invalid priority %q", f.priority)
		}
		p.Priority = &pr
	}
	if changed("department") {
		dept, team, err := resolveDepartment(f.department, f.team)
		if err != nil {
			return p, err
		}
		p.Department = &dept
		if changed("team") {
			p.Team = &team
		}
	} else if changed("team") {
		p.Team = &f.team
	}
	if changed("deadline") {
		d, err := parseDate(f.deadline)
		if err != nil {
			return p, err
		}
		p.Deadline = &d
	}
	if changed("clear-deadline") {
		p.ClearDeadline = f.clearDeadline
	}
	if changed("completed") {
		p.Completed = &f.completed
	}
	if changed("depends") {
		p.Dependencies = &f.depends
	}
	if changed("instruction") {
		p.Instructions = &f.instructions
	}
	return p, nil
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			board, err := a.openStore()
			if err != nil {
				return err
			}
			if _, ok := board.Task(args[0]); !ok {
				a.printf("No task with id %s, nothing deleted.\n", args[0])
				return nil
			}
			if err := board.DeleteTask(args[0]); err != nil {
				return err
			}
			a.printf("Deleted task %s\n", args[0])
			return nil
		},
	}
}

func completeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Toggle a task between completed and open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.openStore()
			if err != nil {
				return err
			}
			if _, ok := board.Task(args[0]); !ok {
				a.printf("No task with id %s, nothing completed.\n", args[0])
				return nil
			}
			if err := board.CompleteTask(args[0]); err != nil {
				return err
			}
			task, _ := board.Task(args[0])
			if !task.Completed {
				a.printf("Reopened %q, %d credits no longer earned\n", task.Title, task.Credits)
				return nil
			}
			a.printf("Completed %q, %d credits earned\n", task.Title, task.Credits)
			return nil
		},
	}
}
