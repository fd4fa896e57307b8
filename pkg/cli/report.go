package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/analytics"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/query"
)

func statsCmd(a *app) *cobra.Command {
	var asJSON bool
	var department string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion, credit and distribution statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.openStore()
			if err != nil {
				return err
			}
			tasks := query.ForDepartment(board.Tasks(), department)
			summary := analytics.Summarize(tasks, time.Now())

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			a.printf("Board Statistics\n")
			a.printf("%s\n", strings.Repeat("=", 40))
			a.printf("Tasks:              %d\n", summary.TotalTasks)
			a.printf("Completed:          %d (%.1f%%)\n", summary.CompletedTasks, summary.CompletionRate)
			a.printf("Credits earned:     %d of %d\n", summary.EarnedCredits, summary.TotalCredits)
			a.printf("Upcoming deadlines: %d\n", summary.UpcomingDeadlines)

			a.printGroups("By priority", summary.ByPriority)
			a.printGroups("By department", summary.ByDepartment)
			a.printGroups("By team", summary.ByTeam)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVarP(&department, "department", "d", query.AllFilter, "Limit to one department")
	return cmd
}

func (a *app) printGroups(title string, groups map[string]int) {
	a.printf("\n%s:\n", title)
	if len(groups) == 0 {
		a.printf("  (none)\n")
		return
	}
	for _, g := range analytics.Sorted(groups) {
		name := g.Name
		if name == "" {
			name = "(unassigned)"
		}
		a.printf("  %-20s %d\n", name+":", g.Count)
	}
}

func departmentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List departments and teams with task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.openStore()
			if err != nil {
				return err
			}
			tasks := board.Tasks()

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEPARTMENT\tTEAM\tTASKS\tDONE")
			for _, dept := range model.Departments {
				deptTasks := query.ForDepartment(tasks, dept.Name)
				fmt.Fprintf(w, "%s\t\t%d\t%d\n", dept.Name, len(deptTasks), analytics.CompletedCount(deptTasks))
				for _, team := range dept.Teams {
					teamTasks := query.ForTeam(deptTasks, team)
					fmt.Fprintf(w, "\t%s\t%d\t%d\n", team, len(teamTasks), analytics.CompletedCount(teamTasks))
				}
			}
			return w.Flush()
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.openStore()
			if err != nil {
				return err
			}
			tasks := board.Tasks()
			if tasks == nil {
				tasks = []model.Task{}
			}

			var w io.Writer = a.out
			if out != "" && out != "-" {
				f, err := os.OpenFile(out, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(tasks); err != nil {
				return fmt.Errorf("failed to encode tasks: %w", err)
			}
			if w != a.out {
				a.printf("Exported %d task(s) to %s\n", len(tasks), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
