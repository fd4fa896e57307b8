package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/orgmode"
	"github.com/harrisonrobin/taskboard/pkg/taskwarrior"
)

func importCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from Taskwarrior or org-mode",
	}
	cmd.AddCommand(importTaskwarriorCmd(a))
	cmd.AddCommand(importOrgCmd(a))
	return cmd
}

func importTaskwarriorCmd(a *app) *cobra.Command {
	var filter []string

	cmd := &cobra.Command{
		Use:   "taskwarrior [file|-]",
		Short: "Import a Taskwarrior JSON export",
		Long: `Import a Taskwarrior JSON export. With no argument the local "task export"
is run; "-" reads the export from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := taskwarrior.NewClient()

			var (
				tasks []taskwarrior.Task
				err   error
			)
			switch {
			case len(args) == 0:
				tasks, err = client.GetTasks(filter)
			case args[0] == "-":
				tasks, err = client.ParseTasks(cmd.InOrStdin())
			default:
				f, openErr := os.Open(args[0])
				if openErr != nil {
					return openErr
				}
				defer f.Close()
				tasks, err = client.ParseTasks(f)
			}
			if err != nil {
				return err
			}

			var items []importItem
			for _, t := range tasks {
				in, ok := taskwarrior.ToInput(t)
				if !ok {
					continue
				}
				items = append(items, importItem{in: in, done: t.Status == taskwarrior.COMPLETED})
			}
			return a.importAll("taskwarrior", items, len(tasks))
		},
	}

	cmd.Flags().StringSliceVar(&filter, "filter", nil, "Taskwarrior filter used when running task export")
	return cmd
}

func importOrgCmd(a *app) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "org <files...>",
		Short: "Import TODO and DONE headings from org files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headings, err := orgmode.ParseFiles(args)
			if err != nil {
				return err
			}
			if tag != "" {
				headings = orgmode.FilterTasks(headings, tag)
			}

			var items []importItem
			for _, h := range headings {
				in, ok := orgmode.ToInput(h)
				if !ok {
					continue
				}
				items = append(items, importItem{in: in, done: h.Done})
			}
			return a.importAll("org", items, len(headings))
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Only import headings carrying this tag")
	return cmd
}

type importItem struct {
	in   model.TaskInput
	done bool
}

// importAll adds every item to the board, completing the ones that were
// already done at the source.
func (a *app) importAll(source string, items []importItem, seen int) error {
	board, err := a.openStore()
	if err != nil {
		return err
	}
	for _, item := range items {
		task, err := board.AddTask(item.in)
		if err != nil {
			return fmt.Errorf("failed to import %q: %w", item.in.Title, err)
		}
		if item.done {
			if err := board.CompleteTask(task.ID); err != nil {
				return err
			}
		}
	}
	a.log.Infof("Event ID: IMPORT_COMPLETED, Description: imported %d of %d %s tasks", len(items), seen, source)
	a.printf("Imported %d task(s), skipped %d\n", len(items), seen-len(items))
	return nil
}
