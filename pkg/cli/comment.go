package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/comments"
)

func commentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add or read comments on a task",
	}
	cmd.AddCommand(commentAddCmd(a))
	cmd.AddCommand(commentListCmd(a))
	return cmd
}

func (a *app) openComments() (*comments.Board, error) {
	slot, err := a.openSlot()
	if err != nil {
		return nil, err
	}
	return comments.NewBoard(slot)
}

func commentAddCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "add <task-id> <text...>",
		Short: "Comment on a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.openStore()
			if err != nil {
				return err
			}
			if _, ok := board.Task(args[0]); !ok {
				a.printf("No task with id %s, comment not added.\n", args[0])
				return nil
			}
			thread, err := a.openComments()
			if err != nil {
				return err
			}
			c, err := thread.Add(args[0], user, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			a.printf("Comment %s added by %s\n", c.ID, c.User)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Author name")
	return cmd
}

func commentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <task-id>",
		Short: "Show the comments on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := a.openComments()
			if err != nil {
				return err
			}
			list := thread.ForTask(args[0])
			if len(list) == 0 {
				a.printf("No comments.\n")
				return nil
			}
			for _, c := range list {
				a.printf("[%s] %s: %s\n", c.Timestamp.Local().Format("2006-01-02 15:04"), c.User, c.Content)
			}
			return nil
		},
	}
}
