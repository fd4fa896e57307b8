package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/deadline"
	"github.com/harrisonrobin/taskboard/pkg/google"
	"github.com/harrisonrobin/taskboard/pkg/index"
)

const syncTimeout = 10 * time.Minute

func authCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize taskboard against Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			slot, err := a.openSlot()
			if err != nil {
				return err
			}
			if err := auth.Login(cmd.Context(), slot, configDir); err != nil {
				return err
			}
			a.printf("Authorization saved.\n")
			return nil
		},
	}
}

func syncCmd(a *app) *cobra.Command {
	var calendarName string
	var sweepOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push the board onto a Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if calendarName == "" {
				calendarName = a.cfg.Calendar.Name
			}

			board, err := a.openStore()
			if err != nil {
				return err
			}
			if a.opts.dryRun {
				a.printf("Dry run: would sync %d task(s) to calendar %q\n", board.Len(), calendarName)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
			defer cancel()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			slot, err := a.openSlot()
			if err != nil {
				return err
			}
			srv, err := auth.GetCalendarService(ctx, slot, configDir)
			if err != nil {
				return err
			}
			client, err := google.NewClient(ctx, srv, calendarName)
			if err != nil {
				return err
			}

			idx, err := index.NewEventIndex(slot)
			if err != nil {
				return err
			}
			cache, err := colors.NewColorCache(slot)
			if err != nil {
				return err
			}
			table, err := deadline.NewTable(slot)
			if err != nil {
				return err
			}
			syncer := google.NewSyncer(client, idx, cache, table)

			if sweepOnly {
				flagged, err := syncer.Sweep(ctx)
				if err != nil {
					return err
				}
				a.printf("Flagged %d overdue event(s)\n", flagged)
				return nil
			}

			result, err := syncer.SyncAll(ctx, board.Tasks())
			if err != nil {
				return err
			}
			a.printf("Synced to %q: %s\n", calendarName, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&calendarName, "calendar", "c", "", "Calendar name (default from config)")
	cmd.Flags().BoolVar(&sweepOnly, "sweep-only", false, "Only flag events whose deadline has passed")
	return cmd
}
