package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/taskboard/pkg/config"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(configShowCmd(a))
	cmd.AddCommand(configSetCalendarCmd(a))
	return cmd
}

func configShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.out.Write(out)
			return err
		},
	}
}

func configSetCalendarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar <name>",
		Short: "Set the calendar used by sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Calendar.Name = args[0]
			if a.opts.dryRun {
				a.printf("Dry run: calendar would be set to %q\n", args[0])
				return nil
			}
			if err := config.Save(a.cfg, a.opts.configPath); err != nil {
				return err
			}
			a.printf("Calendar set to %q\n", args[0])
			return nil
		},
	}
}
