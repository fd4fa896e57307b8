// Package cli is the taskboard command line front end.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/seed"
	"github.com/harrisonrobin/taskboard/pkg/storage"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

// ErrAdminRequired is returned by edit and delete without --admin.
var ErrAdminRequired = errors.New("admin privileges required, rerun with --admin")

type options struct {
	configPath string
	admin      bool
	dryRun     bool
}

// app is the state shared by one command invocation.
type app struct {
	opts        options
	initLogging bool

	cfg   *config.Config
	slot  storage.Slot
	board *store.Store
	out   io.Writer
	log   *logrus.Entry
}

// NewRootCmd builds the command tree. Logging stays on the discard logger;
// Execute points it at the configured file.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskboard",
		Short: "Taskboard - a department task calendar",
		Long: `Taskboard keeps a calendar of department tasks with priorities, credits
and deadlines, and can push the board onto a Google Calendar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "Config file (default ~/.config/taskboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.opts.admin, "admin", false, "Allow admin-only operations (edit, delete)")
	rootCmd.PersistentFlags().BoolVar(&a.opts.dryRun, "dry-run", false, "Read the board but discard every write")

	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(editCmd(a))
	rootCmd.AddCommand(deleteCmd(a))
	rootCmd.AddCommand(completeCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(departmentsCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(commentCmd(a))
	rootCmd.AddCommand(authCmd(a))
	rootCmd.AddCommand(syncCmd(a))
	rootCmd.AddCommand(configCmd(a))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd := newRootCmd(&app{initLogging: true})
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()

	if a.initLogging {
		if err := logging.Init(cfg.Log.File, cfg.Log.Level); err != nil {
			return err
		}
	}
	a.log = logging.Component("cli").WithField("command", cmd.Name())
	a.log.Debugf("Event ID: COMMAND_START, Description: running %s", cmd.CommandPath())
	return nil
}

// openSlot opens the configured backend once per invocation. With --dry-run
// writes are dropped.
func (a *app) openSlot() (storage.Slot, error) {
	if a.slot != nil {
		return a.slot, nil
	}
	slot, err := storage.Open(a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", a.cfg.Storage.Backend, err)
	}
	if a.opts.dryRun {
		slot = discardWrites{slot}
	}
	a.slot = slot
	return slot, nil
}

// openStore returns the initialized board, seeding it when empty and seeding
// is enabled.
func (a *app) openStore() (*store.Store, error) {
	if a.board != nil {
		return a.board, nil
	}
	slot, err := a.openSlot()
	if err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithLogger(logging.Component("store"))}
	if a.cfg.Seed.Enabled {
		gen := seed.New(a.cfg.Seed.RandomSeed)
		if a.cfg.Seed.Probability > 0 {
			gen.Probability = a.cfg.Seed.Probability
		}
		if a.cfg.Seed.Months > 0 {
			gen.Months = a.cfg.Seed.Months
		}
		opts = append(opts, store.WithSeeder(gen.Generate))
	}

	board := store.New(storage.NewTaskSlot(slot, a.cfg.Storage.Key), opts...)
	if err := board.Initialize(); err != nil {
		return nil, err
	}
	a.board = board
	return board, nil
}

func (a *app) close() error {
	if a.slot == nil {
		return nil
	}
	err := a.slot.Close()
	a.slot = nil
	a.board = nil
	return err
}

func (a *app) requireAdmin() error {
	if !a.opts.admin {
		return ErrAdminRequired
	}
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// discardWrites serves reads from the wrapped slot and drops writes.
type discardWrites struct {
	storage.Slot
}

func (d discardWrites) Set(key string, value []byte) error {
	logging.Component("cli").Infof("Event ID: DRY_RUN_WRITE_SKIPPED, Description: not writing %q (%d bytes)", key, len(value))
	return nil
}
