// Package cmd implements the CLI command structure for taskmgr.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nibzard/taskmgr-go/internal/config"
	"github.com/nibzard/taskmgr-go/internal/logging"
	"github.com/nibzard/taskmgr-go/internal/task"
	"github.com/nibzard/taskmgr-go/internal/tracker"
	"github.com/nibzard/taskmgr-go/internal/users"
)

// Version is set via ldflags at build time.
var Version = "dev"

// streams are the process I/O handles a command reads and writes.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Run executes the taskmgr CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr})
}

func run(ctx context.Context, args []string, s streams) error {
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.errOut)
	return root.ExecuteContext(ctx)
}

func newRootCmd(s streams) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskmgr",
		Short: "Single-user task tracker backed by plain text files",
		Long: `taskmgr keeps users in user.txt and tasks in tasks.txt.

Run without a subcommand to log in and use the interactive menu.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, s)
		},
	}
	root.SetVersionTemplate("taskmgr version {{.Version}}\n")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newSessionCmd(s),
		newBoardCmd(s),
		newReportCmd(s),
		newDoctorCmd(s),
		newConfigCmd(s),
		newHistoryCmd(s),
		newVersionCmd(s),
	)
	return root
}

// app is the configuration and logger shared by every command.
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

func setup(cmd *cobra.Command, s streams) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(s.errOut, cfg.LoggingOptions())
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded", "data_dir", cfg.DataDir, "files", cfg.ConfigFiles)
	return &app{cfg: cfg, logger: logger}, nil
}

// newTracker opens both stores, creating missing files.
func (a *app) newTracker(sessionID string, audit *logging.AuditLog) (*tracker.Tracker, error) {
	userStore, err := users.Open(a.cfg.UsersFile, a.logger)
	if err != nil {
		return nil, err
	}
	taskStore := task.NewStore(a.cfg.TasksFile, a.logger)
	return tracker.New(userStore, taskStore, tracker.Options{
		AdminUser:        a.cfg.AdminUser,
		TaskOverviewPath: a.cfg.TaskOverviewFile,
		UserOverviewPath: a.cfg.UserOverviewFile,
		Logger:           a.logger,
		Audit:            audit,
		SessionID:        sessionID,
	}), nil
}

func newVersionCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(s.out, "taskmgr version %s\n", Version)
			return nil
		},
	}
}
