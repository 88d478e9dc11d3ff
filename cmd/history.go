package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskmgr-go/internal/logging"
)

func newHistoryCmd(s streams) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the latest session audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, s)
			if err != nil {
				return err
			}
			logDir, err := logging.FindLogDir(a.cfg.LogDir, a.cfg.DataDir)
			if err != nil {
				return fmt.Errorf("finding log directory: %w", err)
			}
			logPath, err := logging.FindLatestLog(logDir)
			if err != nil {
				return fmt.Errorf("finding latest log: %w", err)
			}
			if logPath == "" {
				fmt.Fprintln(s.out, "No session logs found.")
				return nil
			}
			a.logger.Debug("showing audit log", "path", logPath)
			return logging.TailLog(s.out, logPath, lines)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines to show (0 = all)")
	return cmd
}
