package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskmgr-go/internal/task"
	"github.com/nibzard/taskmgr-go/internal/ui"
	"github.com/nibzard/taskmgr-go/internal/users"
)

func newBoardCmd(s streams) *cobra.Command {
	var user, filter string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show a live read-only task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, s)
			if err != nil {
				return err
			}
			f, err := ui.ParseFilter(filter)
			if err != nil {
				return err
			}
			return ui.RunBoard(cmd.Context(), task.NewStore(a.cfg.TasksFile, a.logger), ui.BoardOptions{
				User:    users.Normalize(user),
				Filter:  f,
				Refresh: time.Duration(a.cfg.BoardRefreshSeconds) * time.Second,
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "Only show tasks assigned to this user")
	cmd.Flags().StringVar(&filter, "filter", "all", "Initial filter (all, open, completed, overdue)")
	return cmd
}
