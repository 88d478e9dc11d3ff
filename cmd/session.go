package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nibzard/taskmgr-go/internal/logging"
	"github.com/nibzard/taskmgr-go/internal/prompt"
)

func newSessionCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Log in and use the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, s)
		},
	}
}

func runSession(cmd *cobra.Command, s streams) error {
	a, err := setup(cmd, s)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	var audit *logging.AuditLog
	if a.cfg.AuditLog {
		audit, err = logging.NewAuditLog(a.cfg.LogDir, a.cfg.DataDir, sessionID)
		if err != nil {
			a.logger.Warn("audit log disabled", "err", err)
			audit = nil
		} else {
			defer audit.Close()
			a.logger.Debug("audit log", "path", audit.LogPath)
		}
	}

	tr, err := a.newTracker(sessionID, audit)
	if err != nil {
		return err
	}
	if tr.Users().Len() == 0 {
		a.logger.Warn("no users registered", "file", tr.Users().Path())
	}
	return prompt.New(s.in, s.out, tr, a.logger).Run(cmd.Context())
}
