package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskmgr-go/internal/report"
)

func newReportCmd(s streams) *cobra.Command {
	var format string
	var noWrite bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the overview reports and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, s)
			if err != nil {
				return err
			}
			if format == "" {
				format = a.cfg.ReportFormat
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			tr, err := a.newTracker("", nil)
			if err != nil {
				return err
			}
			r, err := tr.Report()
			if err != nil {
				return err
			}
			if !noWrite {
				if err := r.WriteFiles(a.cfg.TaskOverviewFile, a.cfg.UserOverviewFile); err != nil {
					return err
				}
				a.logger.Info("reports written", "task_overview", a.cfg.TaskOverviewFile, "user_overview", a.cfg.UserOverviewFile)
			}

			if f == report.FormatText {
				fmt.Fprintln(s.out, "=== Task Overview ===")
				fmt.Fprintln(s.out, r.TaskOverview())
				fmt.Fprintln(s.out, "=== User Overview ===")
				fmt.Fprint(s.out, r.UserOverview())
				return nil
			}
			return r.Encode(s.out, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (text, json, yaml; default from report_format)")
	cmd.Flags().BoolVar(&noWrite, "no-write", false, "Print only; do not rewrite the overview files")
	return cmd
}
