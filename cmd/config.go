package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskmgr-go/internal/config"
)

func newConfigCmd(s streams) *cobra.Command {
	var example bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if example {
				fmt.Fprint(s.out, config.ExampleConfig())
				return nil
			}
			a, err := setup(cmd, s)
			if err != nil {
				return err
			}

			if len(a.cfg.ConfigFiles) == 0 {
				fmt.Fprintln(s.out, "# no config files loaded")
			}
			for _, f := range a.cfg.ConfigFiles {
				fmt.Fprintf(s.out, "# loaded %s\n", f)
			}
			tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
			for _, st := range a.cfg.Settings() {
				fmt.Fprintf(tw, "%s\t= %s\t(%s)\n", st.Key, st.Value, st.Source)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&example, "example", false, "Print an example config file")
	return cmd
}
