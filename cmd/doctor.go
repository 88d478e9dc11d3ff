package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskmgr-go/internal/config"
	"github.com/nibzard/taskmgr-go/internal/task"
	"github.com/nibzard/taskmgr-go/internal/users"
)

func newDoctorCmd(s streams) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the data files for problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, s)
			if err != nil {
				return err
			}
			return doctor(s.out, a.cfg, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every task")
	return cmd
}

// doctor never creates files; missing stores are reported instead.
func doctor(w io.Writer, cfg *config.Config, verbose bool) error {
	fmt.Fprintln(w, "taskmgr doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintf(w, "Data directory: %s\n", cfg.DataDir)
	if info, err := os.Stat(cfg.DataDir); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else if !info.IsDir() {
		fmt.Fprintln(w, "  ❌ Error: not a directory")
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Users
	var known func(string) bool
	fmt.Fprintf(w, "Users file: %s\n", cfg.UsersFile)
	switch ok, err := checkFile(cfg.UsersFile); {
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	case !ok:
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first session)")
	default:
		store, err := users.Open(cfg.UsersFile, nil)
		if err != nil {
			fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
			allOK = false
			break
		}
		fmt.Fprintf(w, "  ✅ %d users\n", store.Len())
		if !store.Exists(cfg.AdminUser) {
			fmt.Fprintf(w, "  ⚠️  Administrator %q is not registered\n", cfg.AdminUser)
		}
		known = store.Exists
	}
	fmt.Fprintln(w)

	// Tasks
	fmt.Fprintf(w, "Tasks file: %s\n", cfg.TasksFile)
	switch ok, err := checkFile(cfg.TasksFile); {
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	case !ok:
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first session)")
	default:
		scan, err := task.NewStore(cfg.TasksFile, nil).Scan()
		if err != nil {
			fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
			allOK = false
			break
		}
		fmt.Fprintf(w, "  ✅ %d tasks\n", len(scan.Records))
		for _, line := range scan.Skipped {
			fmt.Fprintf(w, "  ❌ Line %d: malformed record (fewer than %d fields), ignored when reading\n", line, task.FieldCount)
			allOK = false
		}

		result := task.Validate(scan.Records, task.ValidationOptions{KnownUser: known})
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  ⚠️  %s\n", warning)
		}
		if result.Valid {
			fmt.Fprintln(w, "  ✅ Valid")
		} else {
			fmt.Fprintln(w, "  ❌ Validation failed:")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "     - %v\n", e)
			}
			allOK = false
		}
		if verbose {
			for i, r := range scan.Records {
				fmt.Fprintf(w, "    %d. [%s] %s: %s (due %s)\n", i+1, r.Completed, r.Owner, r.Title, r.DueDate)
			}
		}
	}
	fmt.Fprintln(w)

	// Reports
	for _, p := range []string{cfg.TaskOverviewFile, cfg.UserOverviewFile} {
		fmt.Fprintf(w, "Report: %s\n", p)
		switch ok, err := checkFile(p); {
		case err != nil:
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		case !ok:
			fmt.Fprintln(w, "  ⚠️  Not generated yet")
		default:
			fmt.Fprintln(w, "  ✅ OK")
		}
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// checkFile reports whether path is an existing regular file.
func checkFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("path is a directory")
	}
	return true, nil
}
