// Package datadir provides file names and path helpers for the task manager data directory.
package datadir

import "path/filepath"

const (
	// DefaultUsersFile holds one "username, password" pair per line.
	DefaultUsersFile = "user.txt"

	// DefaultTasksFile holds one task record per line.
	DefaultTasksFile = "tasks.txt"

	// DefaultTaskOverviewFile is the rendered global statistics report.
	DefaultTaskOverviewFile = "task_overview.txt"

	// DefaultUserOverviewFile is the rendered per-user statistics report.
	DefaultUserOverviewFile = "user_overview.txt"

	// StateDir is the per-user state directory name under $HOME.
	StateDir = ".taskmgr"

	// DefaultConfigFile is the config file name.
	DefaultConfigFile = "taskmgr.toml"
)

// Resolve joins file onto dataDir unless file is already absolute.
func Resolve(dataDir, file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	if dataDir == "" || dataDir == "." {
		return file
	}
	return filepath.Join(dataDir, file)
}
