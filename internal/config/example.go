package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskmgr configuration file
# Values can be overridden by TASKMGR_* environment variables or CLI flags.

# Directory holding the data files (supports ~ expansion)
data_dir = "."

# Data files, relative to data_dir unless absolute
users_file = "user.txt"
tasks_file = "tasks.txt"
task_overview_file = "task_overview.txt"
user_overview_file = "user_overview.txt"

# Username allowed to register users, delete tasks and generate reports
admin_user = "admin"

# Per-session JSONL audit log
log_dir = "~/.taskmgr/logs"
audit_log = true

# Console logging on stderr
log_level = "info"       # debug, info, warn, error
log_format = "text"      # text, json, logfmt
log_timestamps = false
log_caller = false

# Default output format for "taskmgr report": text, json, yaml
report_format = "text"

# Refresh interval for "taskmgr board"
board_refresh_seconds = 2
`
}
