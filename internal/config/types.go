package config

import (
	"fmt"
	"strconv"

	"github.com/nibzard/taskmgr-go/internal/datadir"
)

// Source records where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultDataDir             = "."
	DefaultAdminUser           = "admin"
	DefaultLogDir              = "~/.taskmgr/logs"
	DefaultAuditLog            = true
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
	DefaultReportFormat        = "text"
	DefaultBoardRefreshSeconds = 2
)

// Config holds the full configuration for taskmgr.
type Config struct {
	// Paths
	DataDir          string `toml:"data_dir"`
	UsersFile        string `toml:"users_file"`
	TasksFile        string `toml:"tasks_file"`
	TaskOverviewFile string `toml:"task_overview_file"`
	UserOverviewFile string `toml:"user_overview_file"`

	// The username granted administrator operations.
	AdminUser string `toml:"admin_user"`

	// Session audit log
	LogDir   string `toml:"log_dir"`
	AuditLog bool   `toml:"audit_log"`

	// Console logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Output
	ReportFormat        string `toml:"report_format"`
	BoardRefreshSeconds int    `toml:"board_refresh_seconds"`

	// Sources maps each key to where its value came from (computed).
	Sources map[string]Source `toml:"-"`
	// ConfigFiles lists the files that were loaded, lowest priority first.
	ConfigFiles []string `toml:"-"`
}

// field describes one configuration key across every source.
type field struct {
	key   string // TOML key
	env   string
	flag  string
	kind  string // string, bool, int
	usage string
	get   func(*Config) string
	set   func(*Config, string) error
}

func stringField(key, env, flag, usage string, p func(*Config) *string) field {
	return field{
		key: key, env: env, flag: flag, kind: "string", usage: usage,
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = v; return nil },
	}
}

func boolField(key, env, flag, usage string, p func(*Config) *bool) field {
	return field{
		key: key, env: env, flag: flag, kind: "bool", usage: usage,
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: invalid boolean %q", key, v)
			}
			*p(c) = b
			return nil
		},
	}
}

func intField(key, env, flag, usage string, p func(*Config) *int) field {
	return field{
		key: key, env: env, flag: flag, kind: "int", usage: usage,
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q", key, v)
			}
			*p(c) = n
			return nil
		},
	}
}

// fields lists every configurable key in display order.
var fields = []field{
	stringField("data_dir", "TASKMGR_DATA_DIR", "data-dir", "Directory holding the user and task files",
		func(c *Config) *string { return &c.DataDir }),
	stringField("users_file", "TASKMGR_USERS_FILE", "users-file", "Credential store (relative to data dir)",
		func(c *Config) *string { return &c.UsersFile }),
	stringField("tasks_file", "TASKMGR_TASKS_FILE", "tasks-file", "Task store (relative to data dir)",
		func(c *Config) *string { return &c.TasksFile }),
	stringField("task_overview_file", "TASKMGR_TASK_OVERVIEW_FILE", "task-overview", "Task overview report (relative to data dir)",
		func(c *Config) *string { return &c.TaskOverviewFile }),
	stringField("user_overview_file", "TASKMGR_USER_OVERVIEW_FILE", "user-overview", "User overview report (relative to data dir)",
		func(c *Config) *string { return &c.UserOverviewFile }),
	stringField("admin_user", "TASKMGR_ADMIN_USER", "admin", "Username with administrator access",
		func(c *Config) *string { return &c.AdminUser }),
	stringField("log_dir", "TASKMGR_LOG_DIR", "log-dir", "Session audit log directory",
		func(c *Config) *string { return &c.LogDir }),
	boolField("audit_log", "TASKMGR_AUDIT_LOG", "audit-log", "Write a JSONL audit log for each session",
		func(c *Config) *bool { return &c.AuditLog }),
	stringField("log_level", "TASKMGR_LOG_LEVEL", "log-level", "Log level (debug, info, warn, error)",
		func(c *Config) *string { return &c.LogLevel }),
	stringField("log_format", "TASKMGR_LOG_FORMAT", "log-format", "Log format (text, json, logfmt)",
		func(c *Config) *string { return &c.LogFormat }),
	boolField("log_timestamps", "TASKMGR_LOG_TIMESTAMPS", "log-timestamps", "Show timestamps in logs",
		func(c *Config) *bool { return &c.LogTimestamps }),
	boolField("log_caller", "TASKMGR_LOG_CALLER", "log-caller", "Show caller location in logs",
		func(c *Config) *bool { return &c.LogCaller }),
	stringField("report_format", "TASKMGR_REPORT_FORMAT", "report-format", "Report output format (text, json, yaml)",
		func(c *Config) *string { return &c.ReportFormat }),
	intField("board_refresh_seconds", "TASKMGR_BOARD_REFRESH_SECONDS", "board-refresh", "Board refresh interval (seconds)",
		func(c *Config) *int { return &c.BoardRefreshSeconds }),
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.UsersFile = datadir.DefaultUsersFile
	cfg.TasksFile = datadir.DefaultTasksFile
	cfg.TaskOverviewFile = datadir.DefaultTaskOverviewFile
	cfg.UserOverviewFile = datadir.DefaultUserOverviewFile
	cfg.AdminUser = DefaultAdminUser
	cfg.LogDir = DefaultLogDir
	cfg.AuditLog = DefaultAuditLog
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.ReportFormat = DefaultReportFormat
	cfg.BoardRefreshSeconds = DefaultBoardRefreshSeconds

	cfg.Sources = make(map[string]Source, len(fields))
	for _, f := range fields {
		cfg.Sources[f.key] = SourceDefault
	}
}

// Setting is a resolved key with its value and source.
type Setting struct {
	Key    string
	Value  string
	Source Source
}

// Settings returns every key in display order.
func (c *Config) Settings() []Setting {
	out := make([]Setting, 0, len(fields))
	for _, f := range fields {
		out = append(out, Setting{Key: f.key, Value: f.get(c), Source: c.Sources[f.key]})
	}
	return out
}
