package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/nibzard/taskmgr-go/internal/datadir"
	"github.com/nibzard/taskmgr-go/internal/logging"
	"github.com/nibzard/taskmgr-go/internal/report"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskmgr/taskmgr.toml or OS-specific config dir)
// 3. Project config file (taskmgr.toml or .taskmgr.toml, or --config)
// 4. Environment variables
// 5. CLI flags that were set explicitly
//
// fs must already be parsed; it may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Project config file (overrides user config)
	projectConfigFile := explicitConfigFile(fs)
	if projectConfigFile == "" {
		projectConfigFile = findProjectConfigFile()
	} else if _, err := os.Stat(projectConfigFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", projectConfigFile, err)
	}
	if projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// 5. Flags override everything
	if err := applyFlags(cfg, fs); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

// loadConfigFile decodes TOML from path over cfg and records the keys it set.
func loadConfigFile(cfg *Config, path string, source Source) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, k := range md.Keys() {
		cfg.Sources[k.String()] = source
	}
	cfg.ConfigFiles = append(cfg.ConfigFiles, path)
	return nil
}

// finalizeConfig expands paths, resolves data files and validates values.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)

	dir := expandPath(cfg.DataDir)
	if dir == "" {
		dir = DefaultDataDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	cfg.DataDir = abs

	cfg.UsersFile = datadir.Resolve(cfg.DataDir, expandPath(cfg.UsersFile))
	cfg.TasksFile = datadir.Resolve(cfg.DataDir, expandPath(cfg.TasksFile))
	cfg.TaskOverviewFile = datadir.Resolve(cfg.DataDir, expandPath(cfg.TaskOverviewFile))
	cfg.UserOverviewFile = datadir.Resolve(cfg.DataDir, expandPath(cfg.UserOverviewFile))

	for name, v := range map[string]string{
		"users_file":         cfg.UsersFile,
		"tasks_file":         cfg.TasksFile,
		"task_overview_file": cfg.TaskOverviewFile,
		"user_overview_file": cfg.UserOverviewFile,
	} {
		if v == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}

	cfg.AdminUser = strings.ToLower(strings.TrimSpace(cfg.AdminUser))
	if cfg.AdminUser == "" {
		return fmt.Errorf("admin_user must not be empty")
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := logging.ParseFormatter(cfg.LogFormat); err != nil {
		return fmt.Errorf("log_format: %w", err)
	}
	format, err := report.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return fmt.Errorf("report_format: %w", err)
	}
	cfg.ReportFormat = string(format)

	if cfg.BoardRefreshSeconds < 1 {
		return fmt.Errorf("board_refresh_seconds must be at least 1, got %d", cfg.BoardRefreshSeconds)
	}
	return nil
}

// LoggingOptions returns the console logging options for this config.
func (c *Config) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.LogLevel
	opts.Format = c.LogFormat
	opts.Timestamps = c.LogTimestamps
	opts.Caller = c.LogCaller
	return opts
}
