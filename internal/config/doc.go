// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskmgr/taskmgr.toml or the OS config directory)
// 3. Project config file (taskmgr.toml or .taskmgr.toml in the current
//    directory, or the file named by --config)
// 4. Environment variables (TASKMGR_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
// The source of every value is recorded in Config.Sources.
//
// User-level config locations:
// - ~/.taskmgr/taskmgr.toml (preferred)
// - Windows: %APPDATA%\taskmgr\taskmgr.toml
// - macOS: ~/Library/Application Support/taskmgr/taskmgr.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskmgr/taskmgr.toml or ~/.config/taskmgr/taskmgr.toml
package config
