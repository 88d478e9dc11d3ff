package config

import (
	"strconv"

	"github.com/spf13/pflag"
)

// ConfigFlag names an explicit config file that replaces project file discovery.
const ConfigFlag = "config"

// RegisterFlags defines the configuration flags on fs.
// Defaults shown in help are the built-in defaults; only flags the user
// sets explicitly override file and environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	defaults := &Config{}
	setDefaults(defaults)

	fs.String(ConfigFlag, "", "Config file (default: ./taskmgr.toml or ./.taskmgr.toml)")
	for _, f := range fields {
		switch f.kind {
		case "bool":
			b, _ := strconv.ParseBool(f.get(defaults))
			fs.Bool(f.flag, b, f.usage)
		case "int":
			n, _ := strconv.Atoi(f.get(defaults))
			fs.Int(f.flag, n, f.usage)
		default:
			fs.String(f.flag, f.get(defaults), f.usage)
		}
	}
}

// applyFlags copies every explicitly set flag into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for _, f := range fields {
		flag := fs.Lookup(f.flag)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := f.set(cfg, flag.Value.String()); err != nil {
			return err
		}
		cfg.Sources[f.key] = SourceFlag
	}
	return nil
}

func explicitConfigFile(fs *pflag.FlagSet) string {
	if fs == nil {
		return ""
	}
	flag := fs.Lookup(ConfigFlag)
	if flag == nil || !flag.Changed {
		return ""
	}
	return expandPath(flag.Value.String())
}
