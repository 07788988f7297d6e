// Package config loads family-tree settings from file, environment and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "github.com/rcliao/family-tree/internal/errors"
)

// EnvPrefix prefixes every environment variable, e.g. FAMILY_TREE_DATA_DIR.
const EnvPrefix = "FAMILY_TREE"

// Config holds all application configuration
type Config struct {
	DataDir   string
	LogLevel  string
	LogFormat string
	LogFile   string // optional, rotated
}

// Load builds the configuration. An explicit configFile must exist; otherwise
// ./family-tree.yaml and then <user config dir>/family-tree/config.yaml are tried.
// Environment variables override the file and set flags override both.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	home, _ := os.UserHomeDir()
	v.SetDefault("data_dir", filepath.Join(home, ".family-tree", "trees"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else if path := findConfig(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for key, flag := range map[string]string{
			"data_dir":  "data-dir",
			"log.level": "log-level",
		} {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	cfg := &Config{
		DataDir:   expandHome(v.GetString("data_dir"), home),
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogFile:   expandHome(v.GetString("log.file"), home),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return apperrors.NewConfigValidationFailed("data_dir", "must not be empty")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return apperrors.NewConfigValidationFailed("log.format", fmt.Sprintf("unknown format %q (use json or console)", c.LogFormat))
	}
	return nil
}

func findConfig() string {
	candidates := []string{"family-tree.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "family-tree", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
