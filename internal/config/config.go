package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Export ExportConfig `mapstructure:"export"`
	Log    LogConfig    `mapstructure:"log"`
}

// APIConfig holds backend endpoint settings.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExportConfig holds where exported workbooks land.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig holds log output settings. The terminal belongs to the grid, so
// logs go to a file.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and env. Env var overrides use prefix PROCTRACK_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://127.0.0.1:5000/procure")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("export.dir", ".")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "proctrack", "proctrack.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PROCTRACK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "proctrack"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PROCTRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 15 * time.Second
	}
	return c, nil
}
