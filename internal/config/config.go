package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/spf13/viper"
)

const appName = "lazydash"

// Config holds all application configuration
type Config struct {
	General  GeneralConfig           `mapstructure:"general"`
	Table    TableConfig             `mapstructure:"table"`
	Binding  BindingConfig           `mapstructure:"binding"`
	Database models.ConnectionConfig `mapstructure:"database"`
	History  HistoryConfig           `mapstructure:"history"`
	Log      LogConfig               `mapstructure:"log"`
}

type GeneralConfig struct {
	DashboardDir string `mapstructure:"dashboard_dir"`
	Theme        string `mapstructure:"theme"`
}

type TableConfig struct {
	PageSize        int    `mapstructure:"page_size"`
	SortMode        string `mapstructure:"sort_mode"`
	UnknownOperator string `mapstructure:"unknown_operator"`
	MaxCellWidth    int    `mapstructure:"max_cell_width"`
}

type BindingConfig struct {
	WarnOnTemplateIssues bool `mapstructure:"warn_on_template_issues"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Mode returns the configured sort cycling, defaulting to tri-state
func (t TableConfig) Mode() models.SortMode {
	if models.SortMode(t.SortMode) == models.SortModeBinary {
		return models.SortModeBinary
	}
	return models.SortModeTriState
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			DashboardDir: "dashboards",
			Theme:        "default",
		},
		Table: TableConfig{
			PageSize:        25,
			SortMode:        string(models.SortModeTriState),
			UnknownOperator: "exclude",
			MaxCellWidth:    40,
		},
		Binding: BindingConfig{
			WarnOnTemplateIssues: true,
		},
		Database: models.ConnectionConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "postgres",
			User:         "postgres",
			SSLMode:      "prefer",
			MaxConns:     5,
			QueryTimeout: 30 * time.Second,
		},
		History: HistoryConfig{
			Enabled:    true,
			Path:       "",
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("general.dashboard_dir", d.General.DashboardDir)
	v.SetDefault("general.theme", d.General.Theme)
	v.SetDefault("table.page_size", d.Table.PageSize)
	v.SetDefault("table.sort_mode", d.Table.SortMode)
	v.SetDefault("table.unknown_operator", d.Table.UnknownOperator)
	v.SetDefault("table.max_cell_width", d.Table.MaxCellWidth)
	v.SetDefault("binding.warn_on_template_issues", d.Binding.WarnOnTemplateIssues)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.max_conns", d.Database.MaxConns)
	v.SetDefault("database.query_timeout", d.Database.QueryTimeout)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
}

// Load loads configuration from file and LAZYDASH_* environment variables.
// An explicit path must exist; otherwise the standard locations are searched.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")

		// Add config paths in priority order
		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// HistoryPath returns the configured history database path or the default one
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// DashboardPath resolves a dashboard name or path to a YAML file.
// Names may contain slashes for dashboards nested under the dashboard directory.
func (c *Config) DashboardPath(nameOrPath string) string {
	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || filepath.IsAbs(nameOrPath) {
		return nameOrPath
	}
	return filepath.Join(c.General.DashboardDir, filepath.FromSlash(nameOrPath)+".yaml")
}
