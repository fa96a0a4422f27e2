package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Docker        DockerConfig        `toml:"docker"`
	Notifications NotificationsConfig `toml:"notifications"`
	Web           WebConfig           `toml:"web"`
	Schedules     []ScheduleEntry     `toml:"schedule"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	ResultsDir   string `toml:"results_dir"`
	DatabasePath string `toml:"database_path"`
	SuitesFile   string `toml:"suites_file"`
	Timeout      string `toml:"timeout"`
	Parallel     int    `toml:"parallel"`
	Debug        bool   `toml:"debug"`
}

// DockerConfig holds container runtime settings
type DockerConfig struct {
	Binary string `toml:"binary"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Desktop      bool   `toml:"desktop"`
	SlackWebhook string `toml:"slack_webhook"`
}

// WebConfig holds web UI settings
type WebConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// ScheduleEntry binds a suite to a cron expression
type ScheduleEntry struct {
	Suite string `toml:"suite"`
	Cron  string `toml:"cron"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			ResultsDir:   filepath.Join(home, ".benchdock", "results"),
			DatabasePath: filepath.Join(home, ".benchdock", "benchdock.db"),
			SuitesFile:   "suites.yaml",
			Timeout:      "10m",
			Parallel:     1,
		},
		Docker: DockerConfig{
			Binary: "docker",
		},
		Notifications: NotificationsConfig{
			Desktop: false,
		},
		Web: WebConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand paths
	cfg.General.ResultsDir = ExpandPath(cfg.General.ResultsDir)
	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.General.SuitesFile = ExpandPath(cfg.General.SuitesFile)

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides defaults from the TIMEOUT and PARALLEL environment
// variables, read once at load time. Surrounding benchmark scripts set
// these instead of flags.
func (c *Config) applyEnv() {
	if v := os.Getenv("TIMEOUT"); v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			c.General.Timeout = v
		} else if secs, err := strconv.Atoi(v); err == nil {
			// Bare integers are seconds, matching the wrapped scripts
			c.General.Timeout = strconv.Itoa(secs) + "s"
		}
	}
	if v := os.Getenv("PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			c.General.Parallel = n
		}
	}
}

// Save writes the configuration to a TOML file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "benchdock", "config.toml")
}
