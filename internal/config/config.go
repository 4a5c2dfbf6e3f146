package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the BBS configuration (BBS identity lives in the database).
type Config struct {
	Server ServerConfig `yaml:"server"`
	Paths  PathsConfig  `yaml:"paths"`
	Log    LogConfig    `yaml:"log"`
	Games  GamesConfig  `yaml:"games"`
}

// ServerConfig holds network listener settings.
type ServerConfig struct {
	TelnetPort int  `yaml:"telnet_port"`
	SSHPort    int  `yaml:"ssh_port"`
	HTTPPort   int  `yaml:"http_port"`
	SSHEnabled bool `yaml:"ssh_enabled"`
}

// PathsConfig holds filesystem paths for assets and data.
type PathsConfig struct {
	Data     string `yaml:"data"`
	Database string `yaml:"database"`
	Games    string `yaml:"games"`
	Art      string `yaml:"art"`
}

// LogConfig controls the zap logger built by obslog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Caller bool   `yaml:"caller"`
}

// GamesConfig tunes the built-in number guessing game.
type GamesConfig struct {
	NumberGuessMax      int `yaml:"numberguess_max"`
	NumberGuessAttempts int `yaml:"numberguess_attempts"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			TelnetPort: 2323,
			SSHPort:    2222,
			HTTPPort:   8080,
			SSHEnabled: true,
		},
		Paths: PathsConfig{
			Data:     "./data",
			Database: "./data/dusk.db",
			Games:    "./assets/games",
			Art:      "./assets/art",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Games: GamesConfig{
			NumberGuessMax:      100,
			NumberGuessAttempts: 7,
		},
	}
}

// Load reads and parses a YAML config file, then applies environment
// overrides (a .env file in the working directory is honoured when present).
// A missing config file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	ports := []struct {
		key string
		dst *int
	}{
		{"TELNET_PORT", &c.Server.TelnetPort},
		{"SSH_PORT", &c.Server.SSHPort},
		{"HTTP_PORT", &c.Server.HTTPPort},
	}
	for _, p := range ports {
		v := strings.TrimSpace(os.Getenv(p.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s=%q: %w", p.key, v, err)
		}
		*p.dst = n
	}

	if v := strings.TrimSpace(os.Getenv("BBS_DATABASE")); v != "" {
		c.Paths.Database = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks port ranges and game limits.
func (c *Config) Validate() error {
	for name, port := range map[string]int{
		"telnet_port": c.Server.TelnetPort,
		"ssh_port":    c.Server.SSHPort,
		"http_port":   c.Server.HTTPPort,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("server.%s out of range: %d", name, port)
		}
	}
	if c.Games.NumberGuessMax < 2 {
		return fmt.Errorf("games.numberguess_max must be at least 2")
	}
	if c.Games.NumberGuessAttempts < 1 {
		return fmt.Errorf("games.numberguess_attempts must be at least 1")
	}
	return nil
}
