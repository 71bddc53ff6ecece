package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port        string            `yaml:"port"`
	DBPath      string            `yaml:"dbPath"`
	JWTSecret   string            `yaml:"jwtSecret"`
	Logging     LoggingConfig     `yaml:"logging"`
	Tables      TablesConfig      `yaml:"tables"`
	Cleaning    CleaningConfig    `yaml:"cleaning"`
	Upload      UploadConfig      `yaml:"upload"`
	Map         MapConfig         `yaml:"map"`
	Integration IntegrationConfig `yaml:"integration"`
	AdminLimit  RateLimitConfig   `yaml:"adminLimit"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// TablesConfig names the warehouse tables
type TablesConfig struct {
	Main         string `yaml:"main"`
	Master       string `yaml:"master"`
	MasterColumn string `yaml:"masterColumn"`
}

// CleaningConfig holds the fixed screening rules
type CleaningConfig struct {
	AllowedPrefectures []string `yaml:"allowedPrefectures"`
	ExcludedFlags      []string `yaml:"excludedFlags"`
}

// UploadConfig describes the uploaded station lists
type UploadConfig struct {
	StationColumn string `yaml:"stationColumn"`
	MaxBytes      int64  `yaml:"maxBytes"`
}

// MapConfig holds map presentation defaults
type MapConfig struct {
	Zoom  float64 `yaml:"zoom"`
	Pitch float64 `yaml:"pitch"`
}

// IntegrationConfig holds defaults for the admin integration action
type IntegrationConfig struct {
	Name            string   `yaml:"name"`
	APIProvider     string   `yaml:"apiProvider"`
	AllowedPrefixes []string `yaml:"allowedPrefixes"`
	AdminRoles      []string `yaml:"adminRoles"`
}

// RateLimitConfig throttles the admin endpoints per client IP
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Load 加载配置: defaults, then the YAML file (if any), then environment overrides
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SCREENER_CONFIG")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// insecureJWTSecret is the placeholder earlier sample configs shipped with
const insecureJWTSecret = "your-secret-key-change-in-production"

// ErrInsecureJWTSecret is returned when the admin endpoints would run with a guessable key
var ErrInsecureJWTSecret = errors.New("config: jwtSecret (or JWT_SECRET) must be set to a non-default value")

// Default returns the built-in configuration. It carries no JWT secret.
func Default() *Config {
	return &Config{
		Port:   ":8080",
		DBPath: "./data/warehouse/reallocation.db",
		Logging: LoggingConfig{
			Level: "info",
		},
		Tables: TablesConfig{
			Main:         "reallocation_data",
			Master:       "reallocation_master",
			MasterColumn: "ST_ID",
		},
		Cleaning: CleaningConfig{
			// 一都三県: distance calculation is unreliable elsewhere
			AllowedPrefectures: []string{"埼玉県", "千葉県", "神奈川県", "東京都"},
			ExcludedFlags:      []string{"同じST", "NA"},
		},
		Upload: UploadConfig{
			StationColumn: "St.ID",
			MaxBytes:      32 << 20,
		},
		Map: MapConfig{
			Zoom:  10,
			Pitch: 0,
		},
		Integration: IntegrationConfig{
			Name:            "git_api_integration",
			APIProvider:     "git_https_api",
			AllowedPrefixes: []string{"https://github.com/ha-se"},
			AdminRoles:      []string{"ACCOUNTADMIN"},
		},
		AdminLimit: RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		cfg.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MAIN_TABLE"); v != "" {
		cfg.Tables.Main = v
	}
	if v := os.Getenv("MASTER_TABLE"); v != "" {
		cfg.Tables.Master = v
	}
}

// Validate checks the values the service cannot start without
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("config: port is required")
	case c.DBPath == "":
		return errors.New("config: dbPath is required")
	case c.Tables.Main == "":
		return errors.New("config: tables.main is required")
	case c.Upload.StationColumn == "":
		return errors.New("config: upload.stationColumn is required")
	case len(c.Integration.AdminRoles) == 0:
		return errors.New("config: integration.adminRoles must not be empty")
	case c.AdminLimit.Requests < 0 || c.AdminLimit.Window < 0:
		return errors.New("config: adminLimit must not be negative")
	}
	if c.Tables.MasterColumn == "" {
		c.Tables.MasterColumn = "ST_ID"
	}
	return nil
}

// RequireJWTSecret fails unless a real signing key is configured. Commands that
// verify or issue admin tokens call it; read-only commands do not need a key.
func (c *Config) RequireJWTSecret() error {
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" || secret == insecureJWTSecret {
		return ErrInsecureJWTSecret
	}
	return nil
}
