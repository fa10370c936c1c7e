package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Backend names
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

// Auth modes for the Google APIs
const (
	AuthServiceAccount = "serviceAccount"
	AuthOAuth          = "oauth"
)

const (
	DefaultSheetName     = "Sheet1"
	DefaultSheetRange    = "A:Z"
	DefaultServerAddr    = ":8080"
	DefaultDeliverByRule = "DTSTART:20241210T000000Z\nRRULE:FREQ=YEARLY"
	DefaultEventName     = "Sub-for-Santa"
	DefaultLogDir        = "logs"
)

// ServerConfig configures the registry HTTP endpoint
type ServerConfig struct {
	Addr               string   `yaml:"addr,omitempty"`
	AllowedOrigins     []string `yaml:"allowedOrigins,omitempty"`
	ClaimRatePerSecond float64  `yaml:"claimRatePerSecond,omitempty" validate:"gte=0"`
	ClaimBurst         int      `yaml:"claimBurst,omitempty" validate:"gte=0"`
}

// ClientConfig configures the claiming client
type ClientConfig struct {
	// APIURL points at a running registry endpoint. When empty the client
	// talks to the backing store directly.
	APIURL   string `yaml:"apiURL,omitempty" validate:"omitempty,url"`
	CacheDir string `yaml:"cacheDir,omitempty"`
}

// ExportConfig configures calendar and summary exports
type ExportConfig struct {
	DeliverByRule string `yaml:"deliverByRule,omitempty"`
	EventName     string `yaml:"eventName,omitempty"`
}

// EmailConfig configures emailed gift details
type EmailConfig struct {
	Sender string `yaml:"sender,omitempty" validate:"omitempty,email"`
}

// Config represents the application configuration
type Config struct {
	Backend            string       `yaml:"backend" validate:"required,oneof=sheets postgres"`
	SpreadsheetID      string       `yaml:"spreadsheetID" validate:"required_if=Backend sheets"`
	SheetName          string       `yaml:"sheetName,omitempty"`
	SheetRange         string       `yaml:"sheetRange,omitempty"`
	Auth               string       `yaml:"auth,omitempty" validate:"omitempty,oneof=serviceAccount oauth"`
	ServiceAccountFile string       `yaml:"serviceAccountFile,omitempty"`
	DatabaseURL        string       `yaml:"databaseURL,omitempty" validate:"required_if=Backend postgres"`
	Server             ServerConfig `yaml:"server,omitempty"`
	Client             ClientConfig `yaml:"client,omitempty"`
	Export             ExportConfig `yaml:"export,omitempty"`
	Email              EmailConfig  `yaml:"email,omitempty"`
	LogDir             string       `yaml:"logDir,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from gift_registry_config.yaml
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" will look for "gift_registry_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills optional fields left empty in the file
func (cfg *Config) ApplyDefaults() {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.SheetRange == "" {
		cfg.SheetRange = DefaultSheetRange
	}
	if cfg.Auth == "" {
		cfg.Auth = AuthServiceAccount
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.ClaimRatePerSecond == 0 {
		cfg.Server.ClaimRatePerSecond = 1
	}
	if cfg.Server.ClaimBurst == 0 {
		cfg.Server.ClaimBurst = 5
	}
	if cfg.Export.DeliverByRule == "" {
		cfg.Export.DeliverByRule = DefaultDeliverByRule
	}
	if cfg.Export.EventName == "" {
		cfg.Export.EventName = DefaultEventName
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
}

// Validate validates the configuration struct and checks the delivery rrule
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Export.DeliverByRule != "" {
		if _, err := rrule.StrToRRule(cfg.Export.DeliverByRule); err != nil {
			return fmt.Errorf("invalid rrule in export.deliverByRule: %w", err)
		}
	}

	return nil
}

// SheetRangeA1 returns the full A1 range the registry reads, e.g. "Sheet1!A:Z"
func (cfg *Config) SheetRangeA1() string {
	return fmt.Sprintf("%s!%s", cfg.SheetName, cfg.SheetRange)
}

// CacheDir returns the directory for the device-local claim cache
func (cfg *Config) CacheDir(env string) (string, error) {
	if cfg.Client.CacheDir != "" {
		return cfg.Client.CacheDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	name := "cache"
	if env != "" {
		name = "cache-" + env
	}
	return filepath.Join(homeDir, ".gift-registry", name), nil
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := "gift_registry_config.yaml"
	if env != "" {
		configFileName = "gift_registry_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
