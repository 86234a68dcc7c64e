package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory before environment overrides apply.
const DotEnvFile = ".env"

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file and overlaid with the environment.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Analytics   AnalyticsConfig   `toml:"analytics"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains provider-specific credentials.
type CredentialsConfig struct {
	Google GoogleConfig `toml:"google"`
}

// GoogleConfig contains the OAuth2 web client registered in the Google Cloud console.
type GoogleConfig struct {
	ClientID     string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"CLIENT_SECRET"`
	RedirectURI  string `toml:"redirect_uri" env:"REDIRECT_URI"`
}

// AnalyticsConfig selects the GA4 property and the report window.
//
// Dates use the Data API's relative forms ("90daysAgo", "today") or YYYY-MM-DD.
type AnalyticsConfig struct {
	PropertyID string `toml:"property_id" env:"PROPERTY_ID"`
	StartDate  string `toml:"start_date" env:"GA4X_START_DATE"`
	EndDate    string `toml:"end_date" env:"GA4X_END_DATE"`
}

// DatabaseConfig contains report history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"GA4X_DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	History      bool   `toml:"history" env:"GA4X_HISTORY"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host" env:"GA4X_HOST"`
	Port int    `toml:"port" env:"GA4X_PORT"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ResolveConfig loads the file at path when it exists and falls back to [DefaultConfig] otherwise.
//
// Environment overrides apply in both cases.
func ResolveConfig(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}

	config := DefaultConfig()
	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overlays environment variables onto config. Unset variables leave fields untouched.
//
// Variables from [DotEnvFile] are loaded first; values already in the environment win.
func ApplyEnv(config *Config) error {
	if err := LoadDotEnv(DotEnvFile); err != nil {
		return err
	}
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadDotEnv exports the KEY=value pairs in path without overriding existing variables.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports every required value that is still empty.
//
// The web server never calls this at startup; missing values surface when a route needs them.
func (c *Config) Validate() error {
	var missing []string
	if c.Credentials.Google.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.Credentials.Google.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.Credentials.Google.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}
	if c.Analytics.PropertyID == "" {
		missing = append(missing, "property_id")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Address returns the host:port the HTTP server listens on.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
