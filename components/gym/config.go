package gym

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema []byte

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL       = "GYMDESK_API_URL"
	EnvLegacyAPIURL = "VITE_API_URL"
	EnvToken        = "GYMDESK_TOKEN"
	EnvTimezone     = "GYMDESK_TIMEZONE"
)

// Config is the desk configuration file.
type Config struct {
	API      APIConfig     `yaml:"api"`
	Cache    CacheConfig   `yaml:"cache"`
	Alerts   AlertsConfig  `yaml:"alerts"`
	Forms    FormsConfig   `yaml:"forms"`
	Log      LogConfig     `yaml:"log"`
	Server   ServerConfig  `yaml:"server"`
	Session  SessionConfig `yaml:"session"`
	Timezone string        `yaml:"timezone,omitempty"`
	Source   string        `yaml:"-"`
}

// APIConfig points the desk at the REST backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Token     string        `yaml:"token,omitempty"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

// CacheConfig bounds query reuse.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// AlertsConfig tunes "expiring soon" checks.
type AlertsConfig struct {
	ExpiryWindowDays int `yaml:"expiry_window_days"`
}

// FormsConfig tunes draft validation.
type FormsConfig struct {
	RequireTrainer bool `yaml:"require_trainer"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the local HTTP shell.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SessionConfig locates the persisted CLI session.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	sessionPath := ".gymdesk/session.yaml"
	if home, err := os.UserHomeDir(); err == nil {
		sessionPath = filepath.Join(home, ".gymdesk", "session.yaml")
	}
	return Config{
		API: APIConfig{
			Timeout: 10 * time.Second,
		},
		Cache:   CacheConfig{TTL: DefaultCacheTTL},
		Alerts:  AlertsConfig{ExpiryWindowDays: DefaultExpiryWindowDays},
		Log:     LogConfig{Level: "info", Format: "console"},
		Server:  ServerConfig{Addr: ":8080"},
		Session: SessionConfig{Path: sessionPath},
	}
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; existing variables are never overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("gym: load %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig builds the configuration from defaults, the optional YAML file at
// path, and the environment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("gym: open config %s: %w", path, err)
		}
		defer f.Close()
		if err := DecodeConfig(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("gym: decode config %s: %w", path, err)
		}
		cfg.Source = path
	}
	ApplyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DecodeConfig validates a YAML document against the config schema and merges
// it over cfg.
func DecodeConfig(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("gym: read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := validateConfigDocument(data); err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("gym: parse config: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables. GYMDESK_API_URL wins over the
// legacy VITE_API_URL.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if url, ok := lookupNonEmpty(lookup, EnvAPIURL); ok {
		cfg.API.BaseURL = url
	} else if url, ok := lookupNonEmpty(lookup, EnvLegacyAPIURL); ok {
		cfg.API.BaseURL = url
	}
	if token, ok := lookupNonEmpty(lookup, EnvToken); ok {
		cfg.API.Token = token
	}
	if tz, ok := lookupNonEmpty(lookup, EnvTimezone); ok {
		cfg.Timezone = tz
	}
}

func lookupNonEmpty(lookup func(string) (string, bool), key string) (string, bool) {
	value, ok := lookup(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// Validate checks values the schema cannot express.
func (c Config) Validate() error {
	if c.API.Timeout < 0 {
		return fmt.Errorf("gym: api.timeout must not be negative")
	}
	if c.Alerts.ExpiryWindowDays < 0 {
		return fmt.Errorf("gym: alerts.expiry_window_days must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone; empty means the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("gym: unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Encode writes the configuration as YAML.
func (c Config) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("gym: encode config: %w", err)
	}
	return encoder.Close()
}

var (
	configSchemaOnce sync.Once
	compiledSchema   *jsonschema.Schema
	configSchemaErr  error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	configSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		const name = "gymdesk-config.json"
		if err := compiler.AddResource(name, bytes.NewReader(configSchema)); err != nil {
			configSchemaErr = fmt.Errorf("gym: load config schema: %w", err)
			return
		}
		compiledSchema, configSchemaErr = compiler.Compile(name)
		if configSchemaErr != nil {
			configSchemaErr = fmt.Errorf("gym: compile config schema: %w", configSchemaErr)
		}
	})
	return compiledSchema, configSchemaErr
}

func validateConfigDocument(data []byte) error {
	schema, err := compiledConfigSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("gym: parse config: %w", err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("gym: normalize config: %w", err)
	}
	var payload any
	if err := json.Unmarshal(normalized, &payload); err != nil {
		return fmt.Errorf("gym: normalize config: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("gym: config failed validation: %w", err)
	}
	return nil
}
