package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Production endpoints. Override at build time with -ldflags "-X github.com/pavan3030-vikal/VIKAL-NEW/internal/config.DefaultAPIURL=http://localhost:8000"
var (
	DefaultAPIURL        = "https://vikal-backend3030-production.up.railway.app"
	DefaultSummarizerURL = "https://vikalnew2-production.up.railway.app"
	DefaultUpgradeURL    = "https://razorpay.com/payment-link/plink_Q0hzTfIX0l2sHx/test"
)

const (
	envPrefix             = "VIKAL"
	defaultTimeoutSeconds = 60
	defaultTipsMaxTokens  = 100
)

// Config represents the application configuration
type Config struct {
	APIURL         string `yaml:"api_url" mapstructure:"api_url"`               // explain, solve, feedback
	SummarizerURL  string `yaml:"summarizer_url" mapstructure:"summarizer_url"` // summarize-youtube, chat-youtube
	IdentityURL    string `yaml:"identity_url,omitempty" mapstructure:"identity_url"`
	UpgradeURL     string `yaml:"upgrade_url" mapstructure:"upgrade_url"`
	TimeoutSeconds int    `yaml:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`
	CachePath      string `yaml:"cache_path,omitempty" mapstructure:"cache_path"`

	Tips TipsConfig `yaml:"tips" mapstructure:"tips"`

	// Session is written by the identity provider after sign-in and removed on sign-out.
	Session *SessionConfig `yaml:"session,omitempty" mapstructure:"session"`
}

// TipsConfig controls the secondary exam tips request.
// An empty Endpoint selects the built-in tips source.
type TipsConfig struct {
	Endpoint  string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SessionConfig holds the identity provider's persisted sign-in
type SessionConfig struct {
	UserID       string `yaml:"user_id" mapstructure:"user_id"`
	DisplayName  string `yaml:"display_name,omitempty" mapstructure:"display_name"`
	Email        string `yaml:"email,omitempty" mapstructure:"email"`
	AvatarURL    string `yaml:"avatar_url,omitempty" mapstructure:"avatar_url"`
	DeviceID     string `yaml:"device_id,omitempty" mapstructure:"device_id"`
	IDToken      string `yaml:"id_token,omitempty" mapstructure:"id_token"`
	RefreshToken string `yaml:"refresh_token,omitempty" mapstructure:"refresh_token"`
	ExpiresAt    int64  `yaml:"expires_at,omitempty" mapstructure:"expires_at"` // Unix timestamp
}

var (
	configPath string
	configDir  string
)

func init() {
	// Under sudo, os.UserHomeDir() returns /root; prefer the invoking user's home.
	var home string
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			home = u.HomeDir
		}
	}
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			panic(fmt.Sprintf("failed to get home directory: %v", err))
		}
	}

	configDir = filepath.Join(home, ".vikal")
	configPath = filepath.Join(configDir, "config.yaml")
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return configPath
}

// Default returns a config populated with the build-time endpoints.
func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		SummarizerURL:  DefaultSummarizerURL,
		UpgradeURL:     DefaultUpgradeURL,
		TimeoutSeconds: defaultTimeoutSeconds,
		Tips: TipsConfig{
			MaxTokens: defaultTipsMaxTokens,
		},
	}
}

// Load loads the configuration from the default location
func Load() (*Config, error) {
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration at path, creating it with defaults when missing.
// A .env file in the working directory and VIKAL_* variables override file values.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveTo(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Session != nil && cfg.Session.UserID == "" {
		cfg.Session = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads the config file as written, without .env or VIKAL_*
// overrides. Read-modify-write callers use it so overrides never reach disk.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Session != nil && cfg.Session.UserID == "" {
		cfg.Session = nil
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("summarizer_url", d.SummarizerURL)
	v.SetDefault("identity_url", "")
	v.SetDefault("upgrade_url", d.UpgradeURL)
	v.SetDefault("request_timeout_seconds", d.TimeoutSeconds)
	v.SetDefault("cache_path", "")
	v.SetDefault("tips.endpoint", "")
	v.SetDefault("tips.max_tokens", d.Tips.MaxTokens)
}

// SaveTo writes cfg as YAML with owner-only permissions.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url cannot be empty")
	}
	if c.SummarizerURL == "" {
		return fmt.Errorf("summarizer_url cannot be empty")
	}
	if c.UpgradeURL == "" {
		return fmt.Errorf("upgrade_url cannot be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be > 0")
	}
	if c.Tips.MaxTokens <= 0 {
		return fmt.Errorf("tips.max_tokens must be > 0")
	}
	return nil
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IdentityBaseURL returns the device-authorization base URL, falling back to the API URL.
func (c *Config) IdentityBaseURL() string {
	if c.IdentityURL != "" {
		return strings.TrimSuffix(c.IdentityURL, "/")
	}
	return strings.TrimSuffix(c.APIURL, "/")
}

// CacheFile returns the local cache database path.
func (c *Config) CacheFile() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(configDir, "cache.db")
}

// LogDir returns the directory for log files.
func LogDir() string {
	return filepath.Join(configDir, "logs")
}
