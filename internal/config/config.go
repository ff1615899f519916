// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	Artifacts   ArtifactsConfig   `mapstructure:"artifacts" yaml:"artifacts"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Journal     JournalConfig     `mapstructure:"journal" yaml:"journal"`
}

// LoggerConfig controls the zap logger setup.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls the Chrome allocator and the per-step wait bounds.
type BrowserConfig struct {
	Headless           bool          `mapstructure:"headless" yaml:"headless"`
	DisableGPU         bool          `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	Args               []string      `mapstructure:"args" yaml:"args"`
	NavigationTimeout  time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	LoginWaitTimeout   time.Duration `mapstructure:"login_wait_timeout" yaml:"login_wait_timeout"`
	ElementWaitTimeout time.Duration `mapstructure:"element_wait_timeout" yaml:"element_wait_timeout"`
	SettleDelay        time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	SettlePollInterval time.Duration `mapstructure:"settle_poll_interval" yaml:"settle_poll_interval"`
	SettleDeadline     time.Duration `mapstructure:"settle_deadline" yaml:"settle_deadline"`
}

// CredentialsConfig locates the admin credential store.
type CredentialsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ArtifactsConfig selects and parameterizes the diagnostic sink.
type ArtifactsConfig struct {
	Mode     string        `mapstructure:"mode" yaml:"mode"` // "fs" or "redis"
	Dir      string        `mapstructure:"dir" yaml:"dir"`
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	RedisTTL time.Duration `mapstructure:"redis_ttl" yaml:"redis_ttl"`
}

// ServerConfig controls the inbound HTTP endpoint.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	MaxSessions     int64         `mapstructure:"max_sessions" yaml:"max_sessions"`
	RatePerSecond   float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	RateBurst       int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// JournalConfig controls the optional Postgres transaction journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
}

// SetDefaults initializes default values for every configuration key.
// Registering them with viper (rather than on the struct) is what makes
// TELLER_* env overrides visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "teller")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.login_wait_timeout", "15s")
	v.SetDefault("browser.element_wait_timeout", "10s")
	v.SetDefault("browser.settle_delay", "500ms")
	v.SetDefault("browser.settle_poll_interval", "250ms")
	v.SetDefault("browser.settle_deadline", "10s")

	// -- Credentials --
	v.SetDefault("credentials.file", "users.json")

	// -- Artifacts --
	v.SetDefault("artifacts.mode", "fs")
	v.SetDefault("artifacts.dir", "errors")
	v.SetDefault("artifacts.redis_url", "")
	v.SetDefault("artifacts.redis_ttl", "24h")

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_sessions", 4)
	v.SetDefault("server.rate_per_second", 5)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.shutdown_timeout", "15s")

	// -- Journal --
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.url", "")
}

// Default returns a configuration populated with production defaults.
func Default() Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the static defaults above.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return cfg
}

// Load reads configuration from the given file (optional), environment
// variables prefixed with TELLER, and defaults, in ascending priority
// of env over file over defaults.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TELLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// expandPaths resolves "~" in user-supplied filesystem paths.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Credentials.File, &c.Artifacts.Dir, &c.Logger.LogFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks cross-field consistency the zero value cannot express.
func (c *Config) Validate() error {
	switch c.Artifacts.Mode {
	case "fs", "redis":
	default:
		return fmt.Errorf("artifacts.mode must be \"fs\" or \"redis\", got %q", c.Artifacts.Mode)
	}
	if c.Artifacts.Mode == "redis" && c.Artifacts.RedisURL == "" {
		return fmt.Errorf("artifacts.redis_url is required when artifacts.mode is \"redis\"")
	}
	if c.Journal.Enabled && c.Journal.URL == "" {
		return fmt.Errorf("journal.url is required when the journal is enabled (hint: TELLER_JOURNAL_URL)")
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive, got %d", c.Server.MaxSessions)
	}
	if c.Browser.LoginWaitTimeout <= 0 || c.Browser.ElementWaitTimeout <= 0 {
		return fmt.Errorf("browser wait timeouts must be positive")
	}
	return nil
}
