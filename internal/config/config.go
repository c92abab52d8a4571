package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/example/tee-time-sniper/internal/foreup"
	"github.com/example/tee-time-sniper/internal/httpretry"
	"github.com/example/tee-time-sniper/internal/teetime"
)

const envPrefix = "TEESNIPER"

type Config struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`

	Timezone       string        `mapstructure:"timezone"`
	ReleaseTime    string        `mapstructure:"release_time"`
	PreReleaseLead time.Duration `mapstructure:"pre_release_lead"`
	BookingDelay   time.Duration `mapstructure:"booking_delay"`
	TwilightStart  string        `mapstructure:"twilight_start"`

	BaseURL string     `mapstructure:"base_url"`
	APIKey  string     `mapstructure:"api_key"`
	HTTP    HTTPConfig `mapstructure:"http"`

	Log         LogConfig `mapstructure:"log"`
	MetricsAddr string    `mapstructure:"metrics_addr"`
	DatabaseURL string    `mapstructure:"database_url"`
}

type HTTPConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ValidationError reports the first invalid setting found.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s value '%v': %s", e.Field, e.Value, e.Message)
}

// Load resolves configuration from defaults, then configFile (if non-empty),
// then the environment. A .env file in the working directory is loaded into
// the environment first when present.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The credential and database variables keep their conventional names.
	_ = v.BindEnv("email", "FOREUP_EMAIL", envPrefix+"_EMAIL")
	_ = v.BindEnv("password", "FOREUP_PASSWORD", envPrefix+"_PASSWORD")
	_ = v.BindEnv("database_url", "DATABASE_URL", envPrefix+"_DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := httpretry.DefaultPolicy()
	fees := teetime.DefaultFees()

	v.SetDefault("email", "")
	v.SetDefault("password", "")
	v.SetDefault("timezone", "America/New_York")
	v.SetDefault("release_time", "19:00")
	v.SetDefault("pre_release_lead", time.Minute)
	v.SetDefault("booking_delay", 500*time.Millisecond)
	v.SetDefault("twilight_start", fees.TwilightStart.String())
	v.SetDefault("base_url", foreup.DefaultBaseURL)
	v.SetDefault("api_key", foreup.DefaultAPIKey)
	v.SetDefault("http.max_retries", def.MaxRetries)
	v.SetDefault("http.base_delay", def.BaseDelay)
	v.SetDefault("http.max_delay", def.MaxDelay)
	v.SetDefault("http.timeout", def.Timeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("database_url", "")
}

// Validate checks everything except credentials, which only the snipe
// command needs. See RequireCredentials.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		return &ValidationError{Field: "timezone", Value: c.Timezone, Message: "must be an IANA time zone name"}
	}
	if _, err := teetime.ParseTimeOfDay(c.ReleaseTime); err != nil {
		return &ValidationError{Field: "release_time", Value: c.ReleaseTime, Message: "must be HH:MM"}
	}
	if _, err := teetime.ParseTimeOfDay(c.TwilightStart); err != nil {
		return &ValidationError{Field: "twilight_start", Value: c.TwilightStart, Message: "must be HH:MM"}
	}
	if c.PreReleaseLead < time.Second || c.PreReleaseLead >= 24*time.Hour {
		return &ValidationError{Field: "pre_release_lead", Value: c.PreReleaseLead, Message: "must be between 1s and 24h"}
	}
	if c.BookingDelay < 0 {
		return &ValidationError{Field: "booking_delay", Value: c.BookingDelay, Message: "must not be negative"}
	}
	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "base_url", Value: c.BaseURL, Message: "must be an absolute http(s) URL"}
	}
	if c.APIKey == "" {
		return &ValidationError{Field: "api_key", Value: c.APIKey, Message: "must not be empty"}
	}
	if c.HTTP.MaxRetries < 0 {
		return &ValidationError{Field: "http.max_retries", Value: c.HTTP.MaxRetries, Message: "must not be negative"}
	}
	if c.HTTP.BaseDelay <= 0 {
		return &ValidationError{Field: "http.base_delay", Value: c.HTTP.BaseDelay, Message: "must be positive"}
	}
	if c.HTTP.MaxDelay < c.HTTP.BaseDelay {
		return &ValidationError{Field: "http.max_delay", Value: c.HTTP.MaxDelay, Message: "must be at least http.base_delay"}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Field: "log.level", Value: c.Log.Level, Message: "must be a zerolog level"}
	}
	return nil
}

// RequireCredentials checks the ForeUP account settings.
func (c *Config) RequireCredentials() error {
	if c.Email == "" {
		return &ValidationError{Field: "email", Value: "", Message: "FOREUP_EMAIL is required"}
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return &ValidationError{Field: "email", Value: c.Email, Message: "must be an email address"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Value: "", Message: "FOREUP_PASSWORD is required"}
	}
	return nil
}

// Location returns the release time zone. Validate has already checked it.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Release() (teetime.TimeOfDay, error) {
	return teetime.ParseTimeOfDay(c.ReleaseTime)
}

func (c *Config) Fees() (teetime.FeeSchedule, error) {
	start, err := teetime.ParseTimeOfDay(c.TwilightStart)
	if err != nil {
		return teetime.FeeSchedule{}, err
	}
	f := teetime.DefaultFees()
	f.TwilightStart = start
	return f, nil
}

func (c *Config) Policy() httpretry.Policy {
	return httpretry.Policy{
		MaxRetries: c.HTTP.MaxRetries,
		BaseDelay:  c.HTTP.BaseDelay,
		MaxDelay:   c.HTTP.MaxDelay,
		Timeout:    c.HTTP.Timeout,
	}
}

func (c *Config) ForeUP() foreup.Config {
	return foreup.Config{BaseURL: c.BaseURL, APIKey: c.APIKey, Course: foreup.SunkenMeadow()}
}
