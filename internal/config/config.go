// Package config loads the sections service configuration using Viper:
// a .sections.yml file, SECTIONS_ prefixed environment variables and
// command-line flags, in increasing order of precedence.
//
// Defaults are applied after unmarshalling, then the result is validated.
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/validation"
)

// Store drivers.
const (
	DriverFiles  = "files"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	Section     SectionConfig     `mapstructure:"section" yaml:"section"`
	PostType    PostTypeConfig    `mapstructure:"post_type" yaml:"post_type"`
	Admin       AdminConfig       `mapstructure:"admin" yaml:"admin"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development"`
	Hooks       HooksConfig       `mapstructure:"hooks" yaml:"hooks"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	HomeSlug        string        `mapstructure:"home_slug" yaml:"home_slug"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// StoreConfig selects where content comes from. The files driver loads
// ContentDir into memory; the sqlite driver reads SQLitePath.
type StoreConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver"`
	ContentDir string `mapstructure:"content_dir" yaml:"content_dir"`
	UploadsDir string `mapstructure:"uploads_dir" yaml:"uploads_dir"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

type SectionConfig struct {
	Shortcode string `mapstructure:"shortcode" yaml:"shortcode"`
	MaxDepth  int    `mapstructure:"max_depth" yaml:"max_depth"`
}

type PostTypeConfig struct {
	Singular        string   `mapstructure:"singular" yaml:"singular"`
	Plural          string   `mapstructure:"plural" yaml:"plural"`
	TextDomain      string   `mapstructure:"text_domain" yaml:"text_domain"`
	Taxonomies      []string `mapstructure:"taxonomies" yaml:"taxonomies"`
	KnownTaxonomies []string `mapstructure:"known_taxonomies" yaml:"known_taxonomies"`
}

// AdminConfig enables the admin routes when NonceSecret is set.
type AdminConfig struct {
	NonceSecret   string        `mapstructure:"nonce_secret" yaml:"nonce_secret"`
	NonceLifetime time.Duration `mapstructure:"nonce_lifetime" yaml:"nonce_lifetime"`
}

type DevelopmentConfig struct {
	LiveReload bool          `mapstructure:"live_reload" yaml:"live_reload"`
	Watch      bool          `mapstructure:"watch" yaml:"watch"`
	Debounce   time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// HooksConfig names html/template files that override the display
// extension points.
type HooksConfig struct {
	DisplayBefore string `mapstructure:"display_before" yaml:"display_before"`
	Display       string `mapstructure:"display" yaml:"display"`
	DisplayAfter  string `mapstructure:"display_after" yaml:"display_after"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError("decoding configuration", err)
	}

	applyDefaults(&config, v)

	if err := validateConfig(&config); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	return &config, nil
}

func applyDefaults(config *Config, v *viper.Viper) {
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if !v.IsSet("server.port") {
		config.Server.Port = 8080
	}
	if config.Server.HomeSlug == "" {
		config.Server.HomeSlug = "home"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 15 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}

	if config.Store.Driver == "" {
		config.Store.Driver = DriverFiles
	}
	if config.Store.ContentDir == "" {
		config.Store.ContentDir = "content"
	}
	if config.Store.UploadsDir == "" {
		config.Store.UploadsDir = "uploads"
	}
	if config.Store.SQLitePath == "" {
		config.Store.SQLitePath = "sections.db"
	}

	if config.Section.Shortcode == "" {
		config.Section.Shortcode = "ucf-section"
	}
	if config.Section.MaxDepth == 0 {
		config.Section.MaxDepth = 3
	}

	if len(config.PostType.KnownTaxonomies) == 0 {
		config.PostType.KnownTaxonomies = []string{"post_tag", "category"}
	}

	if config.Admin.NonceLifetime == 0 {
		config.Admin.NonceLifetime = 24 * time.Hour
	}

	if config.Development.Debounce == 0 {
		config.Development.Debounce = 300 * time.Millisecond
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// validateConfig checks configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateStoreConfig(&config.Store); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	if err := validateSectionConfig(&config.Section); err != nil {
		return fmt.Errorf("section config: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if config.Admin.NonceSecret != "" && len(config.Admin.NonceSecret) < 16 {
		return fmt.Errorf("admin config: nonce_secret must be at least 16 characters")
	}
	if config.Development.LiveReload && config.Store.Driver != DriverFiles {
		return fmt.Errorf("development config: live_reload requires the %s store driver", DriverFiles)
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// 0 lets the system pick a port in tests
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}
	if err := validation.ValidateHost(config.Host); err != nil {
		return err
	}
	if err := validation.ValidateName(config.HomeSlug); err != nil {
		return fmt.Errorf("home_slug: %w", err)
	}
	for _, origin := range config.AllowedOrigins {
		if err := validation.ValidateOriginPattern(origin); err != nil {
			return err
		}
	}
	return nil
}

func validateStoreConfig(config *StoreConfig) error {
	switch config.Driver {
	case DriverFiles:
		if err := validation.ValidatePath(config.ContentDir); err != nil {
			return fmt.Errorf("invalid content_dir '%s': %w", config.ContentDir, err)
		}
	case DriverSQLite:
		if err := validation.ValidatePath(config.SQLitePath); err != nil {
			return fmt.Errorf("invalid sqlite_path '%s': %w", config.SQLitePath, err)
		}
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", config.Driver, DriverFiles, DriverSQLite)
	}
	if err := validation.ValidatePath(config.UploadsDir); err != nil {
		return fmt.Errorf("invalid uploads_dir '%s': %w", config.UploadsDir, err)
	}
	return nil
}

func validateSectionConfig(config *SectionConfig) error {
	if err := validation.ValidateName(config.Shortcode); err != nil {
		return fmt.Errorf("shortcode: %w", err)
	}
	if config.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", config.MaxDepth)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	if config.Format != "text" && config.Format != "json" {
		return fmt.Errorf("format must be text or json, got %q", config.Format)
	}
	return nil
}

// Keys returns every configuration key in dotted form.
func Keys() []string {
	return keys(reflect.TypeOf(Config{}), "")
}

func keys(t reflect.Type, prefix string) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("mapstructure")
		if name == "" {
			continue
		}
		key := prefix + name
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() != "time" {
			out = append(out, keys(f.Type, key+".")...)
			continue
		}
		out = append(out, key)
	}
	return out
}

// BindEnv binds every key to its environment variable so values only set
// in the environment survive Unmarshal.
func BindEnv(v *viper.Viper) error {
	for _, key := range Keys() {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// LoggerConfig converts the log section into a logger configuration.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = level
	}
	lc.Format = c.Log.Format
	return lc
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
