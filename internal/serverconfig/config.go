// Package serverconfig loads the settings of the authcore HTTP server.
//
// Values are layered in this order, later layers winning: compiled
// defaults, an optional TOML file, an optional .env file, AUTHCORE_*
// environment variables and finally command-line flags.
package serverconfig

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/middleware"
)

// Config holds runtime settings for the server.
//
// An empty DatabaseDSN selects the in-memory store, which loses every
// account on restart. An empty RedisAddr keeps reset tokens in the
// credential store.
type Config struct {
	ListenAddr         string        `toml:"listen_addr"`
	DatabaseDSN        string        `toml:"database_dsn"`
	MigrateOnStart     bool          `toml:"migrate_on_start"`
	RedisAddr          string        `toml:"redis_addr"`
	RedisPrefix        string        `toml:"redis_prefix"`
	SessionSecret      string        `toml:"session_secret"`
	SessionTTL         time.Duration `toml:"session_ttl"`
	SecureCookie       bool          `toml:"secure_cookie"`
	TrustedProxies     []string      `toml:"trusted_proxies"`
	MaxFailedAttempts  int           `toml:"max_failed_attempts"`
	ResetTokenTTL      time.Duration `toml:"reset_token_ttl"`
	AcceptLegacyBcrypt bool          `toml:"accept_legacy_bcrypt"`
	MetricsEnabled     bool          `toml:"metrics_enabled"`
	AuditLog           bool          `toml:"audit_log"`
	LogLevel           string        `toml:"log_level"`
	LogFormat          string        `toml:"log_format"`
	ShutdownTimeout    time.Duration `toml:"shutdown_timeout"`
}

// Defaults returns development defaults. SessionSecret is left empty and
// must be supplied.
func Defaults() Config {
	engine := authcore.DefaultConfig()
	return Config{
		ListenAddr:        ":8080",
		MigrateOnStart:    true,
		RedisPrefix:       "authcore:reset:",
		SessionTTL:        engine.Session.TTL,
		MaxFailedAttempts: engine.Lockout.MaxFailedAttempts,
		ResetTokenTTL:     engine.PasswordReset.TokenTTL,
		MetricsEnabled:    true,
		LogLevel:          "info",
		LogFormat:         "json",
		ShutdownTimeout:   10 * time.Second,
	}
}

// Load builds a Config from args (without the program name) and the
// process environment.
func Load(args []string) (Config, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Defaults()

	path := fileFlag(args, "config")
	if path == "" {
		path, _ = lookupEnv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := loadTOML(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	envFile := fileFlag(args, "env-file")
	if envFile == "" {
		envFile, _ = lookupEnv(envPrefix + "ENV_FILE")
	}
	lookup, err := withDotenv(envFile, lookupEnv)
	if err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := parseFlags(&cfg, args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadTOML rejects keys the Config does not know, so a typo does not
// silently fall back to a default.
func loadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("decode %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr must be set")
	}
	if len(c.SessionSecret) < 32 {
		return errors.New("session_secret must be at least 32 bytes")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be > 0")
	}
	if c.MaxFailedAttempts < 1 {
		return errors.New("max_failed_attempts must be >= 1")
	}
	if c.ResetTokenTTL <= 0 {
		return errors.New("reset_token_ttl must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be > 0")
	}
	if _, err := c.ClientIPResolver(); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}
	return nil
}

// ClientIPResolver honours X-Forwarded-For only from TrustedProxies. With
// none configured the peer address is always used.
func (c Config) ClientIPResolver() (*middleware.ClientIPResolver, error) {
	return middleware.NewClientIPResolver(c.TrustedProxies...)
}

// EngineConfig overlays the server settings on authcore.DefaultConfig.
func (c Config) EngineConfig() authcore.Config {
	cfg := authcore.DefaultConfig()
	cfg.Session.Secret = []byte(c.SessionSecret)
	cfg.Session.TTL = c.SessionTTL
	cfg.Lockout.MaxFailedAttempts = c.MaxFailedAttempts
	cfg.PasswordReset.TokenTTL = c.ResetTokenTTL
	cfg.Password.AcceptLegacyBcrypt = c.AcceptLegacyBcrypt
	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Audit.Enabled = c.AuditLog
	return cfg
}
