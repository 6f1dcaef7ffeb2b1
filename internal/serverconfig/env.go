package serverconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "AUTHCORE_"

// legacyMaxFail is the variable name older deployments used for the
// lockout threshold. AUTHCORE_MAX_FAILED_ATTEMPTS wins when both are set.
const legacyMaxFail = "MAX_FAIL"

// withDotenv returns a lookup that consults the process environment first
// and the .env file second. A missing file is only an error when it was
// named explicitly.
func withDotenv(path string, lookupEnv func(string) (string, bool)) (func(string) (string, bool), error) {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		return lookupEnv, nil
	}

	return func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	var err error
	boolean := func(name string, dst *bool) {
		v, ok := lookup(envPrefix + name)
		if !ok || err != nil {
			return
		}
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			err = fmt.Errorf("%s%s: %w", envPrefix, name, perr)
			return
		}
		*dst = b
	}
	duration := func(name string, dst *time.Duration) {
		v, ok := lookup(envPrefix + name)
		if !ok || err != nil {
			return
		}
		d, perr := time.ParseDuration(v)
		if perr != nil {
			err = fmt.Errorf("%s%s: %w", envPrefix, name, perr)
			return
		}
		*dst = d
	}

	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	boolean("MIGRATE_ON_START", &cfg.MigrateOnStart)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PREFIX", &cfg.RedisPrefix)
	str("SESSION_SECRET", &cfg.SessionSecret)
	duration("SESSION_TTL", &cfg.SessionTTL)
	boolean("SECURE_COOKIE", &cfg.SecureCookie)
	if v, ok := lookup(envPrefix + "TRUSTED_PROXIES"); ok {
		cfg.TrustedProxies = splitList(v)
	}
	duration("RESET_TOKEN_TTL", &cfg.ResetTokenTTL)
	boolean("ACCEPT_LEGACY_BCRYPT", &cfg.AcceptLegacyBcrypt)
	boolean("METRICS_ENABLED", &cfg.MetricsEnabled)
	boolean("AUDIT_LOG", &cfg.AuditLog)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	if err != nil {
		return err
	}

	maxFail, ok := lookup(envPrefix + "MAX_FAILED_ATTEMPTS")
	name := envPrefix + "MAX_FAILED_ATTEMPTS"
	if !ok {
		maxFail, ok = lookup(legacyMaxFail)
		name = legacyMaxFail
	}
	if ok {
		n, perr := strconv.Atoi(maxFail)
		if perr != nil {
			return fmt.Errorf("%s: %w", name, perr)
		}
		cfg.MaxFailedAttempts = n
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
