package serverconfig

import (
	"flag"
	"io"
	"strings"
)

// parseFlags overlays command-line flags on cfg. Only flags that were
// actually passed change a value.
//
//	-config string          TOML config file
//	-env-file string        .env file
//	-listen string          HTTP listen address
//	-dsn string             PostgreSQL DSN; empty uses the in-memory store
//	-migrate                apply migrations on start
//	-redis string           Redis address for reset tokens
//	-session-ttl duration   session token lifetime
//	-max-failed-attempts n  lockout threshold
//	-reset-ttl duration     reset token lifetime
//	-legacy-bcrypt          accept legacy bcrypt hashes
//	-secure-cookie          mark the session cookie Secure
//	-trusted-proxies list   comma-separated proxy CIDRs whose X-Forwarded-For is honoured
//	-log-level string       debug, info, warn or error
//	-log-format string      json or text
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("authcore-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var ignored string
	fs.StringVar(&ignored, "config", "", "TOML config file")
	fs.StringVar(&ignored, "env-file", "", ".env file")

	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.BoolVar(&cfg.MigrateOnStart, "migrate", cfg.MigrateOnStart, "apply migrations on start")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for reset tokens")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "session token lifetime")
	fs.IntVar(&cfg.MaxFailedAttempts, "max-failed-attempts", cfg.MaxFailedAttempts, "lockout threshold")
	fs.DurationVar(&cfg.ResetTokenTTL, "reset-ttl", cfg.ResetTokenTTL, "reset token lifetime")
	fs.BoolVar(&cfg.AcceptLegacyBcrypt, "legacy-bcrypt", cfg.AcceptLegacyBcrypt, "accept legacy bcrypt hashes")
	fs.BoolVar(&cfg.SecureCookie, "secure-cookie", cfg.SecureCookie, "mark the session cookie Secure")
	fs.Func("trusted-proxies", "comma-separated trusted proxy CIDRs", func(v string) error {
		cfg.TrustedProxies = splitList(v)
		return nil
	})
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")

	return fs.Parse(args)
}

// fileFlag finds -name value, -name=value or their double-dash forms in
// args without parsing the rest, so file layers can load before flags.
func fileFlag(args []string, name string) string {
	for i := 0; i < len(args); i++ {
		arg := strings.TrimLeft(args[i], "-")
		if len(arg) == len(args[i]) {
			continue
		}
		if arg == name && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v
		}
	}
	return ""
}
