package redis

import "time"

// Config describes the Redis connection and the throttle lock settings.
// An empty ConnectionURL disables Redis in notifyd.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                           // "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"` // Connection attempts before giving up.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	LockTTL        time.Duration `env:"REDIS_LOCK_TTL" envDefault:"5s"`  // Expiry of an abandoned lock.
	LockWait       time.Duration `env:"REDIS_LOCK_WAIT" envDefault:"2s"` // How long Lock waits for a busy key.
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
