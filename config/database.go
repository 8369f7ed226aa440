package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"pulsecamp"`
	Password string `env:"PASSWORD" envDefault:"pulsecamp"`
	Name     string `env:"NAME"     envDefault:"pulsecamp"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the session snapshot store and
// role cache.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// SnapshotTTL bounds how long an unverified session snapshot survives.
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"720h"`
	// RoleTTL bounds the cached role resolution.
	RoleTTL time.Duration `env:"ROLE_TTL" envDefault:"24h"`
}
