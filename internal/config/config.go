package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"wrapchain.backend/pkg/derive"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Programs ProgramsConfig
	Custody  CustodyConfig
	Jobs     JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string
	Env      string
	// LogLevel overrides the level implied by Env when set.
	LogLevel string
}

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// DSN returns the connection string for the configured driver
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return c.URL()
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ProgramsConfig holds the hex program addresses that own each record family.
// Empty values fall back to the well-known defaults.
type ProgramsConfig struct {
	Members    string
	Controller string
	Factory    string
	Token      string
}

// Resolve returns the program set, rejecting malformed addresses.
func (c ProgramsConfig) Resolve() (derive.Programs, error) {
	programs := derive.DefaultPrograms()
	overrides := []struct {
		name  string
		value string
		dst   *common.Address
	}{
		{"PROGRAM_MEMBERS", c.Members, &programs.Members},
		{"PROGRAM_CONTROLLER", c.Controller, &programs.Controller},
		{"PROGRAM_FACTORY", c.Factory, &programs.Factory},
		{"PROGRAM_TOKEN", c.Token, &programs.Token},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if !common.IsHexAddress(o.value) {
			return derive.Programs{}, fmt.Errorf("%s is not a hex address: %q", o.name, o.value)
		}
		*o.dst = common.HexToAddress(o.value)
	}
	return programs, nil
}

// CustodyConfig tunes the request workflow
type CustodyConfig struct {
	// LockTTL bounds how long a crashed unit of work can hold a record.
	LockTTL time.Duration
	// StrictCancel only lets merchants cancel pending mint requests.
	StrictCancel bool
	ChallengeTTL time.Duration
}

// JobsConfig holds background job intervals
type JobsConfig struct {
	PendingGaugeInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     getEnv("SERVER_PORT", "8080"),
			Env:      getEnv("SERVER_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", DriverPostgres),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "wrapchain"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "wrapchain.db"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			Issuer:        getEnv("JWT_ISSUER", "wrapchain"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Programs: ProgramsConfig{
			Members:    getEnv("PROGRAM_MEMBERS", ""),
			Controller: getEnv("PROGRAM_CONTROLLER", ""),
			Factory:    getEnv("PROGRAM_FACTORY", ""),
			Token:      getEnv("PROGRAM_TOKEN", ""),
		},
		Custody: CustodyConfig{
			LockTTL:      getEnvAsDuration("RECORD_LOCK_TTL", 30*time.Second),
			StrictCancel: getEnvAsBool("FACTORY_STRICT_CANCEL", false),
			ChallengeTTL: getEnvAsDuration("AUTH_CHALLENGE_TTL", 5*time.Minute),
		},
		Jobs: JobsConfig{
			PendingGaugeInterval: getEnvAsDuration("PENDING_GAUGE_INTERVAL", 30*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
