package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultProgramID is the program id the escrow addresses are derived under
// when SOLANA_PROGRAM_ID is not set.
const DefaultProgramID = "HJnVtBaQmzcbdeiHj5Y29UvXHiMBaKaTxjggva6ueMnq"

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Solana   SolanaConfig
	Log      LogConfig
	Jobs     JobsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port        string
	FrontendURL string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Env           string
	JWTSecret     string
	EnableAirdrop bool
}

// SolanaConfig holds the derivation domain for program addresses
type SolanaConfig struct {
	ProgramID    string
	Network      string
	RPCURL       string
	CheckCluster bool
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string
	Encoding    string
	Development bool
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	StaleScanSpec string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "prediction_escrow"),
			SQLitePath: getEnv("SQLITE_PATH", "prediction_escrow.db"),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			FrontendURL: getEnv("FRONTEND_URL", ""),
		},
		App: AppConfig{
			Env:           getEnv("APP_ENV", "dev"),
			JWTSecret:     getEnv("JWT_SECRET", ""),
			EnableAirdrop: getEnvBool("ENABLE_AIRDROP", false),
		},
		Solana: SolanaConfig{
			ProgramID:    getEnv("SOLANA_PROGRAM_ID", DefaultProgramID),
			Network:      getEnv("SOLANA_NETWORK", "devnet"),
			RPCURL:       getEnv("SOLANA_RPC_URL", ""),
			CheckCluster: getEnvBool("SOLANA_CHECK_CLUSTER", false),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Encoding:    getEnv("LOG_ENCODING", "json"),
			Development: getEnvBool("LOG_DEVELOPMENT", false),
		},
		Jobs: JobsConfig{
			StaleScanSpec: getEnv("STALE_SCAN_SPEC", "0 */10 * * * *"),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", config.Database.Driver)
	}

	return config, nil
}

// GetDSN returns the connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
