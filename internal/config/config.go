// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	AI       AIConfig       `mapstructure:"ai"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Cases    CasesConfig    `mapstructure:"cases"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LedgerConfig contains external ledger RPC connection settings.
type LedgerConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	Network         string `mapstructure:"network"`
	PlatformAddress string `mapstructure:"platform_address"`
	ContractHash    string `mapstructure:"contract_hash"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// AIConfig contains settings for the dilemma/verdict generation collaborator.
type AIConfig struct {
	APIURL         string  `mapstructure:"api_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Temperature    float64 `mapstructure:"temperature"`
}

// JobsConfig contains scheduled background job intervals and batch limits.
type JobsConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	CaseGenerationHours  int  `mapstructure:"case_generation_hours"`
	ClosureSweepMinutes  int  `mapstructure:"closure_sweep_minutes"`
	ReconcilerSeconds    int  `mapstructure:"reconciler_seconds"`
	LeaderboardMinutes   int  `mapstructure:"leaderboard_minutes"`
	BadgeSweepHours      int  `mapstructure:"badge_sweep_hours"`
	ReconcilerBatchSize  int  `mapstructure:"reconciler_batch_size"`
	ReconcilerGraceHours int  `mapstructure:"reconciler_grace_hours"`
}

// CasesConfig contains case lifecycle settings.
type CasesConfig struct {
	DurationHours     int   `mapstructure:"duration_hours"`
	DefaultRewardPool int64 `mapstructure:"default_reward_pool"`
}

// RewardsConfig contains reward pool split settings.
type RewardsConfig struct {
	WinningVotersPercent      int `mapstructure:"winning_voters_percent"`
	TopArgumentsPercent       int `mapstructure:"top_arguments_percent"`
	ParticipantsPercent       int `mapstructure:"participants_percent"`
	CreatorPercent            int `mapstructure:"creator_percent"`
	MinParticipantsForCreator int `mapstructure:"min_participants_for_creator"`
}

// MetricsConfig contains Prometheus metrics exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/moral-duel/")
	}

	setDefaults(v)

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Ledger configuration
	_ = v.BindEnv("ledger.rpc_url", "LEDGER_RPC_URL")
	_ = v.BindEnv("ledger.network", "LEDGER_NETWORK")
	_ = v.BindEnv("ledger.platform_address", "LEDGER_PLATFORM_ADDRESS")
	_ = v.BindEnv("ledger.contract_hash", "LEDGER_CONTRACT_HASH")
	_ = v.BindEnv("ledger.timeout_seconds", "LEDGER_TIMEOUT_SECONDS")

	// AI configuration
	_ = v.BindEnv("ai.api_url", "AI_API_URL")
	_ = v.BindEnv("ai.api_key", "AI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("ai.model", "AI_MODEL")
	_ = v.BindEnv("ai.timeout_seconds", "AI_TIMEOUT_SECONDS")

	// Job configuration
	_ = v.BindEnv("jobs.enabled", "JOBS_ENABLED")
	_ = v.BindEnv("jobs.case_generation_hours", "JOBS_CASE_GENERATION_HOURS")
	_ = v.BindEnv("jobs.closure_sweep_minutes", "JOBS_CLOSURE_SWEEP_MINUTES")
	_ = v.BindEnv("jobs.reconciler_seconds", "JOBS_RECONCILER_SECONDS")
	_ = v.BindEnv("jobs.leaderboard_minutes", "JOBS_LEADERBOARD_MINUTES")
	_ = v.BindEnv("jobs.badge_sweep_hours", "JOBS_BADGE_SWEEP_HOURS")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("ledger.timeout_seconds", 30)
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("ai.temperature", 0.8)
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.case_generation_hours", 12)
	v.SetDefault("jobs.closure_sweep_minutes", 5)
	v.SetDefault("jobs.reconciler_seconds", 30)
	v.SetDefault("jobs.leaderboard_minutes", 15)
	v.SetDefault("jobs.badge_sweep_hours", 1)
	v.SetDefault("jobs.reconciler_batch_size", 100)
	v.SetDefault("jobs.reconciler_grace_hours", 24)
	v.SetDefault("cases.duration_hours", 24)
	v.SetDefault("cases.default_reward_pool", 1000)
	v.SetDefault("rewards.winning_voters_percent", 40)
	v.SetDefault("rewards.top_arguments_percent", 30)
	v.SetDefault("rewards.participants_percent", 20)
	v.SetDefault("rewards.creator_percent", 10)
	v.SetDefault("rewards.min_participants_for_creator", 100)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	if c.Ledger.RPCURL == "" {
		return fmt.Errorf("ledger.rpc_url is required")
	}
	total := c.Rewards.WinningVotersPercent + c.Rewards.TopArgumentsPercent +
		c.Rewards.ParticipantsPercent + c.Rewards.CreatorPercent
	if total != 100 {
		return fmt.Errorf("reward split percentages must sum to 100, got %d", total)
	}
	return nil
}

// CaseDuration returns the voting window for active cases.
func (c *CasesConfig) CaseDuration() time.Duration {
	return time.Duration(c.DurationHours) * time.Hour
}

// GraceWindow returns how long an unresolved ledger transaction is retried
// before being declared permanently failed.
func (j *JobsConfig) GraceWindow() time.Duration {
	return time.Duration(j.ReconcilerGraceHours) * time.Hour
}
