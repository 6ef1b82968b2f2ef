// Package config assembles the engine's configuration the way the
// teacher's config/config.go does: one struct-of-structs loaded from
// environment variables and an optional JSON overlay file, not a
// framework.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"blockengine/internal/bucket"
	"blockengine/internal/engine"
	"blockengine/internal/patterns"
	"blockengine/internal/pause"
	"blockengine/internal/signals"
)

// Config is the top-level configuration for cmd/engine-server.
type Config struct {
	EngineConfig        EngineConfig        `json:"engine"`
	TradingWindowConfig TradingWindowConfig `json:"trading_window"`
	LoggingConfig       LoggingConfig       `json:"logging"`
	ServerConfig        ServerConfig        `json:"server"`
	AuthConfig          AuthConfig          `json:"auth"`
	VaultConfig         VaultConfig         `json:"vault"`
	RedisConfig         RedisConfig         `json:"redis"`
	PostgresConfig      PostgresConfig      `json:"postgres"`
}

// EngineConfig holds every tunable named by §6.1, grouped the way
// engine.Config groups its subsystem configs, plus BetAmount and
// DailyTarget. DailyTarget is loaded from file/env but nothing reads it:
// reaching it does not gate block ingestion or stop new trades.
type EngineConfig struct {
	NeutralBand              float64 `json:"neutral_band"`
	AP5ConfirmationThreshold float64 `json:"ap5_confirmation_threshold"`
	SnapshotLimit            int     `json:"snapshot_limit"`
	CooldownArmLosses        int     `json:"cooldown_arm_losses"`
	CooldownBlocks           int     `json:"cooldown_blocks"`
	BetAmount                float64 `json:"bet_amount"`
	DailyTarget              float64 `json:"daily_target"` // not read by the engine or API

	Hostility HostilityConfig `json:"hostility"`
	Bucket    BucketConfig    `json:"bucket"`
	Pause     PauseConfig     `json:"pause"`
}

// HostilityConfig mirrors hostility.Config's JSON-facing tunables.
type HostilityConfig struct {
	SevereLossThreshold  float64 `json:"severe_loss_threshold"`
	LockThreshold        float64 `json:"lock_threshold"`
	IndicatorTTL         uint32  `json:"indicator_ttl"`
	DecayPerBlock        float64 `json:"decay_per_block"`
	ProfitResetThreshold float64 `json:"profit_reset_threshold"`
}

// BucketConfig mirrors bucket.Config's JSON-facing tunables.
type BucketConfig struct {
	ConsecutiveWinsToBreakBNS int     `json:"consecutive_wins_to_break_bns"`
	SingleBaitThreshold       float64 `json:"single_bait_threshold"`
	CumulativeBaitThreshold   float64 `json:"cumulative_bait_threshold"`
}

// PauseConfig mirrors pause.Config's JSON-facing tunables.
type PauseConfig struct {
	StopGameDrawdown   float64 `json:"stop_game_drawdown"`
	StopGameActualLoss float64 `json:"stop_game_actual_loss"`
	MajorPauseInterval float64 `json:"major_pause_interval"`
	MajorPauseBlocks   int     `json:"major_pause_blocks"`
	MinorPauseBlocks   int     `json:"minor_pause_blocks"`
	MinorPauseLosses   int     `json:"minor_pause_losses"`
}

// TradingWindowConfig parametrizes the clock-based example
// internal/tradingwindow implementation.
type TradingWindowConfig struct {
	Enabled   bool   `json:"enabled"`
	OpenHour  int    `json:"open_hour"`  // 0-23, UTC
	CloseHour int    `json:"close_hour"` // 0-23, UTC
	Timezone  string `json:"timezone"`   // IANA name, defaults to UTC
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level       string `json:"level"`
	Output      string `json:"output"`
	JSONFormat  bool   `json:"json_format"`
	IncludeFile bool   `json:"include_file"`
}

// ServerConfig configures the HTTP/websocket API.
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"`
	ReadTimeout     int    `json:"read_timeout"`
	WriteTimeout    int    `json:"write_timeout"`
	ShutdownTimeout int    `json:"shutdown_timeout"`
}

// AuthConfig configures the single-operator bearer-token auth guarding the
// mutating endpoints.
type AuthConfig struct {
	Enabled              bool          `json:"enabled"`
	JWTSecret            string        `json:"jwt_secret"`
	AccessTokenDuration  time.Duration `json:"access_token_duration"`
	OperatorUser         string        `json:"operator_user"`
	OperatorPasswordHash string        `json:"operator_password_hash"` // bcrypt hash, never the raw password
}

// VaultConfig configures the optional HashiCorp Vault secret fetch.
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`
	SecretPath string `json:"secret_path"`
	TLSEnabled bool   `json:"tls_enabled"`
	CACert     string `json:"ca_cert"`
}

// RedisConfig configures the optional snapshot-ring backing store.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// PostgresConfig configures the optional durable ledger append store.
type PostgresConfig struct {
	Enabled bool   `json:"enabled"`
	DSN     string `json:"dsn"`
}

// Load reads config.json if present, then applies environment overrides
// (which always take precedence).
func Load() (*Config, error) {
	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = &Config{}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.EngineConfig.NeutralBand = getEnvFloatOrDefault("ENGINE_NEUTRAL_BAND", cfg.EngineConfig.NeutralBand)
	if cfg.EngineConfig.NeutralBand == 0 {
		cfg.EngineConfig.NeutralBand = 0.05
	}
	cfg.EngineConfig.AP5ConfirmationThreshold = getEnvFloatOrDefault("ENGINE_AP5_CONFIRMATION_THRESHOLD", cfg.EngineConfig.AP5ConfirmationThreshold)
	if cfg.EngineConfig.AP5ConfirmationThreshold == 0 {
		cfg.EngineConfig.AP5ConfirmationThreshold = 60
	}
	cfg.EngineConfig.SnapshotLimit = getEnvIntOrDefault("ENGINE_SNAPSHOT_LIMIT", cfg.EngineConfig.SnapshotLimit)
	if cfg.EngineConfig.SnapshotLimit == 0 {
		cfg.EngineConfig.SnapshotLimit = 100
	}
	cfg.EngineConfig.CooldownArmLosses = getEnvIntOrDefault("ENGINE_COOLDOWN_ARM_LOSSES", cfg.EngineConfig.CooldownArmLosses)
	if cfg.EngineConfig.CooldownArmLosses == 0 {
		cfg.EngineConfig.CooldownArmLosses = 2
	}
	cfg.EngineConfig.CooldownBlocks = getEnvIntOrDefault("ENGINE_COOLDOWN_BLOCKS", cfg.EngineConfig.CooldownBlocks)
	if cfg.EngineConfig.CooldownBlocks == 0 {
		cfg.EngineConfig.CooldownBlocks = 3
	}
	cfg.EngineConfig.BetAmount = getEnvFloatOrDefault("ENGINE_BET_AMOUNT", cfg.EngineConfig.BetAmount)
	cfg.EngineConfig.DailyTarget = getEnvFloatOrDefault("ENGINE_DAILY_TARGET", cfg.EngineConfig.DailyTarget)

	cfg.TradingWindowConfig.Enabled = getEnvOrDefault("TRADING_WINDOW_ENABLED", "false") == "true"
	cfg.TradingWindowConfig.OpenHour = getEnvIntOrDefault("TRADING_WINDOW_OPEN_HOUR", 0)
	cfg.TradingWindowConfig.CloseHour = getEnvIntOrDefault("TRADING_WINDOW_CLOSE_HOUR", 23)
	cfg.TradingWindowConfig.Timezone = getEnvOrDefault("TRADING_WINDOW_TIMEZONE", "UTC")

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", "INFO")
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", "stdout")
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"
	cfg.LoggingConfig.IncludeFile = getEnvOrDefault("LOG_INCLUDE_FILE", "false") == "true"

	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", 8080)
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", "0.0.0.0")
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", "*")
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", 15)
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 15)
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10)

	cfg.AuthConfig.Enabled = getEnvOrDefault("AUTH_ENABLED", "false") == "true"
	cfg.AuthConfig.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", cfg.AuthConfig.JWTSecret)
	cfg.AuthConfig.AccessTokenDuration = getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_DURATION", 15*time.Minute)
	cfg.AuthConfig.OperatorUser = getEnvOrDefault("AUTH_OPERATOR_USER", cfg.AuthConfig.OperatorUser)
	cfg.AuthConfig.OperatorPasswordHash = getEnvOrDefault("AUTH_OPERATOR_PASSWORD_HASH", cfg.AuthConfig.OperatorPasswordHash)

	cfg.VaultConfig.Enabled = getEnvOrDefault("VAULT_ENABLED", "false") == "true"
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", "http://localhost:8200")
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", "secret")
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", "engine-server/credentials")
	cfg.VaultConfig.TLSEnabled = getEnvOrDefault("VAULT_TLS_ENABLED", "false") == "true"

	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", "false") == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", "localhost:6379")
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", 0)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", 10)

	cfg.PostgresConfig.Enabled = getEnvOrDefault("POSTGRES_ENABLED", "false") == "true"
	cfg.PostgresConfig.DSN = getEnvOrDefault("POSTGRES_DSN", cfg.PostgresConfig.DSN)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ToEngineConfig converts the flat JSON/env config into engine.Config.
// The neutral band, AP5 threshold, snapshot limit and cooldown fields fall
// back to engine.DefaultConfig() one by one when zero. The hostility,
// bucket and pause groups are taken whole: each is copied from the config
// when its LockThreshold, SingleBaitThreshold or MajorPauseInterval
// (respectively) is non-zero, and replaced whole by the defaults
// otherwise; zero fields inside a copied group stay zero.
func (c *Config) ToEngineConfig() engine.Config {
	def := engine.DefaultConfig()

	sig := signals.Config{NeutralBand: c.EngineConfig.NeutralBand}
	if sig.NeutralBand == 0 {
		sig = def.Signals
	}

	pat := patterns.Config{AP5ConfirmationThreshold: c.EngineConfig.AP5ConfirmationThreshold}
	if pat.AP5ConfirmationThreshold == 0 {
		pat = def.Patterns
	}

	hos := def.Hostility
	if c.EngineConfig.Hostility.LockThreshold != 0 {
		hos.SevereLossThreshold = c.EngineConfig.Hostility.SevereLossThreshold
		hos.LockThreshold = c.EngineConfig.Hostility.LockThreshold
		hos.IndicatorTTL = c.EngineConfig.Hostility.IndicatorTTL
		hos.DecayPerBlock = c.EngineConfig.Hostility.DecayPerBlock
		hos.ProfitResetThreshold = c.EngineConfig.Hostility.ProfitResetThreshold
	}

	buc := def.Bucket
	if c.EngineConfig.Bucket.SingleBaitThreshold != 0 {
		buc = bucket.Config{
			ConsecutiveWinsToBreakBNS: c.EngineConfig.Bucket.ConsecutiveWinsToBreakBNS,
			SingleBaitThreshold:       c.EngineConfig.Bucket.SingleBaitThreshold,
			CumulativeBaitThreshold:   c.EngineConfig.Bucket.CumulativeBaitThreshold,
		}
	}

	pau := def.Pause
	if c.EngineConfig.Pause.MajorPauseInterval != 0 {
		pau = pause.Config{
			StopGameDrawdown:   c.EngineConfig.Pause.StopGameDrawdown,
			StopGameActualLoss: c.EngineConfig.Pause.StopGameActualLoss,
			MajorPauseInterval: c.EngineConfig.Pause.MajorPauseInterval,
			MajorPauseBlocks:   c.EngineConfig.Pause.MajorPauseBlocks,
			MinorPauseBlocks:   c.EngineConfig.Pause.MinorPauseBlocks,
			MinorPauseLosses:   c.EngineConfig.Pause.MinorPauseLosses,
		}
	}

	snapshotLimit := c.EngineConfig.SnapshotLimit
	if snapshotLimit == 0 {
		snapshotLimit = def.SnapshotLimit
	}
	cooldownArmLosses := c.EngineConfig.CooldownArmLosses
	if cooldownArmLosses == 0 {
		cooldownArmLosses = def.CooldownArmLosses
	}
	cooldownBlocks := c.EngineConfig.CooldownBlocks
	if cooldownBlocks == 0 {
		cooldownBlocks = def.CooldownBlocks
	}

	return engine.Config{
		Signals:           sig,
		Patterns:          pat,
		Hostility:         hos,
		Pause:             pau,
		Bucket:            buc,
		SnapshotLimit:     snapshotLimit,
		CooldownArmLosses: cooldownArmLosses,
		CooldownBlocks:    cooldownBlocks,
	}
}

// GenerateSampleConfig writes a sample configuration file.
func GenerateSampleConfig(filename string) error {
	cfg := Config{
		EngineConfig: EngineConfig{
			NeutralBand:              0.05,
			AP5ConfirmationThreshold: 60,
			SnapshotLimit:            100,
			CooldownArmLosses:        2,
			CooldownBlocks:           3,
			BetAmount:                100,
			DailyTarget:              500,
			Hostility: HostilityConfig{
				SevereLossThreshold:  85,
				LockThreshold:        10,
				IndicatorTTL:         50,
				DecayPerBlock:        0.2,
				ProfitResetThreshold: 100,
			},
			Bucket: BucketConfig{
				ConsecutiveWinsToBreakBNS: 2,
				SingleBaitThreshold:       70,
				CumulativeBaitThreshold:   100,
			},
			Pause: PauseConfig{
				StopGameDrawdown:   -1000,
				StopGameActualLoss: -1000,
				MajorPauseInterval: 300,
				MajorPauseBlocks:   10,
				MinorPauseBlocks:   3,
				MinorPauseLosses:   2,
			},
		},
		TradingWindowConfig: TradingWindowConfig{Enabled: false, OpenHour: 0, CloseHour: 23, Timezone: "UTC"},
		LoggingConfig:       LoggingConfig{Level: "INFO", Output: "stdout", JSONFormat: true},
		ServerConfig:        ServerConfig{Port: 8080, Host: "0.0.0.0", AllowedOrigins: "*", ReadTimeout: 15, WriteTimeout: 15, ShutdownTimeout: 10},
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
