package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Logger      LoggerConfig    `mapstructure:"logger"`
	Lock        LockConfig      `mapstructure:"lock"`
	Health      HealthConfig    `mapstructure:"health"`
	RateLimit   RateLimitConfig `mapstructure:"rateLimit"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Providers   ProvidersConfig `mapstructure:"providers"`
	Ledger      LedgerConfig    `mapstructure:"ledger"`
	Notifier    NotifierConfig  `mapstructure:"notifier"`
	Currencies  []string        `mapstructure:"currencies"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"poolSize"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`  // seconds
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`  // seconds
	WriteTimeout time.Duration `mapstructure:"writeTimeout"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// LockConfig contains distributed lock settings
type LockConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`        // seconds
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retryDelay"` // milliseconds
}

// HealthConfig contains provider health tracking settings
type HealthConfig struct {
	StatusTTL          time.Duration `mapstructure:"statusTtl"`          // seconds
	LatencyWindowSize  int64         `mapstructure:"latencyWindowSize"`
	LatencyTTL         time.Duration `mapstructure:"latencyTtl"`         // minutes
	ResultTTL          time.Duration `mapstructure:"resultTtl"`          // hours
	FailureThreshold   int           `mapstructure:"failureThreshold"`
	StaleBadSignalHold time.Duration `mapstructure:"staleBadSignalHold"` // minutes
}

// RateLimitConfig contains sliding-window limiter settings
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"` // seconds
}

// CacheConfig contains read-through cache TTLs
type CacheConfig struct {
	BalanceTTL time.Duration `mapstructure:"balanceTtl"` // seconds
	MethodTTL  time.Duration `mapstructure:"methodTtl"`  // seconds
}

// ProvidersConfig contains one section per money-movement rail
type ProvidersConfig struct {
	Mpesa    MpesaConfig    `mapstructure:"mpesa"`
	Paystack PaystackConfig `mapstructure:"paystack"`
}

// MpesaConfig contains mobile-money rail settings
type MpesaConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"baseUrl"`
	ConsumerKey    string        `mapstructure:"consumerKey"`
	ConsumerSecret string        `mapstructure:"consumerSecret"`
	ShortCode      string        `mapstructure:"shortCode"`
	Passkey        string        `mapstructure:"passkey"`
	CallbackURL    string        `mapstructure:"callbackUrl"`
	Timeout        time.Duration `mapstructure:"timeout"` // seconds
}

// PaystackConfig contains card rail settings
type PaystackConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"baseUrl"`
	SecretKey   string        `mapstructure:"secretKey"`
	CallbackURL string        `mapstructure:"callbackUrl"`
	Timeout     time.Duration `mapstructure:"timeout"` // seconds
}

// LedgerConfig contains wallet ledger service settings
type LedgerConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"` // seconds
}

// NotifierConfig contains notification service settings
type NotifierConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	Timeout time.Duration `mapstructure:"timeout"` // seconds
}
