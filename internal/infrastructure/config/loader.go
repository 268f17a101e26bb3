package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
	"./configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix("SP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes

	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 50)
	v.SetDefault("redis.dialTimeout", 5)  // seconds
	v.SetDefault("redis.readTimeout", 3)  // seconds
	v.SetDefault("redis.writeTimeout", 3) // seconds

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("lock.ttl", 30)         // seconds
	v.SetDefault("lock.retries", 5)
	v.SetDefault("lock.retryDelay", 100) // milliseconds

	v.SetDefault("health.statusTtl", 10) // seconds
	v.SetDefault("health.latencyWindowSize", 100)
	v.SetDefault("health.latencyTtl", 60)         // minutes
	v.SetDefault("health.resultTtl", 24)          // hours
	v.SetDefault("health.failureThreshold", 3)
	v.SetDefault("health.staleBadSignalHold", 5) // minutes

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.limit", 60)
	v.SetDefault("rateLimit.window", 60) // seconds

	v.SetDefault("cache.balanceTtl", 60) // seconds
	v.SetDefault("cache.methodTtl", 300) // seconds

	v.SetDefault("providers.mpesa.enabled", true)
	v.SetDefault("providers.mpesa.timeout", 30)    // seconds
	v.SetDefault("providers.paystack.enabled", true)
	v.SetDefault("providers.paystack.timeout", 30) // seconds

	v.SetDefault("ledger.timeout", 10)   // seconds
	v.SetDefault("notifier.timeout", 5)  // seconds

	v.SetDefault("currencies", []string{"KES", "TZS", "UGX", "GHS", "NGN", "USD", "ZAR"})
}

// getEnvironment determines the environment to use based on SP_ENV
func getEnvironment() string {
	env := os.Getenv("SP_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values
// for sensitive settings
func processEnvOverrides(v *viper.Viper) {
	if dbHost := os.Getenv("SP_DB_HOST"); dbHost != "" {
		v.Set("database.host", dbHost)
	}
	if dbUser := os.Getenv("SP_DB_USERNAME"); dbUser != "" {
		v.Set("database.username", dbUser)
	}
	if dbPass := os.Getenv("SP_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if dbName := os.Getenv("SP_DB_NAME"); dbName != "" {
		v.Set("database.database", dbName)
	}

	if redisHost := os.Getenv("SP_REDIS_HOST"); redisHost != "" {
		v.Set("redis.host", redisHost)
	}
	if redisPass := os.Getenv("SP_REDIS_PASSWORD"); redisPass != "" {
		v.Set("redis.password", redisPass)
	}

	if mpesaKey := os.Getenv("SP_MPESA_CONSUMER_KEY"); mpesaKey != "" {
		v.Set("providers.mpesa.consumerKey", mpesaKey)
	}
	if mpesaSecret := os.Getenv("SP_MPESA_CONSUMER_SECRET"); mpesaSecret != "" {
		v.Set("providers.mpesa.consumerSecret", mpesaSecret)
	}
	if mpesaPasskey := os.Getenv("SP_MPESA_PASSKEY"); mpesaPasskey != "" {
		v.Set("providers.mpesa.passkey", mpesaPasskey)
	}
	if paystackKey := os.Getenv("SP_PAYSTACK_SECRET_KEY"); paystackKey != "" {
		v.Set("providers.paystack.secretKey", paystackKey)
	}
	if ledgerKey := os.Getenv("SP_LEDGER_API_KEY"); ledgerKey != "" {
		v.Set("ledger.apiKey", ledgerKey)
	}

	if logLevel := os.Getenv("SP_LOGGER_LEVEL"); logLevel != "" {
		v.Set("logger.level", logLevel)
	}
}

// processDurations converts duration fields from their raw unit values
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute

	config.Redis.DialTimeout = time.Duration(config.Redis.DialTimeout) * time.Second
	config.Redis.ReadTimeout = time.Duration(config.Redis.ReadTimeout) * time.Second
	config.Redis.WriteTimeout = time.Duration(config.Redis.WriteTimeout) * time.Second

	config.Lock.TTL = time.Duration(config.Lock.TTL) * time.Second
	config.Lock.RetryDelay = time.Duration(config.Lock.RetryDelay) * time.Millisecond

	config.Health.StatusTTL = time.Duration(config.Health.StatusTTL) * time.Second
	config.Health.LatencyTTL = time.Duration(config.Health.LatencyTTL) * time.Minute
	config.Health.ResultTTL = time.Duration(config.Health.ResultTTL) * time.Hour
	config.Health.StaleBadSignalHold = time.Duration(config.Health.StaleBadSignalHold) * time.Minute

	config.RateLimit.Window = time.Duration(config.RateLimit.Window) * time.Second

	config.Cache.BalanceTTL = time.Duration(config.Cache.BalanceTTL) * time.Second
	config.Cache.MethodTTL = time.Duration(config.Cache.MethodTTL) * time.Second

	config.Providers.Mpesa.Timeout = time.Duration(config.Providers.Mpesa.Timeout) * time.Second
	config.Providers.Paystack.Timeout = time.Duration(config.Providers.Paystack.Timeout) * time.Second
	config.Ledger.Timeout = time.Duration(config.Ledger.Timeout) * time.Second
	config.Notifier.Timeout = time.Duration(config.Notifier.Timeout) * time.Second
}

// validate rejects configurations that cannot run
func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if config.Ledger.BaseURL == "" {
		return fmt.Errorf("ledger base URL is required")
	}
	if len(config.Currencies) == 0 {
		return fmt.Errorf("at least one supported currency is required")
	}
	return nil
}
