package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type (
	Config struct {
		Host            string `mapstructure:"HOST"`
		Port            string `mapstructure:"PORT"`
		GRPCPort        string `mapstructure:"GRPC_PORT"`
		DBDriver        string `mapstructure:"DB_DRIVER"`
		DBHost          string `mapstructure:"DB_HOST"`
		DBPort          string `mapstructure:"DB_PORT"`
		DBUser          string `mapstructure:"DB_USER"`
		DBPassword      string `mapstructure:"DB_PASSWORD"`
		DBName          string `mapstructure:"DB_NAME"`
		DBSSLMode       string `mapstructure:"DB_SSL_MODE"`
		PaginationLimit uint64 `mapstructure:"PAGINATION_LIMIT"`
		LogLevel        string `mapstructure:"LOG_LEVEL"`
		BcryptCost      int    `mapstructure:"BCRYPT_COST"`
	}
)

var defaults = map[string]interface{}{
	"HOST":             "0.0.0.0",
	"PORT":             "1323",
	"GRPC_PORT":        "9000",
	"DB_DRIVER":        DriverPostgres,
	"DB_HOST":          "0.0.0.0",
	"DB_PORT":          "5432",
	"DB_USER":          "user",
	"DB_PASSWORD":      "password",
	"DB_NAME":          "db",
	"DB_SSL_MODE":      sslModeDisable,
	"PAGINATION_LIMIT": 24,
	"LOG_LEVEL":        "info",
	"BCRYPT_COST":      14,
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKER")

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", key)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.DBDriver, DriverPostgres, DriverSQLite) {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if !oneOf(cfg.LogLevel, "debug", "info", "warn", "error") {
		return errors.New(fmt.Sprintf("log level is invalid: %s", cfg.LogLevel))
	}
	if cfg.PaginationLimit == 0 {
		return errors.New("pagination limit must be positive")
	}
	// bcrypt rejects costs outside 4..31
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return errors.New(fmt.Sprintf("bcrypt cost is out of range: %d", cfg.BcryptCost))
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
