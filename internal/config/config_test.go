package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "1323", cfg.Port)
	assert.Equal(t, "9000", cfg.GRPCPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, uint64(24), cfg.PaginationLimit)
	assert.Equal(t, 14, cfg.BcryptCost)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("BOOKMARKER_PAGINATION_LIMIT", "50")
	t.Setenv("BOOKMARKER_DB_DRIVER", "sqlite")
	t.Setenv("BOOKMARKER_DB_NAME", "bookmarker.db")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, uint64(50), cfg.PaginationLimit)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "bookmarker.db", cfg.DBName)
}

func TestNewConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"BOOKMARKER_DB_SSL_MODE":      "verify-full",
		"BOOKMARKER_DB_DRIVER":        "mysql",
		"BOOKMARKER_PAGINATION_LIMIT": "0",
		"BOOKMARKER_BCRYPT_COST":      "2",
		"BOOKMARKER_LOG_LEVEL":        "loud",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(&Config{LogLevel: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger(&Config{LogLevel: "nope"})
	assert.Error(t, err)
}
