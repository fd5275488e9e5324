package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestOptionsGraph(t *testing.T) {
	require.NoError(t, fx.ValidateApp(options()))
}

func TestCommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
}

func TestMigrateSQLite(t *testing.T) {
	t.Setenv("BOOKMARKER_DB_DRIVER", "sqlite")
	t.Setenv("BOOKMARKER_DB_NAME", "file:migrate_test?mode=memory&cache=shared")
	t.Setenv("BOOKMARKER_LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"migrate"})
	require.NoError(t, rootCmd.Execute())
}
