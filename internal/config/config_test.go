package config_test

import (
	"path/filepath"
	"testing"

	"github.com/otcdesk/walletd/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("WALLETD_DATADIR", datadir)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		require.Equal(t, datadir, cfg.Datadir)
		require.Equal(t, filepath.Join(datadir, "db"), cfg.DbDir)
		require.Equal(t, "badger", cfg.DbType)
		require.NotZero(t, cfg.Port)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("WALLETD_DB_TYPE", "sqlite")
		t.Setenv("WALLETD_PORT", "9999")
		t.Setenv("WALLETD_NODE_URL", "http://node:1234")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		require.Equal(t, "sqlite", cfg.DbType)
		require.Equal(t, uint32(9999), cfg.Port)
		require.Equal(t, "http://node:1234", cfg.NodeURL)
	})

	t.Run("unsupported db type", func(t *testing.T) {
		t.Setenv("WALLETD_DB_TYPE", "postgres")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		require.Error(t, cfg.Validate())
	})
}
