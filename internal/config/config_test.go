package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("DB_PATH", "")
	t.Setenv("ADMIN_IDS", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("METRICS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "./voicecrate.db", cfg.DBPath)
	assert.Empty(t, cfg.AdminIDs)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesAdminList(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("ADMIN_IDS", "100, 200,300")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200, 300}, cfg.AdminIDs)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tok")

	t.Setenv("ADMIN_IDS", "100,abc")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ADMIN_IDS", "")
	t.Setenv("PAGE_SIZE", "0")
	_, err = Load()
	assert.Error(t, err)
}
