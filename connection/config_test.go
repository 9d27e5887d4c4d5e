package connection

import (
	"georeport/scheduler"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_DSN", "IMPORT_SCHEDULE", "REFRESH_INTERVAL", "REFRESH_TIMEOUT", "REFRESH_RETRIES", "NOTICE_TOPIC"} {
		t.Setenv(key, "")
	}
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "report-notices", cfg.NoticeTopic)
	assert.Equal(t, scheduler.DefaultImportSchedule, cfg.ImportSchedule)
	assert.Equal(t, scheduler.DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, scheduler.DefaultRefreshTimeout, cfg.RefreshTimeout)
	assert.Zero(t, cfg.RefreshRetries)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:reports.db")
	t.Setenv("REFRESH_INTERVAL", "30s")
	t.Setenv("REFRESH_TIMEOUT", "2s")
	t.Setenv("REFRESH_RETRIES", "4")
	t.Setenv("IMPORT_DIR", "/var/lib/reports/inbox")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:reports.db", cfg.DBDSN)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 2*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, uint64(4), cfg.RefreshRetries)
	assert.Equal(t, "/var/lib/reports/inbox", cfg.ImportDir)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("REFRESH_INTERVAL", "-1s")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("REFRESH_INTERVAL", "")
	t.Setenv("REFRESH_RETRIES", "many")
	_, err = LoadConfig()
	assert.Error(t, err)
}
