package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "8084", cfg.Server.Port)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 20, cfg.Listings.DefaultPageLimit)
	assert.Equal(t, []string{"house"}, cfg.Listings.RequirePrimaryImageCategories)
	assert.Equal(t, 90, cfg.Cleanup.RetentionDays)
	assert.Equal(t, "02:00", cfg.Scheduler.NightlyRunAt)
	assert.Equal(t, 30*time.Second, cfg.AI.GetTimeout())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/portal_config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "8084", cfg.Server.Port)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal_config.yaml")

	yaml := `
server:
  port: "9000"
database:
  type: mysql
  mysql:
    host: dbhost
    port: 3307
listings:
  require_primary_image_categories:
    - house
    - apartment
  max_gallery_images: 6
scheduler:
  enabled: true
  nightly_run_at: "03:30"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "dbhost", cfg.Database.MySQL.Host)
	assert.Equal(t, 3307, cfg.Database.MySQL.Port)
	assert.Equal(t, 6, cfg.Listings.MaxGalleryImages)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "03:30", cfg.Scheduler.NightlyRunAt)

	// Untouched sections keep their defaults
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 90, cfg.Cleanup.RetentionDays)
}

func TestRequiresPrimaryImage(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Listings.RequiresPrimaryImage("house"))
	assert.False(t, cfg.Listings.RequiresPrimaryImage("car"))
	assert.False(t, cfg.Listings.RequiresPrimaryImage(""))
}
