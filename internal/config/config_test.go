package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	c := FromEnv()

	require.NoError(t, c.Validate())
	assert.Equal(t, "file", c.DBType)
	assert.Equal(t, "@every 1m", c.RefreshSchedule)
	assert.Equal(t, 3, c.MinDataPoints)
	assert.Equal(t, 7, c.HighConfidencePoints)
	assert.Equal(t, 10*time.Minute, c.CacheTTL)
	assert.Equal(t, time.UTC, c.Location())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "bolt")
	t.Setenv("BOLT_PATH", "/tmp/x.db")
	t.Setenv("MIN_DATA_POINTS", "4")
	t.Setenv("HIGH_CONFIDENCE_POINTS", "oops")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("CORS_ORIGINS", " https://app.example.com, ,http://localhost:3000")

	c := FromEnv()

	require.NoError(t, c.Validate())
	assert.Equal(t, "bolt", c.DBType)
	assert.Equal(t, 4, c.MinDataPoints)
	assert.Equal(t, 7, c.HighConfidencePoints)
	assert.Equal(t, 90*time.Second, c.CacheTTL)
	assert.True(t, c.OtelEnabled)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, c.CORSOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config { return FromEnv() }

	c := base()
	c.DBType = "postgres"
	assert.Error(t, c.Validate())

	c = base()
	c.DBType = "mongo"
	assert.Error(t, c.Validate())

	c = base()
	c.Env = "production"
	assert.Error(t, c.Validate())
	c.AuthServiceURL = "http://auth.local/validate"
	assert.NoError(t, c.Validate())

	c = base()
	c.HighConfidencePoints = 1
	assert.Error(t, c.Validate())

	c = base()
	c.NightStartHour = 24
	assert.Error(t, c.Validate())

	c = base()
	c.Timezone = "Nowhere/Special"
	assert.Error(t, c.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := "# comment\nSWEETSPOT_TEST_A=one\nSWEETSPOT_TEST_B = \"two\"\nbroken line\nSWEETSPOT_TEST_C=three\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("SWEETSPOT_TEST_C", "kept")
	t.Cleanup(func() {
		os.Unsetenv("SWEETSPOT_TEST_A")
		os.Unsetenv("SWEETSPOT_TEST_B")
	})

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "one", os.Getenv("SWEETSPOT_TEST_A"))
	assert.Equal(t, "two", os.Getenv("SWEETSPOT_TEST_B"))
	assert.Equal(t, "kept", os.Getenv("SWEETSPOT_TEST_C"))
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing")))
}
