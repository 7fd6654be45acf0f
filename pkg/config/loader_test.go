package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitekit/sitekit/pkg/config"
)

type nested struct {
	Timeout time.Duration `env:"TEST_NESTED_TIMEOUT" envDefault:"5s"`
}

type testConfig struct {
	Name     string   `env:"TEST_NAME,required"`
	Prefixes []string `env:"TEST_PREFIXES" envSeparator:"," envDefault:"/api/"`
	Debug    bool     `env:"TEST_DEBUG"`
	Nested   nested
}

func TestLoadFrom(t *testing.T) {
	t.Parallel()

	t.Run("parses values and defaults", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := config.LoadFrom(&cfg, map[string]string{
			"TEST_NAME":     "sitekit",
			"TEST_PREFIXES": "/api/,/v2/",
			"TEST_DEBUG":    "true",
		})
		require.NoError(t, err)
		assert.Equal(t, "sitekit", cfg.Name)
		assert.Equal(t, []string{"/api/", "/v2/"}, cfg.Prefixes)
		assert.True(t, cfg.Debug)
		assert.Equal(t, 5*time.Second, cfg.Nested.Timeout)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := config.LoadFrom(&cfg, map[string]string{})
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		t.Parallel()

		assert.ErrorIs(t, config.LoadFrom[testConfig](nil, nil), config.ErrNilPointer)
	})
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("TEST_LOADENV_VALUE=from_file\n"), 0o600))

	t.Setenv("TEST_LOADENV_PRESET", "kept")
	require.NoError(t, config.LoadEnv(path))
	t.Cleanup(func() { os.Unsetenv("TEST_LOADENV_VALUE") })

	assert.Equal(t, "from_file", os.Getenv("TEST_LOADENV_VALUE"))
	assert.Equal(t, "kept", os.Getenv("TEST_LOADENV_PRESET"))

	assert.ErrorIs(t, config.LoadEnv(filepath.Join(t.TempDir(), "missing")), config.ErrLoadingEnvFile)
}
