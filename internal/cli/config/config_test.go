package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SLAB_DATABASE", "SLAB_LOCATION", "SLAB_PORT", "SLAB_VERBOSE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.False(t, cfg.Verbose)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "slab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: from-file.db\nport: 9000\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.Database)
	assert.Equal(t, 9000, cfg.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultTimeout, cfg.TimeoutSeconds)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLAB_DATABASE", "from-env.db")

	path := filepath.Join(t.TempDir(), "slab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: from-file.db\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLAB_DATABASE", "from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("database", "d", "", "")
	flags.IntP("port", "p", DefaultPort, "")
	require.NoError(t, flags.Parse([]string{"--database", "from-flag.db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.Database)
	// Unchanged flags do not clobber lower layers.
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestContextRoundTrip(t *testing.T) {
	cfg := &Config{Database: "x.db"}
	ctx := IntoContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))

	// Missing config yields usable defaults.
	def := FromContext(context.Background())
	assert.Equal(t, DefaultDatabase, def.Database)
}
