package squarer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := Config{SourceRoot: "/tmp/icons"}
		require.NoError(t, cfg.Normalize())

		assert.Equal(t, "/tmp/icons", cfg.DestRoot, "dest defaults to source")
		assert.Equal(t, ".png", cfg.Extension)
		assert.Equal(t, 1, cfg.Workers)
		assert.Equal(t, ModeTrim, cfg.Mode)
	})

	t.Run("ExtensionGetsLeadingDot", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Extension = "png"
		require.NoError(t, cfg.Normalize())
		assert.Equal(t, ".png", cfg.Extension)
	})

	t.Run("EmptySourceRoot", func(t *testing.T) {
		cfg := Config{}
		assert.Error(t, cfg.Normalize())
	})

	t.Run("UnknownMode", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mode = "fancy"
		assert.Error(t, cfg.Normalize())
	})

	t.Run("NegativeSize", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Size = -1
		assert.Error(t, cfg.Normalize())
	})

	t.Run("WorkersFloorsToOne", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Workers = 0
		require.NoError(t, cfg.Normalize())
		assert.Equal(t, 1, cfg.Workers)
	})
}

func TestConfigSaveLoad(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "sub", "config.json")

	cfg := DefaultConfig()
	cfg.SourceRoot = "/data/in"
	cfg.DestRoot = "/data/out"
	cfg.Workers = 4
	cfg.Mode = ModeSmart
	cfg.Size = 256

	require.NoError(t, cfg.Save(filename))

	loaded, err := LoadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
