package squarer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFaceFinderMissingFile(t *testing.T) {
	_, err := LoadFaceFinder(filepath.Join(t.TempDir(), "facefinder"))
	assert.Error(t, err)
}

func TestNewWithBrokenCascade(t *testing.T) {
	// A cascade that cannot be loaded disables face awareness but does not
	// prevent the run from being set up.
	cfg := DefaultConfig()
	cfg.SourceRoot = t.TempDir()
	cfg.CascadePath = filepath.Join(t.TempDir(), "missing-cascade")

	s, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, s.proc.faces)
}
