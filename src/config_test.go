package skipper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigBaseline(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 44100, cfg.Rate)
	assert.Equal(t, 2, cfg.Channels)
	assert.Equal(t, PassAll, cfg.Policy)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateRejectsOutOfRangeRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = 1000
	assert.Error(t, cfg.Validate())
	cfg.Rate = 200000
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsBadChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 3
	assert.Error(t, cfg.Validate())
}

func TestParseDebugChannelRange(t *testing.T) {
	for n := 0; n <= 4; n++ {
		ch, err := ParseDebugChannel(n)
		require.NoError(t, err)
		assert.Equal(t, DebugChannel(n), ch)
	}
	_, err := ParseDebugChannel(5)
	assert.Error(t, err)
	_, err = ParseDebugChannel(-1)
	assert.Error(t, err)
}

func TestLoadDefaultsMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadDefaults(filepath.Join(t.TempDir(), "nope.yaml"), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadDefaultsOverlaysFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: 48000\nkeep_alive: true\n"), 0o644))

	cfg, err := LoadDefaults(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 48000, cfg.Rate)
	assert.True(t, cfg.KeepAlive)
	assert.Equal(t, 2, cfg.Channels) // untouched field keeps its default
}

func TestLoadDefaultsRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(": not: yaml: ["), 0o644))
	_, err := LoadDefaults(path, DefaultConfig())
	assert.Error(t, err)
}
