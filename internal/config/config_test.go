package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "worldforge", cfg.Name)
	assert.Equal(t, 3, cfg.Generation.Complexity)
	assert.Equal(t, 3, cfg.Combat.Difficulty)
	assert.NoError(t, cfg.Validate())

	// The default enemy distribution covers every known tag.
	for _, tag := range []string{"HUMAN", "GUARD", "CYBORG", "DRONE", "ROBOT", "NETRUNNER", "MILITECH", "BEAST"} {
		assert.Contains(t, cfg.Combat.EnemyTypeWeights, tag)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Database.Path, cfg.Database.Path)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = "/tmp/custom.db"
	cfg.Generation.NumShops = 12
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", loaded.Database.Path)
	assert.Equal(t, 12, loaded.Generation.NumShops)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("WORLDFORGE_DB_PATH", func(t *testing.T) {
		t.Setenv("WORLDFORGE_DB_PATH", "/env/worlds.db")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/env/worlds.db", cfg.Database.Path)
	})

	t.Run("WORLDFORGE_SEED", func(t *testing.T) {
		t.Setenv("WORLDFORGE_SEED", "424242")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, int64(424242), cfg.Generation.Seed)
	})

	t.Run("invalid seed is ignored", func(t *testing.T) {
		t.Setenv("WORLDFORGE_SEED", "not-a-number")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, int64(0), cfg.Generation.Seed)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"complexity too high", func(c *Config) { c.Generation.Complexity = 6 }, false},
		{"difficulty too low", func(c *Config) { c.Combat.Difficulty = 0 }, false},
		{"hostile percent out of range", func(c *Config) { c.Combat.HostilePercent = 150 }, false},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
